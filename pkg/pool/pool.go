// Package pool provides typed object pools with usage statistics.
//
//	buffers := pool.New(
//	    func() *bytes.Buffer { return new(bytes.Buffer) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
//	buf := buffers.Get()
//	defer buffers.Put(buf)
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool. It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	keep  func(T) bool

	allocated atomic.Int64
	inUse     atomic.Int64
	gets      atomic.Int64
	dropped   atomic.Int64
}

// New creates a pool. reset, if not nil, is called on every object put back.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		p.allocated.Add(1)
		return newFn()
	}
	return p
}

// WithKeep sets a predicate deciding whether a returned object is retained.
// Objects it rejects are left to the garbage collector.
func (p *Pool[T]) WithKeep(keep func(T) bool) *Pool[T] {
	p.keep = keep
	return p
}

// Get takes an object from the pool, allocating one if it is empty.
func (p *Pool[T]) Get() T {
	p.gets.Add(1)
	p.inUse.Add(1)
	return p.pool.Get().(T)
}

// Put returns obj to the pool.
func (p *Pool[T]) Put(obj T) {
	p.inUse.Add(-1)
	if p.keep != nil && !p.keep(obj) {
		p.dropped.Add(1)
		return
	}
	if p.reset != nil {
		p.reset(obj)
	}
	p.pool.Put(obj)
}

// Stats is a snapshot of pool usage.
type Stats struct {
	// Allocated counts objects created because the pool was empty
	Allocated int64
	InUse     int64
	Gets      int64
	// Dropped counts returned objects rejected by the keep predicate
	Dropped   int64
}

// Hits is the number of Gets served without allocating.
func (s Stats) Hits() int64 {
	return s.Gets - s.Allocated
}

// Stats returns current usage counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Allocated: p.allocated.Load(),
		InUse:     p.inUse.Load(),
		Gets:      p.gets.Load(),
		Dropped:   p.dropped.Load(),
	}
}

// MaxRetainedBuffer is the largest buffer capacity NewBufferPool keeps.
const MaxRetainedBuffer = 1024 * 1024

// NewBufferPool returns a pool of buffers with initial capacity size. Buffers
// that grew beyond MaxRetainedBuffer are not retained.
func NewBufferPool(size int) *Pool[*bytes.Buffer] {
	return New(
		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, size)) },
		func(b *bytes.Buffer) { b.Reset() },
	).WithKeep(func(b *bytes.Buffer) bool { return b.Cap() <= MaxRetainedBuffer })
}
