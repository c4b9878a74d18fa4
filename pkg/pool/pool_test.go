package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	n int
}

func TestPoolResetsAndCounts(t *testing.T) {
	p := New(func() *item { return &item{} }, func(i *item) { i.n = 0 })

	a := p.Get()
	a.n = 42
	assert.Equal(t, int64(1), p.Stats().InUse)
	p.Put(a)

	b := p.Get()
	assert.Equal(t, 0, b.n)
	p.Put(b)

	s := p.Stats()
	assert.Equal(t, int64(2), s.Gets)
	assert.Zero(t, s.InUse)
	assert.GreaterOrEqual(t, s.Allocated, int64(1))
	assert.Equal(t, s.Gets-s.Allocated, s.Hits())
}

func TestBufferPoolDropsLargeBuffers(t *testing.T) {
	p := NewBufferPool(64)

	buf := p.Get()
	buf.Write(bytes.Repeat([]byte("x"), MaxRetainedBuffer+1))
	p.Put(buf)
	assert.Equal(t, int64(1), p.Stats().Dropped)

	small := p.Get()
	small.WriteString("leftover")
	p.Put(small)
	assert.Equal(t, 0, p.Get().Len())
}

func TestPoolConcurrentUse(t *testing.T) {
	p := NewBufferPool(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b := p.Get()
				b.WriteString("data")
				p.Put(b)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), p.Stats().Gets)
	assert.Zero(t, p.Stats().InUse)
}
