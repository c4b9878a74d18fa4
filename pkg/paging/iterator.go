// Package paging provides a forward-only cursor over a collection that lives on a
// remote property server and is fetched one bounded page at a time.
//
// An Iterator knows the total size of the collection up front. It keeps exactly one
// page in memory, serves elements from it, and asks its PageFetcher for the next
// page only when the read position leaves the cached window. Every element handed
// out is a clone, so callers can never corrupt the cache.
//
//	it, err := paging.New(total, 100, fetcher, cloneTag, paging.WithName("InformalTags"))
//	for it.HasNext() {
//	    tag, err := it.Next(ctx)
//	    ...
//	}
//
// An Iterator is meant for single-goroutine, single-pass use. Clone it to iterate
// the same collection again from the start.
package paging

import (
	"context"
	"iter"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

const tracerName = "github.com/ajitpratap0/ocf/pkg/paging"

// DefaultName is used for iterators created without WithName.
const DefaultName = "PagingIterator"

// PageFetcher retrieves up to maximumSize elements of a collection starting at
// cacheStartPointer. Near the end of the collection it returns fewer elements.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, cacheStartPointer, maximumSize int) ([]T, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc[T any] func(ctx context.Context, cacheStartPointer, maximumSize int) ([]T, error)

// FetchPage implements PageFetcher.
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, cacheStartPointer, maximumSize int) ([]T, error) {
	return f(ctx, cacheStartPointer, maximumSize)
}

// CloneFunc returns an independent copy of an element.
type CloneFunc[T any] func(T) T

// Cloner is implemented by element types that know how to copy themselves.
type Cloner[T any] interface {
	Clone() T
}

// Observer receives paging events. Implementations must be safe for concurrent
// use because many iterators may share one observer.
type Observer interface {
	PageFetched(iterator string, size int, elapsed time.Duration)
	PageFetchFailed(iterator string, elapsed time.Duration)
	ElementServed(iterator string)
}

// Owner identifies the element whose collection is being iterated, e.g. the asset
// that carries the certifications.
type Owner struct {
	GUID     string
	TypeName string
}

type settings struct {
	name     string
	owner    Owner
	logger   *zap.Logger
	observer Observer
	tracer   trace.Tracer
}

// Option configures an Iterator.
type Option func(*settings)

// WithName sets the iterator name reported in errors, logs, spans and metrics.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithOwner records the element that owns the collection.
func WithOwner(guid, typeName string) Option {
	return func(s *settings) {
		s.owner = Owner{GUID: guid, TypeName: typeName}
	}
}

// WithLogger sets the logger used for debug output about page fetches.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers an Observer for paging events.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithTracer overrides the tracer used for page fetch spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Iterator is a paging cursor over a collection of T.
type Iterator[T any] struct {
	fetcher PageFetcher[T]
	clone   CloneFunc[T]
	cfg     settings

	total        int
	maxCacheSize int

	cache      []T
	cacheStart int
	position   int
}

// New creates an iterator positioned at element 0 with an empty cache. A negative
// total is treated as 0 and a maxCacheSize below 1 as 1. A nil clone returns
// elements as they are, which is only safe for value types.
func New[T any](total, maxCacheSize int, fetcher PageFetcher[T], clone CloneFunc[T], opts ...Option) (*Iterator[T], error) {
	cfg := settings{
		name:   DefaultName,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = otel.Tracer(tracerName)
	}

	if missingFetcher(fetcher) {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "page fetcher is required").
			WithDetail("iterator", cfg.name).
			WithDetail("owner_guid", cfg.owner.GUID)
	}
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if total < 0 {
		total = 0
	}
	if maxCacheSize < 1 {
		maxCacheSize = 1
	}

	return &Iterator[T]{
		fetcher:      fetcher,
		clone:        clone,
		cfg:          cfg,
		total:        total,
		maxCacheSize: maxCacheSize,
	}, nil
}

// missingFetcher also catches a nil PageFetcherFunc stored in the interface.
func missingFetcher[T any](fetcher PageFetcher[T]) bool {
	switch f := fetcher.(type) {
	case nil:
		return true
	case PageFetcherFunc[T]:
		return f == nil
	}
	return false
}

// NewCloneable is New for element types that implement Cloner.
func NewCloneable[T Cloner[T]](total, maxCacheSize int, fetcher PageFetcher[T], opts ...Option) (*Iterator[T], error) {
	return New(total, maxCacheSize, fetcher, func(v T) T { return v.Clone() }, opts...)
}

// Clone returns a new iterator over the same collection, positioned at the start
// with an empty cache, regardless of how far the receiver has read.
func (it *Iterator[T]) Clone() (*Iterator[T], error) {
	if it == nil || missingFetcher(it.fetcher) {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "cannot clone an iterator without a page fetcher")
	}
	return &Iterator[T]{
		fetcher:      it.fetcher,
		clone:        it.clone,
		cfg:          it.cfg,
		total:        it.total,
		maxCacheSize: it.maxCacheSize,
	}, nil
}

// HasNext reports whether Next will return another element.
func (it *Iterator[T]) HasNext() bool {
	return it.position < it.total
}

// Next returns a copy of the next element, fetching a new page first if the
// current position is outside the cached window. On a failed fetch the position
// does not move, so Next can simply be called again.
func (it *Iterator[T]) Next(ctx context.Context) (T, error) {
	var zero T

	if it.position >= it.total {
		return zero, ocferrors.New(ocferrors.ErrorTypeNoMoreElements, "no more elements").
			WithDetail("iterator", it.cfg.name).
			WithDetail("element_count", it.total)
	}

	if !it.cached(it.position) {
		if err := it.fill(ctx); err != nil {
			return zero, err
		}
	}

	element := it.clone(it.cache[it.position-it.cacheStart])
	it.position++
	if it.cfg.observer != nil {
		it.cfg.observer.ElementServed(it.cfg.name)
	}
	return element, nil
}

// Remove always fails: the collection is read-only through an iterator.
func (it *Iterator[T]) Remove() error {
	return ocferrors.New(ocferrors.ErrorTypeUnsupportedOperation, "remove is not supported by a read-only iterator").
		WithDetail("iterator", it.cfg.name)
}

// ElementCount returns the total number of elements in the collection.
func (it *Iterator[T]) ElementCount() int {
	return it.total
}

// Position returns the index of the next element Next will return.
func (it *Iterator[T]) Position() int {
	return it.position
}

// MaxCacheSize returns the page size used for fetches.
func (it *Iterator[T]) MaxCacheSize() int {
	return it.maxCacheSize
}

// Name returns the iterator name.
func (it *Iterator[T]) Name() string {
	return it.cfg.name
}

// Owner returns the element that owns the collection.
func (it *Iterator[T]) Owner() Owner {
	return it.cfg.owner
}

// All returns a range-over-func sequence of the remaining elements. Iteration
// stops after the first error, which is yielded with a zero element.
func (it *Iterator[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for it.HasNext() {
			v, err := it.Next(ctx)
			if !yield(v, err) || err != nil {
				return
			}
		}
	}
}

// Collect reads every remaining element into a slice.
func (it *Iterator[T]) Collect(ctx context.Context) ([]T, error) {
	out := make([]T, 0, it.total-it.position)
	for v, err := range it.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (it *Iterator[T]) cached(pos int) bool {
	return len(it.cache) > 0 && pos >= it.cacheStart && pos < it.cacheStart+len(it.cache)
}

// fill replaces the cache with the page starting at the current position. The
// cursor is left untouched on failure.
func (it *Iterator[T]) fill(ctx context.Context) error {
	start := it.position
	want := it.maxCacheSize
	if remaining := it.total - start; remaining < want {
		want = remaining
	}

	ctx, span := it.cfg.tracer.Start(ctx, "paging.FetchPage", trace.WithAttributes(
		attribute.String("ocf.iterator", it.cfg.name),
		attribute.String("ocf.owner.guid", it.cfg.owner.GUID),
		attribute.String("ocf.owner.type", it.cfg.owner.TypeName),
		attribute.Int("ocf.page.start", start),
		attribute.Int("ocf.page.max_size", it.maxCacheSize),
	))
	defer span.End()

	began := time.Now()
	page, err := it.fetcher.FetchPage(ctx, start, it.maxCacheSize)
	elapsed := time.Since(began)

	if err == nil && len(page) == 0 {
		err = ocferrors.Newf(ocferrors.ErrorTypeData, "empty page returned while %d elements remain", it.total-start)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "page fetch failed")
		if it.cfg.observer != nil {
			it.cfg.observer.PageFetchFailed(it.cfg.name, elapsed)
		}
		return ocferrors.Wrap(err, ocferrors.ErrorTypePropertyServerAccess, "unable to retrieve the next page of elements").
			WithDetail("iterator", it.cfg.name).
			WithDetail("owner_guid", it.cfg.owner.GUID).
			WithDetail("owner_type", it.cfg.owner.TypeName).
			WithDetail("position", start).
			WithDetail("page_size", it.maxCacheSize)
	}

	if len(page) > want {
		page = page[:want]
	}

	cache := make([]T, len(page))
	for i, element := range page {
		cache[i] = it.clone(element)
	}
	it.cache = cache
	it.cacheStart = start

	span.SetAttributes(attribute.Int("ocf.page.size", len(cache)))
	if it.cfg.observer != nil {
		it.cfg.observer.PageFetched(it.cfg.name, len(cache), elapsed)
	}
	it.cfg.logger.Debug("fetched page",
		zap.String("iterator", it.cfg.name),
		zap.String("owner_guid", it.cfg.owner.GUID),
		zap.Int("start", start),
		zap.Int("size", len(cache)),
		zap.Duration("elapsed", elapsed))

	return nil
}
