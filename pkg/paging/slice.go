package paging

import "context"

// SliceFetcher serves pages from an in-memory slice. It is mostly useful in tests
// and for collections that are already materialized.
func SliceFetcher[T any](elements []T) PageFetcher[T] {
	return PageFetcherFunc[T](func(ctx context.Context, start, size int) ([]T, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if start < 0 || start >= len(elements) || size < 1 {
			return nil, nil
		}
		end := min(start+size, len(elements))
		return elements[start:end], nil
	})
}

// FromSlice returns an iterator over elements, using the slice length as the
// element count.
func FromSlice[T any](elements []T, maxCacheSize int, clone CloneFunc[T], opts ...Option) (*Iterator[T], error) {
	return New(len(elements), maxCacheSize, SliceFetcher(elements), clone, opts...)
}
