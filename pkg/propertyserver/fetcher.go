package propertyserver

import (
	"bytes"
	"context"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/paging"
)

var null = []byte("null")

// Decode unmarshals a page of raw elements. T is normally a bean pointer type.
// Empty and null elements are data errors.
func Decode[T any](page []RawElement) ([]T, error) {
	out := make([]T, len(page))
	for i, raw := range page {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, null) {
			return nil, ocferrors.New(ocferrors.ErrorTypeData, "element is empty").
				WithDetail("index", i)
		}
		if err := json.Unmarshal(raw, &out[i]); err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to decode element").
				WithDetail("index", i)
		}
	}
	return out, nil
}

// Encode marshals a bean into a raw element.
func Encode(v interface{}) (RawElement, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeData, "failed to encode element")
	}
	return RawElement(data), nil
}

// NewFetcher returns a page fetcher reading the kind collection of ownerGUID.
func NewFetcher[T any](server PropertyServer, ownerGUID string, kind beans.Kind) paging.PageFetcher[T] {
	return paging.PageFetcherFunc[T](func(ctx context.Context, start, size int) ([]T, error) {
		page, err := server.FetchElements(ctx, ownerGUID, kind, start, size)
		if err != nil {
			return nil, err
		}
		return Decode[T](page)
	})
}
