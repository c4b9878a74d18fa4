// Package propertyserver defines the remote metadata repository that the paging
// iterators read from, and a registry of backends that implement it.
//
// A PropertyServer returns element collections as raw JSON documents, one page at
// a time. NewFetcher turns such a server into a typed paging.PageFetcher so that
// any backend can feed any iterator:
//
//	fetcher := propertyserver.NewFetcher[*beans.Comment](server, assetGUID, beans.KindComments)
//	it, err := properties.NewKindIterator(beans.KindComments, parent, total, 100, fetcher)
//
// Backends live in sub-packages and register themselves in init; import them for
// their side effects.
package propertyserver

import (
	"context"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/json"
)

// RawElement is one encoded element of a collection.
type RawElement = json.RawMessage

// PropertyServer is a read-only metadata repository. Implementations must be safe
// for concurrent use.
type PropertyServer interface {
	// GetAsset returns the asset with the given GUID, or a not_found error.
	GetAsset(ctx context.Context, assetGUID string) (*beans.Asset, error)

	// CountElements returns the size of the kind collection owned by ownerGUID.
	// An owner with no elements of that kind has a count of 0.
	CountElements(ctx context.Context, ownerGUID string, kind beans.Kind) (int, error)

	// FetchElements returns up to pageSize elements of the collection starting at
	// position startFrom, in collection order.
	FetchElements(ctx context.Context, ownerGUID string, kind beans.Kind, startFrom, pageSize int) ([]RawElement, error)

	// Health checks that the repository can be reached.
	Health(ctx context.Context) error

	// Close releases connections held by the server.
	Close(ctx context.Context) error
}

// Store is implemented by backends that can be written to. It is used to seed
// repositories from fixtures.
type Store interface {
	PutAsset(ctx context.Context, asset *beans.Asset) error
	// AddElement appends element to the end of the kind collection owned by
	// ownerGUID.
	AddElement(ctx context.Context, ownerGUID string, kind beans.Kind, element RawElement) error
}

// ReadWriter is a PropertyServer that is also a Store.
type ReadWriter interface {
	PropertyServer
	Store
}
