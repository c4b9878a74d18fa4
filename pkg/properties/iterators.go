package properties

import (
	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/paging"
)

// DefaultMaxCacheSize is the page size used when none is configured.
const DefaultMaxCacheSize = 100

// Typed iterators over the collections attached to an asset.
type (
	Certifications         = *paging.Iterator[*beans.Certification]
	Comments               = *paging.Iterator[*beans.Comment]
	Connections            = *paging.Iterator[*beans.Connection]
	ExternalIdentifiers    = *paging.Iterator[*beans.ExternalIdentifier]
	ExternalReferences     = *paging.Iterator[*beans.ExternalReference]
	InformalTags           = *paging.Iterator[*beans.InformalTag]
	Licenses               = *paging.Iterator[*beans.License]
	Likes                  = *paging.Iterator[*beans.Like]
	Locations              = *paging.Iterator[*beans.Location]
	Meanings               = *paging.Iterator[*beans.Meaning]
	NoteLogs               = *paging.Iterator[*beans.NoteLog]
	Notes                  = *paging.Iterator[*beans.Note]
	Ratings                = *paging.Iterator[*beans.Rating]
	RelatedMediaReferences = *paging.Iterator[*beans.RelatedMediaReference]
	SchemaAttributes       = *paging.Iterator[*beans.SchemaAttribute]
	SearchKeywords         = *paging.Iterator[*beans.SearchKeyword]
)

// NewElementIterator creates a paging iterator over a collection owned by parent.
// Elements are deep-copied with their Clone method. Options given here override
// the name and owner derived from the arguments.
func NewElementIterator[T beans.Element[T]](name string, parent AssetDescriptor, total, maxCacheSize int, fetcher paging.PageFetcher[T], opts ...paging.Option) (*paging.Iterator[T], error) {
	all := make([]paging.Option, 0, len(opts)+2)
	all = append(all, paging.WithName(name), paging.WithOwner(parent.GUID, parent.TypeName))
	all = append(all, opts...)
	return paging.NewCloneable[T](total, maxCacheSize, fetcher, all...)
}

// NewKindIterator is NewElementIterator with the iterator name taken from kind.
func NewKindIterator[T beans.Element[T]](kind beans.Kind, parent AssetDescriptor, total, maxCacheSize int, fetcher paging.PageFetcher[T], opts ...paging.Option) (*paging.Iterator[T], error) {
	return NewElementIterator(kind.IteratorName(), parent, total, maxCacheSize, fetcher, opts...)
}
