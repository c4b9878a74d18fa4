// Package connectedasset binds a property server to one asset and hands out
// paging iterators over the collections attached to it.
//
//	ca, err := connectedasset.New(ctx, server, guid, connectedasset.WithMaxCacheSize(50))
//	tags, err := ca.InformalTags(ctx)
//	for tag, err := range tags.All(ctx) {
//	    ...
//	}
//
// Every iterator reads its total from the server when it is created, so a
// collection that grows afterwards is not seen until a new iterator is requested.
package connectedasset

import (
	"context"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/paging"
	"github.com/ajitpratap0/ocf/pkg/properties"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

type options struct {
	maxCacheSize int
	logger       *zap.Logger
	observer     paging.Observer
}

// Option configures a ConnectedAsset.
type Option func(*options)

// WithMaxCacheSize sets the page size of every iterator.
func WithMaxCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxCacheSize = n
		}
	}
}

// WithLogger sets the logger handed to iterators.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers a paging observer on every iterator, typically
// metrics.PagingMetrics.
func WithObserver(obs paging.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// ConnectedAsset is an asset loaded from a property server together with the
// means to page through its attached elements.
type ConnectedAsset struct {
	server propertyserver.PropertyServer
	asset  properties.View[*beans.Asset]
	self   properties.AssetDescriptor
	opts   options
}

// New loads the asset from server.
func New(ctx context.Context, server propertyserver.PropertyServer, assetGUID string, opts ...Option) (*ConnectedAsset, error) {
	if server == nil {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "property server is required")
	}
	o := options{maxCacheSize: properties.DefaultMaxCacheSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	asset, err := server.GetAsset(ctx, assetGUID)
	if err != nil {
		return nil, err
	}
	view, err := properties.NewView(asset, properties.AssetDescriptor{})
	if err != nil {
		return nil, err
	}

	o.logger = o.logger.With(zap.String("asset_guid", asset.GUID))
	return &ConnectedAsset{
		server: server,
		asset:  view,
		self:   properties.DescribeAsset(asset),
		opts:   o,
	}, nil
}

// Asset returns a read-only view of the asset.
func (ca *ConnectedAsset) Asset() properties.View[*beans.Asset] {
	return ca.asset
}

// Descriptor identifies the asset as the parent of its elements.
func (ca *ConnectedAsset) Descriptor() properties.AssetDescriptor {
	return ca.self
}

// SchemaType returns a view of the asset's schema type, if it has one.
func (ca *ConnectedAsset) SchemaType() (properties.View[*beans.SchemaType], bool) {
	st := ca.asset.Bean().SchemaType
	if st == nil {
		return properties.View[*beans.SchemaType]{}, false
	}
	v, err := properties.NewView(st, ca.self)
	return v, err == nil
}

// MaxCacheSize returns the page size used by the iterators.
func (ca *ConnectedAsset) MaxCacheSize() int {
	return ca.opts.maxCacheSize
}

// Server returns the property server the asset was loaded from.
func (ca *ConnectedAsset) Server() propertyserver.PropertyServer {
	return ca.server
}

func (ca *ConnectedAsset) count(ctx context.Context, owner properties.AssetDescriptor, kind beans.Kind) (int, error) {
	n, err := ca.server.CountElements(ctx, owner.GUID, kind)
	if err != nil {
		return 0, ocferrors.Wrap(err, ocferrors.ErrorTypePropertyServerAccess, "unable to count elements").
			WithDetail("iterator", kind.IteratorName()).
			WithDetail("owner_guid", owner.GUID).
			WithDetail("owner_type", owner.TypeName)
	}
	return n, nil
}

func (ca *ConnectedAsset) iteratorOptions() []paging.Option {
	opts := []paging.Option{paging.WithLogger(ca.opts.logger)}
	if ca.opts.observer != nil {
		opts = append(opts, paging.WithObserver(ca.opts.observer))
	}
	return opts
}

// open counts the collection and builds a typed iterator over it.
func open[T beans.Element[T]](ctx context.Context, ca *ConnectedAsset, owner properties.AssetDescriptor, kind beans.Kind, fetcher paging.PageFetcher[T]) (*paging.Iterator[T], error) {
	total, err := ca.count(ctx, owner, kind)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = propertyserver.NewFetcher[T](ca.server, owner.GUID, kind)
	}
	return properties.NewKindIterator(kind, owner, total, ca.opts.maxCacheSize, fetcher, ca.iteratorOptions()...)
}

func openAssetKind[T beans.Element[T]](ctx context.Context, ca *ConnectedAsset, kind beans.Kind) (*paging.Iterator[T], error) {
	return open[T](ctx, ca, ca.self, kind, nil)
}

// Certifications returns an iterator over the asset's certifications.
func (ca *ConnectedAsset) Certifications(ctx context.Context) (properties.Certifications, error) {
	return openAssetKind[*beans.Certification](ctx, ca, beans.KindCertifications)
}

// Comments returns an iterator over the comments attached directly to the asset.
func (ca *ConnectedAsset) Comments(ctx context.Context) (properties.Comments, error) {
	return openAssetKind[*beans.Comment](ctx, ca, beans.KindComments)
}

// Replies returns an iterator over the replies to comment.
func (ca *ConnectedAsset) Replies(ctx context.Context, comment *beans.Comment) (properties.Comments, error) {
	if comment == nil || comment.GUID == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "comment with a GUID is required")
	}
	return open[*beans.Comment](ctx, ca, properties.Describe(comment.ElementHeader), beans.KindCommentReplies, nil)
}

// Connections returns an iterator over the asset's connections. Secured
// properties and passwords are removed before the connections reach the cache.
func (ca *ConnectedAsset) Connections(ctx context.Context) (properties.Connections, error) {
	raw := propertyserver.NewFetcher[*beans.Connection](ca.server, ca.self.GUID, beans.KindConnections)
	redacted := paging.PageFetcherFunc[*beans.Connection](func(ctx context.Context, start, size int) ([]*beans.Connection, error) {
		page, err := raw.FetchPage(ctx, start, size)
		if err != nil {
			return nil, err
		}
		for i, c := range page {
			page[i] = c.Redacted()
		}
		return page, nil
	})
	return open[*beans.Connection](ctx, ca, ca.self, beans.KindConnections, redacted)
}

// ExternalIdentifiers returns an iterator over the asset's external identifiers.
func (ca *ConnectedAsset) ExternalIdentifiers(ctx context.Context) (properties.ExternalIdentifiers, error) {
	return openAssetKind[*beans.ExternalIdentifier](ctx, ca, beans.KindExternalIdentifiers)
}

// ExternalReferences returns an iterator over the asset's external references.
func (ca *ConnectedAsset) ExternalReferences(ctx context.Context) (properties.ExternalReferences, error) {
	return openAssetKind[*beans.ExternalReference](ctx, ca, beans.KindExternalReferences)
}

// InformalTags returns an iterator over the asset's informal tags.
func (ca *ConnectedAsset) InformalTags(ctx context.Context) (properties.InformalTags, error) {
	return openAssetKind[*beans.InformalTag](ctx, ca, beans.KindInformalTags)
}

// Licenses returns an iterator over the asset's licenses.
func (ca *ConnectedAsset) Licenses(ctx context.Context) (properties.Licenses, error) {
	return openAssetKind[*beans.License](ctx, ca, beans.KindLicenses)
}

// Likes returns an iterator over the asset's likes.
func (ca *ConnectedAsset) Likes(ctx context.Context) (properties.Likes, error) {
	return openAssetKind[*beans.Like](ctx, ca, beans.KindLikes)
}

// Locations returns an iterator over the asset's known locations.
func (ca *ConnectedAsset) Locations(ctx context.Context) (properties.Locations, error) {
	return openAssetKind[*beans.Location](ctx, ca, beans.KindLocations)
}

// Meanings returns an iterator over the glossary terms assigned to the asset.
func (ca *ConnectedAsset) Meanings(ctx context.Context) (properties.Meanings, error) {
	return openAssetKind[*beans.Meaning](ctx, ca, beans.KindMeanings)
}

// NoteLogs returns an iterator over the asset's note logs.
func (ca *ConnectedAsset) NoteLogs(ctx context.Context) (properties.NoteLogs, error) {
	return openAssetKind[*beans.NoteLog](ctx, ca, beans.KindNoteLogs)
}

// Notes returns an iterator over the notes in noteLog.
func (ca *ConnectedAsset) Notes(ctx context.Context, noteLog *beans.NoteLog) (properties.Notes, error) {
	if noteLog == nil || noteLog.GUID == "" {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "note log with a GUID is required")
	}
	return open[*beans.Note](ctx, ca, properties.Describe(noteLog.ElementHeader), beans.KindNotes, nil)
}

// Ratings returns an iterator over the asset's star ratings.
func (ca *ConnectedAsset) Ratings(ctx context.Context) (properties.Ratings, error) {
	return openAssetKind[*beans.Rating](ctx, ca, beans.KindRatings)
}

// RelatedMediaReferences returns an iterator over the asset's related media.
func (ca *ConnectedAsset) RelatedMediaReferences(ctx context.Context) (properties.RelatedMediaReferences, error) {
	return openAssetKind[*beans.RelatedMediaReference](ctx, ca, beans.KindRelatedMediaReferences)
}

// SearchKeywords returns an iterator over the asset's search keywords.
func (ca *ConnectedAsset) SearchKeywords(ctx context.Context) (properties.SearchKeywords, error) {
	return openAssetKind[*beans.SearchKeyword](ctx, ca, beans.KindSearchKeywords)
}

// SchemaAttributes returns an iterator over the attributes of the asset's schema
// type. An asset without a schema type has no attributes.
func (ca *ConnectedAsset) SchemaAttributes(ctx context.Context) (properties.SchemaAttributes, error) {
	st, ok := ca.SchemaType()
	if !ok {
		return properties.NewKindIterator(beans.KindSchemaAttributes, ca.self, 0, ca.opts.maxCacheSize,
			paging.SliceFetcher[*beans.SchemaAttribute](nil), ca.iteratorOptions()...)
	}
	return open[*beans.SchemaAttribute](ctx, ca, properties.Describe(st.Header()), beans.KindSchemaAttributes, nil)
}

// Counts returns the size of every collection attached to the asset, including
// the schema attributes when the asset has a schema type.
func (ca *ConnectedAsset) Counts(ctx context.Context) (map[beans.Kind]int, error) {
	out := make(map[beans.Kind]int)
	for _, kind := range ca.Kinds() {
		owner := ca.self
		if kind == beans.KindSchemaAttributes {
			st, _ := ca.SchemaType()
			owner = properties.Describe(st.Header())
		}
		n, err := ca.count(ctx, owner, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, nil
}

// Kinds lists the collections reachable directly from the asset.
func (ca *ConnectedAsset) Kinds() []beans.Kind {
	kinds := beans.AssetKinds()
	if _, ok := ca.SchemaType(); ok {
		kinds = append(kinds, beans.KindSchemaAttributes)
	}
	return kinds
}
