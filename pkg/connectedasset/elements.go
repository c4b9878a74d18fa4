package connectedasset

import (
	"context"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/paging"
)

// Elements is an iterator with the element type erased, for consumers such as
// the exporter that treat every kind the same way.
type Elements interface {
	HasNext() bool
	ElementCount() int
	Name() string
	Owner() paging.Owner
	NextElement(ctx context.Context) (interface{}, error)
}

type erased[T any] struct {
	*paging.Iterator[T]
}

func (e erased[T]) NextElement(ctx context.Context) (interface{}, error) {
	v, err := e.Next(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Erase wraps a typed iterator as Elements.
func Erase[T any](it *paging.Iterator[T]) Elements {
	return erased[T]{Iterator: it}
}

func erase[T any](it *paging.Iterator[T], err error) (Elements, error) {
	if err != nil {
		return nil, err
	}
	return Erase(it), nil
}

// Open returns an iterator over a kind reachable directly from the asset.
// Comment replies and notes hang off other elements; use OpenChildren for them.
func (ca *ConnectedAsset) Open(ctx context.Context, kind beans.Kind) (Elements, error) {
	switch kind {
	case beans.KindCertifications:
		return erase(ca.Certifications(ctx))
	case beans.KindComments:
		return erase(ca.Comments(ctx))
	case beans.KindConnections:
		return erase(ca.Connections(ctx))
	case beans.KindExternalIdentifiers:
		return erase(ca.ExternalIdentifiers(ctx))
	case beans.KindExternalReferences:
		return erase(ca.ExternalReferences(ctx))
	case beans.KindInformalTags:
		return erase(ca.InformalTags(ctx))
	case beans.KindLicenses:
		return erase(ca.Licenses(ctx))
	case beans.KindLikes:
		return erase(ca.Likes(ctx))
	case beans.KindLocations:
		return erase(ca.Locations(ctx))
	case beans.KindMeanings:
		return erase(ca.Meanings(ctx))
	case beans.KindNoteLogs:
		return erase(ca.NoteLogs(ctx))
	case beans.KindRatings:
		return erase(ca.Ratings(ctx))
	case beans.KindRelatedMediaReferences:
		return erase(ca.RelatedMediaReferences(ctx))
	case beans.KindSearchKeywords:
		return erase(ca.SearchKeywords(ctx))
	case beans.KindSchemaAttributes:
		return erase(ca.SchemaAttributes(ctx))
	}
	return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "kind is not owned by the asset").
		WithDetail("kind", string(kind)).
		WithDetail("owner_type", kind.OwnerTypeName())
}

// OpenChildren returns an iterator over the replies to a comment or the notes in
// a note log.
func (ca *ConnectedAsset) OpenChildren(ctx context.Context, kind beans.Kind, owner interface{}) (Elements, error) {
	switch kind {
	case beans.KindCommentReplies:
		if c, ok := owner.(*beans.Comment); ok {
			return erase(ca.Replies(ctx, c))
		}
	case beans.KindNotes:
		if n, ok := owner.(*beans.NoteLog); ok {
			return erase(ca.Notes(ctx, n))
		}
	}
	return nil, ocferrors.Newf(ocferrors.ErrorTypeInvalidParameter, "%T does not own %s", owner, kind)
}
