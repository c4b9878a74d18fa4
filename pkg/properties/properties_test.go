package properties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/paging"
)

var parent = AssetDescriptor{GUID: "asset-1", TypeName: "DataFile", DisplayName: "customers.csv"}

func TestViewCopiesBean(t *testing.T) {
	tag := &beans.InformalTag{
		ElementHeader: beans.ElementHeader{GUID: "tag-1", TypeName: "InformalTag"},
		Name:          "pii",
	}
	v, err := NewView(tag, parent)
	require.NoError(t, err)

	tag.Name = "changed"
	assert.Equal(t, "pii", v.Bean().Name)

	b := v.Bean()
	b.Name = "changed again"
	assert.Equal(t, "pii", v.Bean().Name)

	assert.Equal(t, "tag-1", v.GUID())
	assert.Equal(t, "InformalTag", v.TypeName())
	assert.Equal(t, parent, v.Parent())
	assert.Equal(t, "InformalTag tag-1 of DataFile asset-1 (customers.csv)", v.String())
}

func TestViewRequiresBean(t *testing.T) {
	_, err := NewView[*beans.Comment](nil, parent)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeInvalidParameter))

	var empty View[*beans.Comment]
	assert.False(t, empty.Valid())
	assert.Nil(t, empty.Bean())
	assert.Equal(t, "", empty.GUID())
	assert.Equal(t, "<empty>", empty.String())
}

func TestViewEqual(t *testing.T) {
	mk := func(text string) View[*beans.Comment] {
		v, err := NewView(&beans.Comment{
			ElementHeader: beans.ElementHeader{GUID: "c-1", TypeName: "Comment"},
			CommentText:   text,
		}, parent)
		require.NoError(t, err)
		return v
	}

	assert.True(t, mk("hello").Equal(mk("hello")))
	assert.False(t, mk("hello").Equal(mk("bye")))

	other, err := NewView(mk("hello").Bean(), AssetDescriptor{GUID: "asset-2"})
	require.NoError(t, err)
	assert.False(t, mk("hello").Equal(other))
}

func TestConnectionView(t *testing.T) {
	v, err := NewConnectionView(&beans.Connection{
		ElementHeader: beans.ElementHeader{GUID: "conn-1", TypeName: "Connection"},
		ClearPassword: "s3cret",
	}, parent)
	require.NoError(t, err)
	assert.Empty(t, v.Bean().ClearPassword)
}

func TestDescribe(t *testing.T) {
	assert.True(t, DescribeAsset(nil).IsZero())
	d := DescribeAsset(&beans.Asset{
		ElementHeader: beans.ElementHeader{GUID: "a", TypeName: "Database"},
		DisplayName:   "sales",
	})
	assert.Equal(t, AssetDescriptor{GUID: "a", TypeName: "Database", DisplayName: "sales"}, d)
	assert.Equal(t, "Comment c", Describe(beans.ElementHeader{GUID: "c", TypeName: "Comment"}).String())
}

func TestNewKindIterator(t *testing.T) {
	keywords := []*beans.SearchKeyword{
		{ElementHeader: beans.ElementHeader{GUID: "k-1"}, Keyword: "sales"},
		{ElementHeader: beans.ElementHeader{GUID: "k-2"}, Keyword: "emea"},
		{ElementHeader: beans.ElementHeader{GUID: "k-3"}, Keyword: "2024"},
	}

	var it SearchKeywords
	it, err := NewKindIterator(beans.KindSearchKeywords, parent, len(keywords), 2, paging.SliceFetcher(keywords))
	require.NoError(t, err)

	assert.Equal(t, "SearchKeywords", it.Name())
	assert.Equal(t, paging.Owner{GUID: "asset-1", TypeName: "DataFile"}, it.Owner())

	got, err := it.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	got[0].Keyword = "mutated"
	assert.Equal(t, "sales", keywords[0].Keyword)
}

func TestNewElementIteratorOverrides(t *testing.T) {
	it, err := NewElementIterator[*beans.Like]("Likes", parent, 0, 10, paging.SliceFetcher[*beans.Like](nil),
		paging.WithName("AssetLikes"))
	require.NoError(t, err)
	assert.Equal(t, "AssetLikes", it.Name())
	assert.False(t, it.HasNext())
}
