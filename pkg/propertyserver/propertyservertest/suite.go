// Package propertyservertest holds a re-usable set of tests that can be run
// against any propertyserver.ReadWriter implementation.
package propertyservertest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/paging"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// SuiteBase defines the property server contract tests.
type SuiteBase struct {
	server propertyserver.ReadWriter
}

// SetServer configures the suite to run all tests against s.
func (b *SuiteBase) SetServer(s propertyserver.ReadWriter) {
	b.server = s
}

// Run executes every contract test as a subtest.
func (b *SuiteBase) Run(t *testing.T) {
	t.Run("AssetRoundTrip", b.TestAssetRoundTrip)
	t.Run("AssetNotFound", b.TestAssetNotFound)
	t.Run("CountAndPage", b.TestCountAndPage)
	t.Run("EmptyCollection", b.TestEmptyCollection)
	t.Run("InvalidArguments", b.TestInvalidArguments)
	t.Run("CollectionsAreIsolated", b.TestCollectionsAreIsolated)
	t.Run("PagingIterator", b.TestPagingIterator)
	t.Run("Health", b.TestHealth)
}

// SeedAsset stores a new asset with a schema type and returns it.
func (b *SuiteBase) SeedAsset(t *testing.T) *beans.Asset {
	t.Helper()
	guid := propertyserver.NewGUID()
	asset := &beans.Asset{
		ElementHeader: beans.ElementHeader{GUID: guid, TypeName: "DataFile", Version: 3},
		QualifiedName: "file://warehouse/" + guid + ".csv",
		DisplayName:   guid + ".csv",
		Owner:         "erin",
		Zones:         []string{"landing"},
		AdditionalProperties: map[string]string{
			"format": "csv",
		},
		SchemaType: &beans.SchemaType{
			ElementHeader: beans.ElementHeader{GUID: propertyserver.NewGUID(), TypeName: "TabularSchemaType"},
			QualifiedName: "schema://" + guid,
		},
	}
	require.NoError(t, b.server.PutAsset(context.Background(), asset))
	return asset
}

// SeedKeywords adds n search keywords to the asset and returns them in order.
func (b *SuiteBase) SeedKeywords(t *testing.T, ownerGUID string, n int) []*beans.SearchKeyword {
	t.Helper()
	out := make([]*beans.SearchKeyword, n)
	for i := range out {
		out[i] = &beans.SearchKeyword{
			ElementHeader: beans.ElementHeader{GUID: propertyserver.NewGUID(), TypeName: "SearchKeyword"},
			Keyword:       fmt.Sprintf("keyword-%03d", i),
		}
		raw, err := propertyserver.Encode(out[i])
		require.NoError(t, err)
		require.NoError(t, b.server.AddElement(context.Background(), ownerGUID, beans.KindSearchKeywords, raw))
	}
	return out
}

// TestAssetRoundTrip verifies that a stored asset is returned unchanged.
func (b *SuiteBase) TestAssetRoundTrip(t *testing.T) {
	asset := b.SeedAsset(t)

	got, err := b.server.GetAsset(context.Background(), asset.GUID)
	require.NoError(t, err)
	assert.Equal(t, asset, got)

	got.DisplayName = "changed"
	again, err := b.server.GetAsset(context.Background(), asset.GUID)
	require.NoError(t, err)
	assert.Equal(t, asset.DisplayName, again.DisplayName, "returned asset shares state with the store")
}

// TestAssetNotFound verifies the error returned for unknown assets.
func (b *SuiteBase) TestAssetNotFound(t *testing.T) {
	_, err := b.server.GetAsset(context.Background(), propertyserver.NewGUID())
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeNotFound), "got %v", err)

	_, err = b.server.GetAsset(context.Background(), "")
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation), "got %v", err)
}

// TestCountAndPage verifies counting and paging through a collection.
func (b *SuiteBase) TestCountAndPage(t *testing.T) {
	ctx := context.Background()
	asset := b.SeedAsset(t)
	want := b.SeedKeywords(t, asset.GUID, 25)

	count, err := b.server.CountElements(ctx, asset.GUID, beans.KindSearchKeywords)
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	pages := []struct{ start, size, expected int }{
		{0, 10, 10},
		{10, 10, 10},
		{20, 10, 5},
		{25, 10, 0},
		{3, 1, 1},
		{0, 100, 25},
	}
	for _, p := range pages {
		raw, err := b.server.FetchElements(ctx, asset.GUID, beans.KindSearchKeywords, p.start, p.size)
		require.NoError(t, err)
		require.Len(t, raw, p.expected, "page start=%d size=%d", p.start, p.size)

		got, err := propertyserver.Decode[*beans.SearchKeyword](raw)
		require.NoError(t, err)
		for i, k := range got {
			assert.Equal(t, want[p.start+i].Keyword, k.Keyword)
			assert.Equal(t, want[p.start+i].GUID, k.GUID)
		}
	}
}

// TestEmptyCollection verifies that an unused collection is empty, not missing.
func (b *SuiteBase) TestEmptyCollection(t *testing.T) {
	ctx := context.Background()
	asset := b.SeedAsset(t)

	count, err := b.server.CountElements(ctx, asset.GUID, beans.KindLikes)
	require.NoError(t, err)
	assert.Zero(t, count)

	raw, err := b.server.FetchElements(ctx, asset.GUID, beans.KindLikes, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

// TestInvalidArguments verifies argument validation.
func (b *SuiteBase) TestInvalidArguments(t *testing.T) {
	ctx := context.Background()
	guid := propertyserver.NewGUID()

	_, err := b.server.CountElements(ctx, guid, beans.Kind("gossip"))
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation), "got %v", err)

	_, err = b.server.FetchElements(ctx, guid, beans.KindComments, -1, 10)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation), "got %v", err)

	_, err = b.server.FetchElements(ctx, guid, beans.KindComments, 0, 0)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation), "got %v", err)

	_, err = b.server.FetchElements(ctx, "", beans.KindComments, 0, 10)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation), "got %v", err)

	err = b.server.AddElement(ctx, guid, beans.Kind("gossip"), propertyserver.RawElement(`{}`))
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation), "got %v", err)
}

// TestCollectionsAreIsolated verifies that collections are keyed by owner and kind.
func (b *SuiteBase) TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	first := b.SeedAsset(t)
	second := b.SeedAsset(t)

	b.SeedKeywords(t, first.GUID, 3)
	b.SeedKeywords(t, second.GUID, 1)

	tag, err := propertyserver.Encode(&beans.InformalTag{
		ElementHeader: beans.ElementHeader{GUID: propertyserver.NewGUID(), TypeName: "InformalTag"},
		Name:          "pii",
	})
	require.NoError(t, err)
	require.NoError(t, b.server.AddElement(ctx, first.GUID, beans.KindInformalTags, tag))

	counts := map[string]map[beans.Kind]int{
		first.GUID:  {beans.KindSearchKeywords: 3, beans.KindInformalTags: 1},
		second.GUID: {beans.KindSearchKeywords: 1, beans.KindInformalTags: 0},
	}
	for owner, kinds := range counts {
		for kind, want := range kinds {
			got, err := b.server.CountElements(ctx, owner, kind)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s %s", owner, kind)
		}
	}
}

// TestPagingIterator walks a collection with a paging iterator on top of the
// server.
func (b *SuiteBase) TestPagingIterator(t *testing.T) {
	ctx := context.Background()
	asset := b.SeedAsset(t)
	want := b.SeedKeywords(t, asset.GUID, 30)

	total, err := b.server.CountElements(ctx, asset.GUID, beans.KindSearchKeywords)
	require.NoError(t, err)

	fetcher := propertyserver.NewFetcher[*beans.SearchKeyword](b.server, asset.GUID, beans.KindSearchKeywords)
	it, err := paging.NewCloneable(total, 10, fetcher, paging.WithOwner(asset.GUID, asset.TypeName))
	require.NoError(t, err)

	got, err := it.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Keyword, got[i].Keyword)
	}

	_, err = it.Next(ctx)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeNoMoreElements))
}

// TestHealth verifies that a working server reports healthy.
func (b *SuiteBase) TestHealth(t *testing.T) {
	assert.NoError(t, b.server.Health(context.Background()))
}
