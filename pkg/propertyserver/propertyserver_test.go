package propertyserver_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
	"github.com/ajitpratap0/ocf/pkg/propertyserver/memory"
)

func TestDecode(t *testing.T) {
	got, err := propertyserver.Decode[*beans.InformalTag]([]propertyserver.RawElement{
		propertyserver.RawElement(`{"guid":"t-1","name":"pii"}`),
		propertyserver.RawElement(`{"guid":"t-2","name":"gold"}`),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gold", got[1].Name)

	_, err = propertyserver.Decode[*beans.InformalTag]([]propertyserver.RawElement{
		propertyserver.RawElement(`{"guid":`),
	})
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeData))

	for _, raw := range []string{"null", " null\n", "", "  "} {
		_, err = propertyserver.Decode[*beans.InformalTag]([]propertyserver.RawElement{
			propertyserver.RawElement(`{"guid":"t-1","name":"pii"}`),
			propertyserver.RawElement(raw),
		})
		assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeData), "element %q", raw)
	}
}

func TestFetcherPropagatesErrors(t *testing.T) {
	srv := memory.New(nil)
	f := propertyserver.NewFetcher[*beans.Like](srv, "a-1", beans.KindLikes)

	_, err := f.FetchPage(context.Background(), -1, 10)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeValidation))
}

func TestFixtureApply(t *testing.T) {
	ctx := context.Background()
	fixture, err := propertyserver.ReadFixture(strings.NewReader(`{"assets":[{"typeName":"Database"}]}`))
	require.NoError(t, err)
	require.NoError(t, fixture.Add("owner-1", beans.KindLikes, &beans.Like{User: "erin"}))

	srv := memory.New(nil)
	require.NoError(t, fixture.Apply(ctx, srv))

	guid := fixture.Assets[0].GUID
	require.NotEmpty(t, guid)
	_, err = srv.GetAsset(ctx, guid)
	require.NoError(t, err)

	n, err := srv.CountElements(ctx, "owner-1", beans.KindLikes)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bad := &propertyserver.Fixture{Elements: []propertyserver.FixtureElement{{Owner: "o", Kind: "gossip", Element: propertyserver.RawElement(`{}`)}}}
	err = bad.Apply(ctx, srv)
	assert.True(t, ocferrors.HasType(err, ocferrors.ErrorTypeValidation))
}

func TestRegistry(t *testing.T) {
	r := propertyserver.NewRegistry()
	factory := func(context.Context, *config.Config, *zap.Logger) (propertyserver.PropertyServer, error) {
		return memory.New(nil), nil
	}

	require.NoError(t, r.Register(propertyserver.Info{Name: "test"}, factory))
	err := r.Register(propertyserver.Info{Name: "test"}, factory)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))
	assert.Error(t, r.Register(propertyserver.Info{}, factory))

	assert.True(t, r.Has("test"))
	assert.Equal(t, []propertyserver.Info{{Name: "test"}}, r.List())

	cfg := config.NewDefaultConfig()
	cfg.PropertyServer.Type = "test"
	srv, err := r.Create(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, srv)

	cfg.PropertyServer.Type = "missing"
	_, err = r.Create(context.Background(), cfg, nil)
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))
}

func TestGlobalRegistryHasMemory(t *testing.T) {
	assert.True(t, propertyserver.Has(memory.Name))
}
