package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Encoding: "console"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := WithAssetGUID(context.Background(), "asset-1")
	ctx = WithIterator(ctx, "Comments")
	FromContext(ctx, base).Info("browsing")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "asset-1", fields["asset_guid"])
	assert.Equal(t, "Comments", fields["iterator"])
	assert.NotContains(t, fields, "request_id")

	assert.Same(t, base, FromContext(context.Background(), base))
}

func TestFromContextUsesGlobal(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	defer Set(nil)

	FromContext(WithRequestID(context.Background(), "req-7"), nil).Info("served")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
}

func TestGetDefault(t *testing.T) {
	Set(nil)
	assert.NotNil(t, Get())
}
