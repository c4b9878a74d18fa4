package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/paging"
)

func restoreProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
}

func TestInitTracingExportsPagingSpans(t *testing.T) {
	restoreProvider(t)
	var buf bytes.Buffer

	shutdown, err := InitTracing(TracingConfig{Enabled: true, ServiceName: "ocf-test", Exporter: ExporterStdout, SamplingRate: 1, Writer: &buf})
	require.NoError(t, err)

	it, err := paging.FromSlice([]string{"a", "b", "c"}, 2, nil, paging.WithName("SearchKeywords"))
	require.NoError(t, err)
	_, err = it.Collect(context.Background())
	require.NoError(t, err)

	require.NoError(t, shutdown(context.Background()))
	out := buf.String()
	assert.Contains(t, out, "paging.FetchPage")
	assert.Contains(t, out, "SearchKeywords")
	assert.Contains(t, out, "ocf-test")
}

func TestInitTracingDisabled(t *testing.T) {
	restoreProvider(t)
	var buf bytes.Buffer

	shutdown, err := InitTracing(TracingConfig{Enabled: false, Writer: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "ignored")
	span.End()
	require.NoError(t, shutdown(context.Background()))
	assert.Empty(t, buf.String())
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	restoreProvider(t)
	_, err := InitTracing(TracingConfig{Enabled: true, Exporter: "zipkin"})
	assert.True(t, ocferrors.IsType(err, ocferrors.ErrorTypeConfig))
}

func TestTracingConfigFrom(t *testing.T) {
	obs := config.NewDefaultConfig().Observability
	obs.EnableTracing = true
	cfg := TracingConfigFrom(obs, "1.2.3")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "1.2.3", cfg.ServiceVersion)
	assert.Equal(t, obs.TracingExporter, cfg.Exporter)
}
