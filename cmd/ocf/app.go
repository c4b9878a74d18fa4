package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/connectedasset"
	"github.com/ajitpratap0/ocf/pkg/logger"
	"github.com/ajitpratap0/ocf/pkg/metrics"
	"github.com/ajitpratap0/ocf/pkg/observability"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// app holds what every command needs once the configuration is known.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	server   propertyserver.PropertyServer
	registry *prometheus.Registry
	paging   *metrics.PagingMetrics
	shutdown observability.ShutdownFunc
}

func newApp(ctx context.Context, v *viper.Viper) (*app, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	})
	if err != nil {
		return nil, err
	}
	logger.Set(log)
	log = log.With(zap.String("service", cfg.Name))

	shutdown, err := observability.InitTracing(observability.TracingConfigFrom(cfg.Observability, version))
	if err != nil {
		return nil, err
	}

	server, err := propertyserver.Create(ctx, cfg, log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	log.Debug("property server ready",
		zap.String("backend", cfg.PropertyServer.Type),
		zap.Int("page_size", cfg.Paging.MaxCacheSize))

	return &app{
		cfg:      cfg,
		log:      log,
		server:   server,
		registry: reg,
		paging:   metrics.NewPagingMetrics(reg),
		shutdown: shutdown,
	}, nil
}

// connect loads an asset with the configured page size.
func (a *app) connect(ctx context.Context, guid string) (*connectedasset.ConnectedAsset, error) {
	return connectedasset.New(ctx, a.server, guid,
		connectedasset.WithMaxCacheSize(a.cfg.Paging.MaxCacheSize),
		connectedasset.WithLogger(a.log),
		connectedasset.WithObserver(a.paging))
}

func (a *app) close(ctx context.Context) {
	if err := a.server.Close(ctx); err != nil {
		a.log.Warn("failed to close property server", zap.Error(err))
	}
	if err := a.shutdown(ctx); err != nil {
		a.log.Warn("failed to flush traces", zap.Error(err))
	}
	_ = a.log.Sync()
}
