// Package memory is a property server that keeps everything in process memory.
// It backs tests, demos and the fixture-driven CLI workflow.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
)

// Name is the registered backend name.
const Name = "memory"

func init() {
	propertyserver.Register(propertyserver.Info{
		Name:         Name,
		Description:  "In-process property server, optionally seeded from a JSON fixture",
		Capabilities: []string{"read", "write", "fixtures"},
	}, func(ctx context.Context, cfg *config.Config, log *zap.Logger) (propertyserver.PropertyServer, error) {
		s := New(log)
		if cfg.PropertyServer.Fixture != "" {
			if err := s.LoadFixture(ctx, cfg.PropertyServer.Fixture); err != nil {
				return nil, err
			}
		}
		return s, nil
	})
}

type collectionKey struct {
	owner string
	kind  beans.Kind
}

// Server is an in-memory property server.
type Server struct {
	mu       sync.RWMutex
	assets   map[string]*beans.Asset
	elements map[collectionKey][]propertyserver.RawElement
	offline  atomic.Bool
	logger   *zap.Logger
}

var _ propertyserver.ReadWriter = (*Server)(nil)

// New creates an empty server.
func New(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		assets:   make(map[string]*beans.Asset),
		elements: make(map[collectionKey][]propertyserver.RawElement),
		logger:   log.With(zap.String("component", "memory_property_server")),
	}
}

// SetOffline makes every call fail with a connection error until it is called
// again with false.
func (s *Server) SetOffline(offline bool) {
	s.offline.Store(offline)
}

func (s *Server) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, "request cancelled")
	}
	if s.offline.Load() {
		return ocferrors.New(ocferrors.ErrorTypeConnection, "property server is offline").
			WithDetail("backend", Name)
	}
	return nil
}

// LoadFixture seeds the server from a fixture file.
func (s *Server) LoadFixture(ctx context.Context, path string) error {
	f, err := propertyserver.ReadFixtureFile(path)
	if err != nil {
		return err
	}
	if err := f.Apply(ctx, s); err != nil {
		return err
	}
	s.logger.Info("fixture loaded",
		zap.String("path", path),
		zap.Int("assets", len(f.Assets)),
		zap.Int("elements", len(f.Elements)))
	return nil
}

// PutAsset stores a copy of the asset, replacing any asset with the same GUID.
func (s *Server) PutAsset(ctx context.Context, asset *beans.Asset) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if asset == nil {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "asset is required")
	}
	if err := propertyserver.ValidateGUID("asset_guid", asset.GUID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.GUID] = asset.Clone()
	return nil
}

// AddElement appends a copy of element to a collection.
func (s *Server) AddElement(ctx context.Context, ownerGUID string, kind beans.Kind, element propertyserver.RawElement) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return err
	}
	if len(element) == 0 {
		return ocferrors.New(ocferrors.ErrorTypeValidation, "element is required")
	}

	key := collectionKey{owner: ownerGUID, kind: kind}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements[key] = append(s.elements[key], copyRaw(element))
	return nil
}

// GetAsset implements propertyserver.PropertyServer.
func (s *Server) GetAsset(ctx context.Context, assetGUID string) (*beans.Asset, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if err := propertyserver.ValidateGUID("asset_guid", assetGUID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[assetGUID]
	if !ok {
		return nil, propertyserver.AssetNotFound(assetGUID)
	}
	return a.Clone(), nil
}

// CountElements implements propertyserver.PropertyServer.
func (s *Server) CountElements(ctx context.Context, ownerGUID string, kind beans.Kind) (int, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if err := propertyserver.ValidateCollection(ownerGUID, kind); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements[collectionKey{owner: ownerGUID, kind: kind}]), nil
}

// FetchElements implements propertyserver.PropertyServer.
func (s *Server) FetchElements(ctx context.Context, ownerGUID string, kind beans.Kind, startFrom, pageSize int) ([]propertyserver.RawElement, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	if err := propertyserver.ValidatePage(ownerGUID, kind, startFrom, pageSize); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.elements[collectionKey{owner: ownerGUID, kind: kind}]
	if startFrom >= len(stored) {
		return []propertyserver.RawElement{}, nil
	}
	end := min(startFrom+pageSize, len(stored))

	page := make([]propertyserver.RawElement, 0, end-startFrom)
	for _, raw := range stored[startFrom:end] {
		page = append(page, copyRaw(raw))
	}
	return page, nil
}

// Health implements propertyserver.PropertyServer.
func (s *Server) Health(ctx context.Context) error {
	return s.check(ctx)
}

// Close implements propertyserver.PropertyServer.
func (s *Server) Close(context.Context) error {
	return nil
}

func copyRaw(raw propertyserver.RawElement) propertyserver.RawElement {
	return append(propertyserver.RawElement(nil), raw...)
}
