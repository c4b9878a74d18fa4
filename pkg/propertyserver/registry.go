package propertyserver

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/logger"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// Factory creates a backend from configuration.
type Factory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (PropertyServer, error)

// Info describes a registered backend.
type Info struct {
	Name         string
	Description  string
	Capabilities []string
}

type registration struct {
	info    Info
	factory Factory
}

// Registry maps backend names to factories.
type Registry struct {
	backends map[string]registration
	mu       sync.RWMutex
	logger   *zap.Logger
}

// Global registry instance
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]registration),
		logger:   logger.Get().With(zap.String("component", "property_server_registry")),
	}
}

// Register adds a backend factory.
func (r *Registry) Register(info Info, factory Factory) error {
	if info.Name == "" || factory == nil {
		return ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "backend name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[info.Name]; exists {
		return ocferrors.New(ocferrors.ErrorTypeConfig, "property server backend already registered").
			WithDetail("backend", info.Name)
	}
	r.backends[info.Name] = registration{info: info, factory: factory}
	r.logger.Debug("property server backend registered", zap.String("name", info.Name))
	return nil
}

// Create builds the backend named by cfg.PropertyServer.Type.
func (r *Registry) Create(ctx context.Context, cfg *config.Config, log *zap.Logger) (PropertyServer, error) {
	if cfg == nil {
		return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "configuration is required")
	}
	name := cfg.PropertyServer.Type

	r.mu.RLock()
	reg, exists := r.backends[name]
	r.mu.RUnlock()

	if !exists {
		return nil, ocferrors.New(ocferrors.ErrorTypeConfig, "property server backend not found").
			WithDetail("backend", name)
	}
	if log == nil {
		log = logger.Get()
	}

	server, err := reg.factory(ctx, cfg, log.With(zap.String("backend", name)))
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConfig, "failed to create property server").
			WithDetail("backend", name)
	}
	return server, nil
}

// List returns the registered backends ordered by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.backends))
	for _, reg := range r.backends {
		out = append(out, reg.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has checks if a backend is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.backends[name]
	return exists
}

// Register adds a backend to the global registry. Backends call it from init, so
// a duplicate name panics.
func Register(info Info, factory Factory) {
	if err := globalRegistry.Register(info, factory); err != nil {
		panic(err)
	}
}

// Create builds a backend from the global registry.
func Create(ctx context.Context, cfg *config.Config, log *zap.Logger) (PropertyServer, error) {
	return globalRegistry.Create(ctx, cfg, log)
}

// List returns the backends in the global registry.
func List() []Info {
	return globalRegistry.List()
}

// Has checks if a backend is registered in the global registry.
func Has(name string) bool {
	return globalRegistry.Has(name)
}
