package source

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wonny/buffett/backend/pkg/logger"
)

// Registry holds named data sources and tracks their connectivity.
// SSOT: source lookup by name goes through the registry.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]DataSource
	logger  *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		sources: make(map[string]DataSource),
		logger:  log,
	}
}

// Register connects the source and stores it under its declared name.
// On connect failure the registry is left unchanged. Registering a
// second source under an existing name silently replaces the first.
func (r *Registry) Register(ctx context.Context, src DataSource) error {
	name := src.Metadata().Name

	if err := src.Connect(ctx); err != nil {
		r.logger.WithError(err).WithField("source", name).Error("Failed to connect data source")
		return fmt.Errorf("connect source %s: %w", name, err)
	}

	r.mu.Lock()
	r.sources[name] = src
	r.mu.Unlock()

	r.logger.WithField("source", name).Info("Registered data source")
	return nil
}

// Remove disconnects and discards the named source.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	src, ok := r.sources[name]
	if ok {
		delete(r.sources, name)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	if err := src.Disconnect(); err != nil {
		r.logger.WithError(err).WithField("source", name).Warn("Disconnect failed during removal")
	}
	r.logger.WithField("source", name).Info("Removed data source")
	return true
}

// Get returns the named source.
func (r *Registry) Get(name string) (DataSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[name]
	return src, ok
}

// Names returns all registered source names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheckAll checks every registered source.
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]bool {
	r.mu.RLock()
	snapshot := make(map[string]DataSource, len(r.sources))
	for name, src := range r.sources {
		snapshot[name] = src
	}
	r.mu.RUnlock()

	health := make(map[string]bool, len(snapshot))
	for name, src := range snapshot {
		health[name] = src.HealthCheck(ctx)
	}
	return health
}

// CombinedSchema returns the schema of every registered source keyed
// by source name.
func (r *Registry) CombinedSchema() map[string]map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	combined := make(map[string]map[string][]string, len(r.sources))
	for name, src := range r.sources {
		combined[name] = src.Schema()
	}
	return combined
}

// Cleanup disconnects every source and empties the registry.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, src := range r.sources {
		if err := src.Disconnect(); err != nil {
			r.logger.WithError(err).WithField("source", name).Warn("Disconnect failed during cleanup")
		}
	}
	r.sources = make(map[string]DataSource)
}
