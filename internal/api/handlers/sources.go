package handlers

import (
	"net/http"

	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// SourceHandler handles data source registry API endpoints
type SourceHandler struct {
	registry *source.Registry
	logger   *logger.Logger
}

// NewSourceHandler creates a new source handler
func NewSourceHandler(registry *source.Registry, log *logger.Logger) *SourceHandler {
	return &SourceHandler{
		registry: registry,
		logger:   log,
	}
}

// List returns metadata for every registered source
// GET /api/sources
func (h *SourceHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	sources := make([]source.Metadata, 0, len(names))
	for _, name := range names {
		if src, ok := h.registry.Get(name); ok {
			sources = append(sources, src.Metadata())
		}
	}

	respondJSON(w, http.StatusOK, sources)
}

// Health runs a health check over every registered source
// GET /api/sources/health
func (h *SourceHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.HealthCheckAll(r.Context()))
}

// Schema returns the combined schema of all registered sources
// GET /api/sources/schema
func (h *SourceHandler) Schema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.registry.CombinedSchema())
}
