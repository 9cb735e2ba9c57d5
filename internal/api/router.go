package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/buffett/backend/internal/api/handlers"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	stockHandler *handlers.StockHandler,
	analysisHandler *handlers.AnalysisHandler,
	sourceHandler *handlers.SourceHandler,
	jobsHandler *handlers.JobsHandler,
	corsOrigins []string,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	// Stock record endpoints
	r.HandleFunc("/stocks", stockHandler.List).Methods("GET")
	r.HandleFunc("/stocks", stockHandler.Add).Methods("POST")
	r.HandleFunc("/stocks/{symbol}", stockHandler.Get).Methods("GET")
	r.HandleFunc("/stocks/{symbol}", stockHandler.Remove).Methods("DELETE")
	r.HandleFunc("/analyze-stocks", analysisHandler.AnalyzeAll).Methods("POST")

	// API v1
	api := r.PathPrefix("/api").Subrouter()

	// Integrated analysis endpoints
	api.HandleFunc("/analysis/{symbol}", analysisHandler.GetIntegrated).Methods("GET")
	api.HandleFunc("/validate/{symbol}", analysisHandler.ValidateSymbol).Methods("GET")

	// Source registry endpoints
	api.HandleFunc("/sources", sourceHandler.List).Methods("GET")
	api.HandleFunc("/sources/health", sourceHandler.Health).Methods("GET")
	api.HandleFunc("/sources/schema", sourceHandler.Schema).Methods("GET")

	// Scheduled job endpoints
	api.HandleFunc("/jobs", jobsHandler.List).Methods("GET")
	api.HandleFunc("/jobs/{name}/history", jobsHandler.History).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(corsMiddleware(corsOrigins))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "buffett-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware sets CORS headers for the configured origins.
func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowed := make(map[string]bool, len(origins))
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
