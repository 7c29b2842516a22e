package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/waterflow-etl/internal/domain"
)

// FeatureProvider hands out the merged flow-feature collection, blocking
// until the underlying load completes, and reports readiness.
type FeatureProvider interface {
	Get(ctx context.Context) ([]domain.FlowFeature, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the flow-feature collection plus health, readiness, and
// metrics HTTP endpoints.
type Server struct {
	httpServer *http.Server
	provider   FeatureProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /features, /healthz, /readyz, and
// /metrics routes.
func NewServer(addr string, provider FeatureProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.Handle("/features", getOnly(http.HandlerFunc(s.handleFeatures)))
	mux.Handle("/healthz", getOnly(http.HandlerFunc(s.handleHealth)))
	mux.Handle("/readyz", getOnly(http.HandlerFunc(s.handleReady)))
	mux.Handle("/metrics", getOnly(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleFeatures serves the merged collection as a JSON array. A request
// arriving before the background load finishes waits for it; nobody ever
// sees a partial list.
func (s *Server) handleFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := s.provider.Get(r.Context())
	if err != nil {
		s.logger.Error("features request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if features == nil {
		features = []domain.FlowFeature{}
	}
	writeJSON(w, http.StatusOK, features)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// getOnly restricts a route to GET requests, matching the behavior of the
// "GET /path" ServeMux patterns available in newer Go releases.
func getOnly(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
