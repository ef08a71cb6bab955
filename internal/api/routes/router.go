package routes

import (
	"net/http"

	"github.com/careband/postop-triage/internal/api/handlers"
	"github.com/careband/postop-triage/internal/api/middleware"
	"github.com/careband/postop-triage/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	reportHandler *handlers.SymptomReportHandler
	metrics       *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(reportHandler *handlers.SymptomReportHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		reportHandler: reportHandler,
		metrics:       metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			return
		}
	})

	// Symptom report webhook. The handler guards the method itself as well,
	// so direct invocations behave the same as routed ones.
	r.mux.HandleFunc("/api/v1/reports", r.reportHandler.HandleReport)

	// Apply middleware in reverse order (last middleware wraps first).
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}
