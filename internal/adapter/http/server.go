package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Submitter runs one allocation submission to completion.
type Submitter interface {
	Submit(ctx context.Context, in session.Inputs) domain.Outcome
}

// StateReader exposes the current form and result state.
type StateReader interface {
	Snapshot() session.Snapshot
}

// Server serves the allocation form plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	submitter  Submitter
	state      StateReader
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the form routes and /healthz, /readyz, /metrics.
func NewServer(addr string, submitter Submitter, state StateReader, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		// No WriteTimeout: a submit response waits on the allocation service,
		// which has no deadline unless ALLOCATOR_TIMEOUT sets one.
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		submitter: submitter,
		state:     state,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.withLogging(s.handleForm))
	mux.HandleFunc("POST /submit", s.withLogging(s.handleSubmit))
	mux.HandleFunc("GET /results", s.withLogging(s.handleResults))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func (s *Server) handleForm(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, newPageData(s.state.Snapshot())); err != nil {
		s.logger.Error("render form page", "error", err)
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	in := session.Inputs{
		Regions:  r.PostForm.Get("regions"),
		Supplies: r.PostForm.Get("supplies"),
		Capacity: r.PostForm.Get("capacity"),
	}

	// A browser that navigates away should not cancel the submission; only a
	// newer submission does.
	s.submitter.Submit(context.WithoutCancel(r.Context()), in)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newResultsView(s.state.Snapshot()))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// withLogging wraps a handler with request logging.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
