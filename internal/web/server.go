// Package web provides the HTTP server for the dashboard API and status page.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/impact-tracker/internal/config"
	"github.com/JonMunkholm/impact-tracker/internal/core"
	webmw "github.com/JonMunkholm/impact-tracker/internal/web/middleware"
)

// Service is the tracker functionality served over HTTP.
// Implemented by *core.Service.
type Service interface {
	Sources() []string
	Sync(ctx context.Context, source, trigger string) (core.SyncResult, error)
	SyncStatus(ctx context.Context, source string) (core.SyncState, bool, error)
	SyncHistory(ctx context.Context, source string, limit int) ([]core.SyncRun, error)
	Metrics(ctx context.Context, filters core.FilterState) (core.Metrics, error)
	Asset(ctx context.Context, subProjectCanon string) (core.Asset, bool, error)
}

// Options configures a Server.
type Options struct {
	Server   config.ServerConfig
	Security config.SecurityConfig
	Rate     config.RateLimitConfig

	// DefaultSource is used when a status or history request names none.
	DefaultSource string

	// Health reports backend reachability for /healthz. Optional.
	Health func(ctx context.Context) error
}

// Server is the HTTP server of the tracker.
type Server struct {
	service Service
	opts    Options
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(service Service, opts Options) *Server {
	if opts.DefaultSource == "" {
		opts.DefaultSource = "google-sheets"
	}
	if opts.Server.RequestTimeout <= 0 {
		opts.Server.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.opts.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders(s.opts.Security.EnableCSP))

	if s.opts.Rate.Enabled {
		s.router.Use(newRateLimiter(s.opts.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	// Reads are bounded by the request timeout.
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.Server.RequestTimeout))

		r.Get("/", s.handleStatusPage)
		r.Get("/api/metrics", s.handleMetrics)
		r.Get("/api/assets", s.handleAsset)
		r.Get("/api/sync/status", s.handleSyncStatus)
		r.Get("/api/sync/history", s.handleSyncHistory)
	})

	// Sync triggers are protected and run under the sync timeout instead.
	s.router.Group(func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(s.opts.Security))
		if s.opts.Rate.Enabled {
			r.Use(newRateLimiter(s.opts.Rate.SyncLimit, time.Minute).middleware)
		}
		r.Post("/api/sync/{source}", s.handleSync)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.Server.ReadTimeout,
		WriteTimeout: s.opts.Server.WriteTimeout,
		IdleTimeout:  s.opts.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// The status page only uses an inline stylesheet.
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "json encode error", "error", err, "path", r.URL.Path)
	}
}
