package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookfinder/internal/auth"
	"bookfinder/internal/book"
	"bookfinder/internal/config"
	"bookfinder/internal/httpx"
	"bookfinder/internal/logger"
	"bookfinder/internal/mailer"
	"bookfinder/internal/profile"
	"bookfinder/internal/savedbook"
	"bookfinder/internal/source"
)

// SignInPath is where browsers are sent when a gated route needs a user.
const SignInPath = "/auth"

// Probe is a named readiness check.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

// Deps carries everything the router needs.
type Deps struct {
	Logger      logger.Logger
	Books       *book.Service
	Catalog     *source.Catalog
	Saved       *savedbook.Service
	Profiles    *profile.Service
	Auth        auth.Provider
	Contact     *mailer.ContactService
	RateLimiter *httpx.RateLimiter
	Probes      []Probe // empty in stub mode
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// NewRouter builds the chi router with the global middleware chain.
func NewRouter(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.Recovery(d.Logger))
	r.Use(httpx.AccessLog(d.Logger))
	r.Use(httpx.SecurityHeadersMiddleware(cfg.EnableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.CORSOrigins))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware)
	}
	r.Use(httpx.Authenticate(d.Auth))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	registerRoutes(r, d)
	return r
}

// New builds the HTTP server.
func New(cfg *config.Config, d Deps) *Server {
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewRouter(cfg, d),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	return &Server{http: s, logger: d.Logger}
}

// Start blocks until the server fails or is shut down.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logger.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server within ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}
