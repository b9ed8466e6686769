// Package server serves visible commit graphs over HTTP.
//
// Clients upload a commit log to create a session, then page through its
// rows and send actions against them:
//
//	POST   /api/v1/sessions                    create a session from a log
//	GET    /api/v1/sessions/{id}               session summary
//	DELETE /api/v1/sessions/{id}               drop the session
//	PUT    /api/v1/sessions/{id}/view          rebuild the view (sort, heads, filter)
//	GET    /api/v1/sessions/{id}/rows          ?offset=&limit= page of rows
//	POST   /api/v1/sessions/{id}/actions       click, hover, select, collapse-all, expand-all
//	GET    /api/v1/sessions/{id}/commits/{c}   row, children and branches of a commit
//	GET    /api/v1/sessions/{id}/graph.dot     DOT export of the view
//	GET    /api/v1/sessions/{id}/graph.svg     SVG export of the view
//
// Errors are JSON objects {"code": ..., "message": ...} carrying the codes
// of package errors.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/commitgraph/pkg/cache"
	"github.com/matzehuels/commitgraph/pkg/session"
)

// Defaults applied by [New].
const (
	DefaultAddr         = ":7700"
	DefaultPageSize     = 200
	DefaultMaxPageSize  = 2000
	DefaultMaxBodyBytes = 256 << 20
	cleanupInterval     = time.Minute
)

// Config configures a [Server].
type Config struct {
	Addr        string
	PageSize    int
	MaxPageSize int
	// MaxBodyBytes caps uploaded logs.
	MaxBodyBytes int64

	// DefaultSort is used when a request names no sort mode.
	DefaultSort      string
	MissingTimestamp int64
	// Palette colors SVG exports.
	Palette []string

	SessionTTL  time.Duration
	MaxSessions int
	Sessions    session.Store

	// Cache, if set, stores Bek orders between sessions and restarts.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	Logger *log.Logger
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = DefaultMaxPageSize
	}
	if c.PageSize <= 0 {
		c.PageSize = min(DefaultPageSize, c.MaxPageSize)
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = session.DefaultTTL
	}
	if c.Sessions == nil {
		c.Sessions = session.NewMemoryStore(c.MaxSessions)
	}
	if c.Keyer == nil {
		c.Keyer = cache.NewDefaultKeyer()
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = cache.DefaultTTL
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	orders *cache.OrderStore
	router chi.Router
}

// New returns a server for cfg.
func New(cfg Config) *Server {
	cfg.setDefaults()
	s := &Server{cfg: cfg}
	if cfg.Cache != nil {
		s.orders = cache.NewOrderStore(cfg.Cache, cfg.CacheTTL)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Use(s.withSession)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Put("/view", s.handleSetView)
			r.Get("/rows", s.handleRows)
			r.Post("/actions", s.handleAction)
			r.Get("/commits/{commit}", s.handleCommit)
			r.Get("/graph.dot", s.handleDOT)
			r.Get("/graph.svg", s.handleSVG)
		})
	})
	return r
}

// Run serves until ctx is done, then shuts down gracefully. Expired
// sessions are cleaned up in the background.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanup(ctx)

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) cleanup(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.cfg.Sessions.Cleanup(ctx); err != nil {
				s.cfg.Logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}
