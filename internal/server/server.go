// Package server exposes editing sessions over a JSON HTTP API.
//
// Each session holds one activity network. Clients add activities and
// dependencies, trigger calculations and fetch the diagram:
//
//	POST   /sessions                              create (optionally from a project body)
//	GET    /sessions                              list live sessions
//	GET    /sessions/{sid}                        network view
//	DELETE /sessions/{sid}
//	POST   /sessions/{sid}/activities             {"label": "...", "duration": 3}
//	DELETE /sessions/{sid}/activities/{id}
//	POST   /sessions/{sid}/edges                  {"from": 1, "to": 3}
//	DELETE /sessions/{sid}/edges/{from}/{to}
//	POST   /sessions/{sid}/calculate
//	GET    /sessions/{sid}/diagram.{format}       dot, svg, png or json
//
// Errors are returned as {"code": "...", "message": "..."} with a status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/session"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	SessionTTL      time.Duration
	CleanupInterval time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP API over a session store.
type Server struct {
	cfg    Config
	store  session.Store
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server. runner renders diagrams; store holds sessions.
func New(cfg Config, store session.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		runner: runner,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", s.handleHealth)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)

		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/activities", s.handleAddActivity)
			r.Delete("/activities/{id}", s.handleDeleteActivity)
			r.Post("/edges", s.handleConnect)
			r.Delete("/edges/{from}/{to}", s.handleDisconnect)
			r.Post("/calculate", s.handleCalculate)
			r.Get("/diagram.{format}", s.handleDiagram)
		})
	})
	return r
}

// instrument reports every request to the HTTP hooks with its route
// pattern rather than the raw path.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, time.Since(start))
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully. Expired
// sessions are removed in the background.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	if s.cfg.CleanupInterval > 0 {
		go session.RunJanitor(ctx, s.store, s.cfg.CleanupInterval, s.logger)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
