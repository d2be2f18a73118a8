// Package server exposes seed tree indexing over HTTP.
//
// Workloads are posted as TOML or JSON, indexed through a
// [pipeline.Runner] and kept in a bounded in-memory registry keyed by
// the tree's store id. Lookback and cluster queries run against the
// registered trees.
//
// # Routes
//
//	GET    /healthz
//	POST   /v1/trees
//	GET    /v1/trees/{id}
//	DELETE /v1/trees/{id}
//	GET    /v1/trees/{id}/lookback?seed=&limit=
//	GET    /v1/trees/{id}/clusters?limit=
//	GET    /v1/trees/{id}/store
//	GET    /v1/trees/{id}/dot
//
// Errors are JSON bodies of the form {"error": {"code": ..., "message": ...}}
// with the status derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ziptree/pkg/observability"
	"github.com/matzehuels/ziptree/pkg/pipeline"
)

// Options configures a [Server]. Zero fields take the defaults below.
type Options struct {
	MaxTrees     int
	MaxBodyBytes int64
	DefaultLimit uint64
}

const (
	defaultMaxTrees     = 256
	defaultMaxBodyBytes = 8 << 20
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	trees  *registry
	opts   Options
	router chi.Router
}

// New creates a server that indexes workloads with runner.
func New(runner *pipeline.Runner, logger *log.Logger, opts Options) *Server {
	if opts.MaxTrees <= 0 {
		opts.MaxTrees = defaultMaxTrees
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.DefaultLimit == 0 {
		opts.DefaultLimit = pipeline.DefaultLimit
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		logger: logger,
		trees:  newRegistry(opts.MaxTrees),
		opts:   opts,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1/trees", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/lookback", s.handleLookback)
			r.Get("/clusters", s.handleClusters)
			r.Get("/store", s.handleStore)
			r.Get("/dot", s.handleDOT)
		})
	})
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// logRequests logs each request and reports it to the server hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
