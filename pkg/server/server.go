// Package server exposes tree reconstruction over HTTP.
//
// Routes:
//
//	POST   /v1/trees/closure   build from ancestor/descendant pairs
//	POST   /v1/trees/direct    build from parent/child edges
//	POST   /v1/trees/import    rebuild from element records
//	POST   /v1/render          draw element records as SVG or DOT
//	GET    /v1/store           list stored tree names
//	PUT    /v1/store/{name}    save element records under name
//	GET    /v1/store/{name}    load a stored tree
//	DELETE /v1/store/{name}    delete a stored tree
//	GET    /healthz            liveness
//	GET    /metrics            Prometheus metrics
//
// Errors are returned as {"code": ..., "message": ...}. Inputs that are
// well-formed but do not describe a tree get 422; malformed inputs get 400.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pairtree/pkg/pipeline"
	"github.com/matzehuels/pairtree/pkg/store"
)

const (
	maxBodyBytes    = 10 << 20
	shutdownTimeout = 30 * time.Second
)

// Options configures a [Server].
type Options struct {
	Addr        string   // listen address, default ":8080"
	CORSOrigins []string // allowed origins, default all

	Runner  *pipeline.Runner // default: uncached runner
	Store   store.Store      // default: in-memory store
	Logger  *log.Logger      // default: log.Default()
	Metrics *Metrics         // default: NewMetrics()
}

// Server is the HTTP API.
type Server struct {
	addr    string
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	metrics *Metrics
	handler http.Handler
}

// New creates a server and builds its router.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.Instrument("memory", store.NewMemory())
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	s := &Server{
		addr:    opts.Addr,
		runner:  opts.Runner,
		store:   opts.Store,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	s.handler = s.routes(opts.CORSOrigins)
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) routes(origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/trees/closure", s.handleBuild("closure"))
		r.Post("/trees/direct", s.handleBuild("direct"))
		r.Post("/trees/import", s.handleImport)
		r.Post("/render", s.handleRender)

		r.Get("/store", s.handleList)
		r.Put("/store/{name}", s.handleSave)
		r.Get("/store/{name}", s.handleLoad)
		r.Delete("/store/{name}", s.handleDelete)
	})
	return r
}

// logRequests logs each request once it completes and records it in the
// HTTP metrics under its route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		d := time.Since(start)
		s.metrics.observeRequest(r.Method, route, code, d)
		s.logger.Info("handled request",
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"status", code,
			"bytes", ww.BytesWritten(),
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
			"duration", d)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
