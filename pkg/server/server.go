// Package server exposes a materialized scope graph over HTTP.
//
// Routes:
//
//	GET /healthz                               liveness and graph identity
//	GET /scopes                                every scope, sorted by name
//	GET /scopes/{scope}                        one scope with its imports
//	GET /scopes/{scope}/units/{unit}           resolve a unit
//	GET /scopes/{scope}/resources/{path...}    resolve a resource (?all=1 lists every match)
//	GET /graph.dot                             DOT rendering of the definition
//	GET /metrics                               Prometheus metrics
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with "error" and "code" fields.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/scopegraph/pkg/definition"
	"github.com/matzehuels/scopegraph/pkg/errors"
	"github.com/matzehuels/scopegraph/pkg/materialize"
	"github.com/matzehuels/scopegraph/pkg/render"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// RequestIDHeader carries the request identifier.
const RequestIDHeader = "X-Request-ID"

// Options configures a Server.
type Options struct {
	Addr       string            // Listen address; default ":8090"
	Definition *definition.Graph // Enables /graph.dot when set
	Metrics    http.Handler      // Served at /metrics; nil means promhttp.Handler()
	Logger     *log.Logger       // nil means log.Default()
}

// Server serves queries against one graph.
type Server struct {
	graph  *materialize.Graph
	def    *definition.Graph
	logger *log.Logger
	router chi.Router
	http   *http.Server
}

// New creates a server for g.
func New(g *materialize.Graph, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8090"
	}
	if opts.Metrics == nil {
		opts.Metrics = promhttp.Handler()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{graph: g, def: opts.Definition, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/scopes", s.handleScopes)
	r.Route("/scopes/{scope}", func(r chi.Router) {
		r.Get("/", s.handleScope)
		r.Get("/units/{unit}", s.handleUnit)
		r.Get("/resources/*", s.handleResource)
	})
	if s.def != nil {
		r.Get("/graph.dot", s.handleDOT)
	}
	r.Handle("/metrics", opts.Metrics)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no such route")
	})
	s.router = r

	s.http = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Serving scope graph", "addr", s.http.Addr, "graph", s.graph.ID())
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type ctxKey struct{}

// requestID tags each request with a fresh or propagated identifier.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestID returns the identifier of the request ctx belongs to.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()))
	})
}

// scopeOf returns the scope named in the URL or writes a 404.
func (s *Server) scopeOf(w http.ResponseWriter, r *http.Request) (*scope.Scope, bool) {
	name := chi.URLParam(r, "scope")
	sc, ok := s.graph.Scope(name)
	if !ok {
		writeError(w, http.StatusNotFound, errors.ErrCodeNotFound, "no scope "+name)
	}
	return sc, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// writeLookupError maps lookup failures to HTTP statuses.
func writeLookupError(w http.ResponseWriter, err error) {
	if stderrors.Is(err, scope.ErrClosed) {
		writeError(w, http.StatusServiceUnavailable, errors.ErrCodeInternal, err.Error())
		return
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeError(w, http.StatusInternalServerError, code, errors.UserMessage(err))
}

func (s *Server) handleDOT(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(render.ToDOT(s.def, render.Options{Detailed: true})))
}
