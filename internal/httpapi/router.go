// Package httpapi exposes the engine over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/internal/render"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

// DefaultMaxBodyBytes caps request bodies on the render endpoints.
const DefaultMaxBodyBytes = 4 << 20

const (
	headerOutcome = "X-Lute-Outcome"
	headerFormat  = "X-Lute-Format"
	headerReused  = "X-Lute-Reused"
)

// Engine is the part of the engine the router needs.
type Engine interface {
	Do(format, markdown string) render.Result
	Formats() []string
	DefaultFormat() string
}

// Option configures the router.
type Option func(*server)

type server struct {
	engine       Engine
	documents    interfaces.DocumentService
	gatherer     prometheus.Gatherer
	logger       interfaces.Logger
	maxBodyBytes int64
	now          func() time.Time
}

// WithLoggerProvider resolves the request logger from provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *server) { s.logger = logging.HTTPLogger(provider) }
}

// WithDocuments mounts GET /documents/* backed by svc.
func WithDocuments(svc interfaces.DocumentService) Option {
	return func(s *server) { s.documents = svc }
}

// WithGatherer mounts GET /metrics for g.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *server) { s.gatherer = g }
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewRouter builds the chi router for engine.
func NewRouter(engine Engine, opts ...Option) http.Handler {
	s := &server{
		engine:       engine,
		logger:       logging.HTTPLogger(nil),
		maxBodyBytes: DefaultMaxBodyBytes,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Get("/formats", s.handleFormats)
	r.Post("/render", s.handleRender)
	r.Post("/render/{format}", s.handleRender)
	if s.documents != nil {
		r.Get("/documents/*", s.handleDocument)
	}
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": s.engine.DefaultFormat(),
		"formats": s.engine.Formats(),
	})
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format == "" {
		format = s.engine.DefaultFormat()
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	res := s.engine.Do(format, string(body))
	if res.Err != nil {
		s.logger.WithContext(r.Context()).Error("http.render.renderer_error", "format", format, "error", res.Err)
	}
	w.Header().Set(headerOutcome, res.Outcome())
	w.Header().Set(headerFormat, format)
	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Output)
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "document path is required")
		return
	}
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	doc, err := s.documents.RenderDocument(r.Context(), name, interfaces.RenderOptions{
		Format: r.URL.Query().Get("format"),
		Force:  force,
	})
	switch {
	case err != nil && errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "document not found")
		return
	case err != nil && doc == nil:
		s.logger.WithContext(r.Context()).Error("http.document.failed", "path", name, "error", err)
		writeError(w, http.StatusInternalServerError, "document could not be loaded")
		return
	}

	outcome := "completed"
	switch {
	case err != nil:
		outcome = "failed"
		s.logger.WithContext(r.Context()).Error("http.document.renderer_error", "path", name, "error", err)
	case doc.Stopped:
		outcome = "stopped"
	}
	w.Header().Set(headerOutcome, outcome)
	w.Header().Set(headerFormat, doc.Format)
	w.Header().Set(headerReused, strconv.FormatBool(doc.Reused))
	w.Header().Set("Content-Type", contentType(doc.Format))
	if !doc.LastModified.IsZero() {
		w.Header().Set("Last-Modified", doc.LastModified.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc.Output)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(logging.ContextWithFields(r.Context(), map[string]any{"request_id": id}))
		}
		next.ServeHTTP(ww, r)
		s.logger.WithContext(r.Context()).Debug("http.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", s.now().Sub(start),
		)
	})
}

func contentType(format string) string {
	switch {
	case render.EmitsHTML(format):
		return "text/html; charset=utf-8"
	case format == render.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
