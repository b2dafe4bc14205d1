package documents

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-lute/internal/archive"
	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/internal/metrics"
	"github.com/goliatone/go-lute/internal/render"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

const tracerName = "github.com/goliatone/go-lute/internal/documents"

// ErrNilRenderer is returned by NewService without a renderer.
var ErrNilRenderer = errors.New("documents: renderer is required")

// Renderer is the part of the engine the service needs.
type Renderer interface {
	Do(format, markdown string) render.Result
	DefaultFormat() string
}

// Config locates the content tree.
type Config struct {
	// ContentDir is the root of the content tree on disk. Ignored when FS is
	// set.
	ContentDir string
	FS         fs.FS
	Pattern    string
	Recursive  bool
}

// Service renders documents from a content tree, reusing archived output for
// unchanged files when an archive is configured.
type Service struct {
	loader   *Loader
	renderer Renderer
	archive  archive.Repository
	logger   interfaces.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

var _ interfaces.DocumentService = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithArchive stores every successful render in repo and reuses matching
// records.
func WithArchive(repo archive.Repository) Option {
	return func(s *Service) { s.archive = repo }
}

// WithLoggerProvider resolves the service logger from provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *Service) { s.logger = logging.DocumentsLogger(provider) }
}

// WithMetrics counts archive reuse on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer replaces the global OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock sets the time source for archive records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the service.
func NewService(cfg Config, renderer Renderer, opts ...Option) (*Service, error) {
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	fsys := cfg.FS
	if fsys == nil {
		dir := strings.TrimSpace(cfg.ContentDir)
		if dir == "" {
			dir = "."
		}
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("documents: content dir %s: %w", dir, err)
		}
		fsys = os.DirFS(dir)
	}
	s := &Service{
		loader:   NewLoader(fsys, LoaderConfig{Pattern: cfg.Pattern, Recursive: cfg.Recursive}),
		renderer: renderer,
		logger:   logging.DocumentsLogger(nil),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Render converts raw Markdown with format, or the engine default when
// format is empty.
func (s *Service) Render(ctx context.Context, markdown []byte, format string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	res := s.renderer.Do(s.resolveFormat(format, ""), string(markdown))
	return res.Output, res.Err
}

// Load reads a document without rendering it.
func (s *Service) Load(ctx context.Context, path string) (*interfaces.Document, error) {
	return s.loader.LoadFile(ctx, path)
}

// RenderDocument loads and renders one document.
func (s *Service) RenderDocument(ctx context.Context, path string, opts interfaces.RenderOptions) (*interfaces.Document, error) {
	doc, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.renderLoaded(ctx, doc, opts); err != nil {
		return doc, err
	}
	return doc, nil
}

// RenderDirectory renders every document below dir. Failures are collected
// in the summary and do not stop the run; the returned error is reserved for
// discovery problems and cancellation.
func (s *Service) RenderDirectory(ctx context.Context, dir string, opts interfaces.RenderOptions) ([]*interfaces.Document, interfaces.RenderSummary, error) {
	var summary interfaces.RenderSummary

	ctx, span := s.tracer.Start(ctx, "documents.render_directory",
		trace.WithAttributes(attribute.String("lute.directory", dir)))
	defer span.End()

	docs, err := s.loader.LoadDirectory(ctx, dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, summary, err
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return docs, summary, err
		}
		err := s.renderLoaded(ctx, doc, opts)
		switch {
		case err != nil:
			summary.Failed++
			summary.Errors = append(summary.Errors, err)
		case doc.Reused:
			summary.Reused++
		case doc.Stopped:
			summary.Stopped++
		default:
			summary.Rendered++
		}
	}

	span.SetAttributes(
		attribute.Int("lute.documents", len(docs)),
		attribute.Int("lute.failed", summary.Failed),
	)
	s.logger.Info("documents.directory.rendered",
		"directory", dir,
		"rendered", summary.Rendered,
		"reused", summary.Reused,
		"stopped", summary.Stopped,
		"failed", summary.Failed,
	)
	return docs, summary, nil
}

func (s *Service) renderLoaded(ctx context.Context, doc *interfaces.Document, opts interfaces.RenderOptions) error {
	format := s.resolveFormat(opts.Format, doc.FrontMatter.Format)
	doc.Format = format
	checksum := hex.EncodeToString(doc.Checksum)
	logger := logging.WithDocumentContext(s.logger.WithContext(ctx), doc.Path, format, "render")

	_, span := s.tracer.Start(ctx, "documents.render_document",
		trace.WithAttributes(
			attribute.String("lute.document", doc.Path),
			attribute.String("lute.format", format),
		))
	defer span.End()

	if s.archive != nil && !opts.Force {
		rec, err := s.archive.Get(ctx, doc.Path, format)
		if err == nil && rec.Checksum == checksum {
			doc.Output = rec.Output
			doc.Stopped = rec.Stopped
			doc.Reused = true
			s.metrics.ArchiveReused()
			span.SetAttributes(attribute.Bool("lute.reused", true))
			logger.Debug("documents.render.reused")
			return nil
		}
		var nf *archive.NotFoundError
		if err != nil && !errors.As(err, &nf) {
			logger.Warn("documents.archive.lookup_failed", "error", err)
		}
	}

	res := s.renderer.Do(format, string(doc.Body))
	doc.Output = res.Output
	doc.Stopped = res.Stopped
	doc.Reused = false
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		logger.Error("documents.render.failed", "error", res.Err)
		return fmt.Errorf("documents: render %s: %w", doc.Path, res.Err)
	}
	span.SetAttributes(attribute.String("lute.outcome", res.Outcome()))

	if s.archive == nil {
		return nil
	}
	rec := archive.NewRecord(doc.Path, format)
	rec.Checksum = checksum
	rec.Output = res.Output
	rec.Stopped = res.Stopped
	rec.RenderedAt = s.now().UTC()
	if _, err := s.archive.Save(ctx, rec); err != nil {
		span.RecordError(err)
		logger.Error("documents.archive.save_failed", "error", err)
		return fmt.Errorf("documents: archive %s: %w", doc.Path, err)
	}
	logger.Debug("documents.render.archived", "bytes", len(res.Output))
	return nil
}

func (s *Service) resolveFormat(requested, fromFrontMatter string) string {
	if f := strings.TrimSpace(requested); f != "" {
		return f
	}
	if f := strings.TrimSpace(fromFrontMatter); f != "" {
		return f
	}
	return s.renderer.DefaultFormat()
}
