package documents_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	lute "github.com/goliatone/go-lute"
	"github.com/goliatone/go-lute/internal/archive"
	"github.com/goliatone/go-lute/internal/documents"
	"github.com/goliatone/go-lute/internal/metrics"
	"github.com/goliatone/go-lute/internal/render"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

type countingRenderer struct {
	*lute.Engine
	calls atomic.Int32
}

func (c *countingRenderer) Do(format, markdown string) render.Result {
	c.calls.Add(1)
	return c.Engine.Do(format, markdown)
}

func newService(t *testing.T, renderer documents.Renderer, opts ...documents.Option) *documents.Service {
	t.Helper()
	svc, err := documents.NewService(documents.Config{FS: contentFS(), Recursive: true}, renderer, opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_RequiresRenderer(t *testing.T) {
	if _, err := documents.NewService(documents.Config{FS: contentFS()}, nil); !errors.Is(err, documents.ErrNilRenderer) {
		t.Fatalf("expected ErrNilRenderer, got %v", err)
	}
}

func TestNewService_RejectsMissingContentDir(t *testing.T) {
	cfg := documents.Config{ContentDir: t.TempDir() + "/missing"}
	if _, err := documents.NewService(cfg, lute.New()); err == nil {
		t.Fatalf("expected error for missing content dir")
	}
}

func TestService_Render(t *testing.T) {
	svc := newService(t, lute.New())

	out, err := svc.Render(context.Background(), []byte("**bold**"), "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != "<p><strong>bold</strong></p>\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestService_RenderDocumentFormatResolution(t *testing.T) {
	engine := lute.New()
	svc := newService(t, engine)
	ctx := context.Background()

	doc, err := svc.RenderDocument(ctx, "guide/intro.md", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.Format != lute.Md2HTML {
		t.Fatalf("expected default format, got %q", doc.Format)
	}
	if doc.Output != "<h1>Intro</h1>\n<p>Hello <em>world</em></p>\n" {
		t.Fatalf("unexpected output %q", doc.Output)
	}

	doc, err = svc.RenderDocument(ctx, "guide/setup.md", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.Format != lute.Md2Text {
		t.Fatalf("expected front matter format, got %q", doc.Format)
	}
	if want := engine.Render(lute.Md2Text, "Install **it**\n"); doc.Output != want {
		t.Fatalf("expected %q, got %q", want, doc.Output)
	}

	doc, err = svc.RenderDocument(ctx, "guide/setup.md", interfaces.RenderOptions{Format: lute.Md2HTML})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.Format != lute.Md2HTML || !strings.Contains(doc.Output, "<strong>it</strong>") {
		t.Fatalf("explicit format ignored: %+v", doc)
	}
}

func TestService_RenderDocumentReusesArchive(t *testing.T) {
	renderer := &countingRenderer{Engine: lute.New()}
	repo := archive.NewMemoryRepository()
	registry := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(registry))
	fixed := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	svc := newService(t, renderer,
		documents.WithArchive(repo),
		documents.WithMetrics(m),
		documents.WithClock(func() time.Time { return fixed }),
	)
	ctx := context.Background()

	first, err := svc.RenderDocument(ctx, "guide/intro.md", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	if first.Reused {
		t.Fatalf("first render should not be reused")
	}

	rec, err := repo.Get(ctx, "guide/intro.md", lute.Md2HTML)
	if err != nil {
		t.Fatalf("archive lookup: %v", err)
	}
	if rec.Output != first.Output || !rec.RenderedAt.Equal(fixed) {
		t.Fatalf("unexpected archived record %+v", rec)
	}

	second, err := svc.RenderDocument(ctx, "guide/intro.md", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !second.Reused || second.Output != first.Output {
		t.Fatalf("expected archived output, got %+v", second)
	}
	if got := renderer.calls.Load(); got != 1 {
		t.Fatalf("expected one engine call, got %d", got)
	}

	forced, err := svc.RenderDocument(ctx, "guide/intro.md", interfaces.RenderOptions{Force: true})
	if err != nil {
		t.Fatalf("forced render: %v", err)
	}
	if forced.Reused || renderer.calls.Load() != 2 {
		t.Fatalf("force did not bypass the archive")
	}
	if got := testutil.CollectAndCount(registry, "lute_archive_reuse_total"); got != 1 {
		t.Fatalf("expected reuse counter to be collected, got %d", got)
	}
}

func TestService_RenderDocumentIgnoresStaleArchive(t *testing.T) {
	renderer := &countingRenderer{Engine: lute.New()}
	repo := archive.NewMemoryRepository()
	stale := archive.NewRecord("guide/intro.md", lute.Md2HTML)
	stale.Checksum = "outdated"
	stale.Output = "stale"
	if _, err := repo.Save(context.Background(), stale); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := newService(t, renderer, documents.WithArchive(repo))

	doc, err := svc.RenderDocument(context.Background(), "guide/intro.md", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.Reused || doc.Output == "stale" {
		t.Fatalf("stale record reused: %+v", doc)
	}
	rec, err := repo.Get(context.Background(), "guide/intro.md", lute.Md2HTML)
	if err != nil {
		t.Fatalf("archive lookup: %v", err)
	}
	if rec.Output != doc.Output {
		t.Fatalf("archive not refreshed: %q", rec.Output)
	}
}

func TestService_RenderDocumentSurfacesRendererError(t *testing.T) {
	engine := lute.New()
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderEmphasis": func(*lute.Node, bool) (string, lute.WalkStatus) {
			panic("boom")
		},
	})
	repo := archive.NewMemoryRepository()
	svc := newService(t, engine, documents.WithArchive(repo))

	doc, err := svc.RenderDocument(context.Background(), "guide/intro.md", interfaces.RenderOptions{})
	var rendererErr *lute.RendererError
	if !errors.As(err, &rendererErr) {
		t.Fatalf("expected RendererError, got %v", err)
	}
	if doc == nil || !strings.HasPrefix(doc.Output, "<h1>Intro</h1>\n<p>Hello ") {
		t.Fatalf("expected partial output, got %+v", doc)
	}
	if records, _ := repo.List(context.Background()); len(records) != 0 {
		t.Fatalf("failed render archived: %d records", len(records))
	}
}

func TestService_RenderDirectorySummary(t *testing.T) {
	engine := lute.New()
	engine.SetRenderers(lute.Md2Text, map[string]lute.RendererFunc{
		"renderStrong": func(*lute.Node, bool) (string, lute.WalkStatus) {
			return "", lute.WalkStop
		},
	})
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderEmphasis": func(*lute.Node, bool) (string, lute.WalkStatus) {
			panic("boom")
		},
	})
	svc := newService(t, engine, documents.WithArchive(archive.NewMemoryRepository()))

	docs, summary, err := svc.RenderDirectory(context.Background(), "guide", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("RenderDirectory: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	if summary.Rendered != 1 || summary.Stopped != 1 || summary.Failed != 1 || summary.Reused != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if len(summary.Errors) != 1 || !strings.Contains(summary.Errors[0].Error(), "guide/intro.md") {
		t.Fatalf("unexpected errors %v", summary.Errors)
	}

	_, again, err := svc.RenderDirectory(context.Background(), "guide", interfaces.RenderOptions{})
	if err != nil {
		t.Fatalf("second RenderDirectory: %v", err)
	}
	if again.Reused != 2 || again.Failed != 1 {
		t.Fatalf("unexpected second summary %+v", again)
	}
}

func TestService_RenderDirectoryMissing(t *testing.T) {
	svc := newService(t, lute.New())
	if _, _, err := svc.RenderDirectory(context.Background(), "missing", interfaces.RenderOptions{}); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
