package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"

	lute "github.com/goliatone/go-lute"
	"github.com/goliatone/go-lute/internal/documents"
	"github.com/goliatone/go-lute/internal/httpapi"
	"github.com/goliatone/go-lute/internal/metrics"
)

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRenderEndpoint(t *testing.T) {
	router := httpapi.NewRouter(lute.New())

	cases := []struct {
		name        string
		target      string
		body        string
		contentType string
		want        string
	}{
		{"html", "/render/Md2HTML", "**Markdown**", "text/html; charset=utf-8", "<p><strong>Markdown</strong></p>\n"},
		{"default format", "/render", "_hi_", "text/html; charset=utf-8", "<p><em>hi</em></p>\n"},
		{"text", "/render/Md2Text", "", "text/plain; charset=utf-8", ""},
		{"custom format", "/render/Md2Slack", "*hi*", "text/html; charset=utf-8", "<p><em>hi</em></p>\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, router, http.MethodPost, tc.target, tc.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("unexpected status %d", rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != tc.contentType {
				t.Fatalf("unexpected content type %q", got)
			}
			if rec.Body.String() != tc.want {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
			if rec.Header().Get("X-Lute-Outcome") != "completed" {
				t.Fatalf("unexpected outcome %q", rec.Header().Get("X-Lute-Outcome"))
			}
		})
	}
}

func TestRenderEndpointJSON(t *testing.T) {
	rec := serve(t, httpapi.NewRouter(lute.New()), http.MethodPost, "/render/Md2JSON", "# Hi")
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	var tree map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &tree); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, rec.Body.String())
	}
}

func TestRenderEndpointReportsPartialOutput(t *testing.T) {
	engine := lute.New()
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderStrong": func(*lute.Node, bool) (string, lute.WalkStatus) { panic("boom") },
	})
	rec := serve(t, httpapi.NewRouter(engine), http.MethodPost, "/render/Md2HTML", "a **b**")

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if rec.Header().Get("X-Lute-Outcome") != "failed" {
		t.Fatalf("unexpected outcome %q", rec.Header().Get("X-Lute-Outcome"))
	}
	if rec.Body.String() != "<p>a " {
		t.Fatalf("unexpected partial output %q", rec.Body.String())
	}
}

func TestRenderEndpointBodyLimit(t *testing.T) {
	router := httpapi.NewRouter(lute.New(), httpapi.WithMaxBodyBytes(4))
	rec := serve(t, router, http.MethodPost, "/render/Md2HTML", "0123456789")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestFormatsAndHealth(t *testing.T) {
	engine := lute.New()
	engine.SetRenderers("Md2Slack", map[string]lute.RendererFunc{
		"renderText": func(n *lute.Node, _ bool) (string, lute.WalkStatus) { return n.Literal(), lute.WalkContinue },
	})
	router := httpapi.NewRouter(engine)

	rec := serve(t, router, http.MethodGet, "/formats", "")
	var payload struct {
		Default string   `json:"default"`
		Formats []string `json:"formats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Default != lute.Md2HTML {
		t.Fatalf("unexpected default %q", payload.Default)
	}
	found := false
	for _, f := range payload.Formats {
		if f == "Md2Slack" {
			found = true
		}
	}
	if !found {
		t.Fatalf("custom format missing from %v", payload.Formats)
	}

	if rec := serve(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	if rec := serve(t, router, http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("metrics mounted without a gatherer: %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	engine := lute.New(lute.WithMetrics(metrics.New(metrics.WithRegistry(registry))))
	router := httpapi.NewRouter(engine, httpapi.WithGatherer(registry))

	serve(t, router, http.MethodPost, "/render/Md2HTML", "hello")
	rec := serve(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `lute_renders_total{format="Md2HTML",outcome="completed"} 1`) {
		t.Fatalf("render counter missing:\n%s", rec.Body.String())
	}
}

func TestDocumentEndpoint(t *testing.T) {
	fsys := fstest.MapFS{
		"guide/intro.md": {Data: []byte("---\ntitle: Intro\n---\n# Intro\n")},
	}
	svc, err := documents.NewService(documents.Config{FS: fsys}, lute.New())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	router := httpapi.NewRouter(lute.New(), httpapi.WithDocuments(svc))

	rec := serve(t, router, http.MethodGet, "/documents/guide/intro.md", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "<h1>Intro</h1>\n" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Lute-Reused") != "false" {
		t.Fatalf("unexpected reused header %q", rec.Header().Get("X-Lute-Reused"))
	}

	if rec := serve(t, router, http.MethodGet, "/documents/missing.md", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
