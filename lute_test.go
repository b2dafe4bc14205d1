package lute_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	lute "github.com/goliatone/go-lute"
	"github.com/goliatone/go-lute/internal/logging/console"
	"github.com/goliatone/go-lute/internal/metrics"
	"github.com/goliatone/go-lute/pkg/testsupport"
)

func TestRender_StopsOnFirstText(t *testing.T) {
	engine := lute.New()
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderText": func(n *lute.Node, entering bool) (string, lute.WalkStatus) {
			return n.Literal() + " via Lute", lute.WalkStop
		},
		"renderStrong": func(*lute.Node, bool) (string, lute.WalkStatus) {
			return "", lute.WalkContinue
		},
		"renderParagraph": func(*lute.Node, bool) (string, lute.WalkStatus) {
			return "", lute.WalkContinue
		},
	})

	if got := engine.Render(lute.Md2HTML, "**Markdown**"); got != "Markdown via Lute" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRender_EmptyOverridesKeepDefaultText(t *testing.T) {
	engine := lute.New()
	empty := func(*lute.Node, bool) (string, lute.WalkStatus) { return "", lute.WalkContinue }
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"renderStrong":    empty,
		"renderParagraph": empty,
	})

	if got := engine.Render(lute.Md2HTML, "**Markdown**"); got != "Markdown" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRender_NoOverridesUsesDefaults(t *testing.T) {
	if got := lute.New().Render(lute.Md2HTML, "**Markdown**"); got != "<p><strong>Markdown</strong></p>\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if got := lute.New().Render(lute.Md2HTML, ""); got != "" {
		t.Fatalf("empty input rendered %q", got)
	}
}

func TestRender_EmptyFormatUsesDefaultFormat(t *testing.T) {
	engine := lute.New(lute.WithDefaultFormat(lute.Md2Text))
	if got := engine.Render("", "**Markdown**"); got != "Markdown\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRender_PanicReturnsPartialOutputAndLogs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})
	engine := lute.New(lute.WithLoggerProvider(provider))
	engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
		"Emphasis": func(*lute.Node, bool) (string, lute.WalkStatus) { panic("bad callback") },
	})

	if got := engine.Render(lute.Md2HTML, "one *two*"); got != "<p>one " {
		t.Fatalf("unexpected partial output %q", got)
	}
	if !strings.Contains(buf.String(), "engine.render.renderer_error") || !strings.Contains(buf.String(), "module=lute.engine") {
		t.Fatalf("expected renderer error to be logged, got %q", buf.String())
	}

	out, err := engine.TryRender(lute.Md2HTML, "one *two*")
	if out != "<p>one " {
		t.Fatalf("TryRender partial output %q", out)
	}
	rerr, ok := lute.AsRendererError(err)
	if !ok || rerr.Kind != lute.NodeEmphasis {
		t.Fatalf("expected RendererError on Emphasis, got %v", err)
	}
}

func TestNilEngine(t *testing.T) {
	var engine *lute.Engine
	if got := engine.Render(lute.Md2HTML, "x"); got != "" {
		t.Fatalf("nil engine rendered %q", got)
	}
	if _, err := engine.TryRender(lute.Md2HTML, "x"); !errors.Is(err, lute.ErrNilEngine) {
		t.Fatalf("expected ErrNilEngine, got %v", err)
	}
	engine.SetRenderers(lute.Md2HTML, nil)
}

func TestSetKindRenderersAndReset(t *testing.T) {
	engine := lute.New()
	engine.SetKindRenderers(lute.Md2HTML, map[lute.NodeType]lute.RendererFunc{
		lute.NodeCodeSpan: func(n *lute.Node, _ bool) (string, lute.WalkStatus) {
			return "<kbd>" + n.Literal() + "</kbd>", lute.WalkContinue
		},
	})
	if got := engine.Render(lute.Md2HTML, "press `q`"); got != "<p>press <kbd>q</kbd></p>\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if kinds := engine.Overridden(lute.Md2HTML); len(kinds) != 1 || kinds[0] != lute.NodeCodeSpan {
		t.Fatalf("unexpected overridden kinds %v", kinds)
	}

	engine.ResetRenderers(lute.Md2HTML)
	if got := engine.Render(lute.Md2HTML, "press `q`"); got != "<p>press <code>q</code></p>\n" {
		t.Fatalf("reset did not restore defaults: %q", got)
	}
}

func TestFormatsIncludeCustomFormats(t *testing.T) {
	engine := lute.New()
	engine.SetRenderers("Md2Slack", map[string]lute.RendererFunc{
		"Strong": func(_ *lute.Node, _ bool) (string, lute.WalkStatus) { return "*", lute.WalkContinue },
	})
	got := strings.Join(engine.Formats(), ",")
	if got != "Md2HTML,Md2JSON,Md2Slack,Md2Text" {
		t.Fatalf("unexpected formats %s", got)
	}
	if out := engine.Render("Md2Slack", "**x**"); out != "<p>*x*</p>\n" {
		t.Fatalf("custom format should layer on html defaults, got %q", out)
	}
}

func TestRenderTree(t *testing.T) {
	engine := lute.New()
	root := engine.Parse("# Hi")
	out, err := engine.RenderTree(lute.Md2Text, root)
	if err != nil || out != "Hi\n" {
		t.Fatalf("RenderTree = %q, %v", out, err)
	}
	if first := root.FirstChild; first == nil || first.Type != lute.NodeHeading {
		t.Fatalf("unexpected tree %+v", root)
	}
}

func TestMarkdownStr(t *testing.T) {
	if got := lute.New().MarkdownStr("demo", "_hi_"); got != "<p><em>hi</em></p>\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMetricsAreRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := lute.New(lute.WithMetrics(metrics.New(metrics.WithRegistry(reg))))
	engine.SetRenderers(lute.Md2Text, map[string]lute.RendererFunc{
		"Text": func(*lute.Node, bool) (string, lute.WalkStatus) { return "", lute.WalkStop },
	})

	engine.Render(lute.Md2HTML, "a")
	engine.Render(lute.Md2Text, "a")

	expected := `
# HELP lute_renders_total Render calls by output format and outcome.
# TYPE lute_renders_total counter
lute_renders_total{format="Md2HTML",outcome="completed"} 1
lute_renders_total{format="Md2Text",outcome="stopped"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "lute_renders_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestConcurrentRenderAndRegistration(t *testing.T) {
	engine := lute.New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				out := engine.Render(lute.Md2HTML, "**x**")
				if out != "<p><strong>x</strong></p>\n" && out != "<p><b>x</b></p>\n" {
					t.Errorf("torn render %q", out)
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				engine.SetRenderers(lute.Md2HTML, map[string]lute.RendererFunc{
					"Strong": func(_ *lute.Node, entering bool) (string, lute.WalkStatus) {
						if entering {
							return "<b>", lute.WalkContinue
						}
						return "</b>", lute.WalkContinue
					},
				})
				engine.ResetRenderers(lute.Md2HTML)
			}
		}()
	}
	wg.Wait()
}

func TestNewFromConfig(t *testing.T) {
	cfg := lute.DefaultConfig()
	cfg.Parse.HeadingIDs = true
	cfg.Render.SafeMode = true

	engine, err := lute.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	out := engine.Render("", "# Title\n\n<script>x</script>")
	if !strings.Contains(out, `<h1 id="title">Title</h1>`) {
		t.Fatalf("expected heading id, got %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("safe mode leaked raw html: %q", out)
	}

	cfg.Parse.Tables = false
	cfg.Parse.Autolinks = false
	plain, err := lute.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig without tables: %v", err)
	}
	if got := plain.Render("", "| a |\n| - |\nwww.example.com"); got != "<p>| a |\n| - |\nwww.example.com</p>\n" {
		t.Fatalf("disabled extensions still applied: %q", got)
	}

	cfg.DefaultFormat = ""
	if _, err := lute.NewFromConfig(cfg); !errors.Is(err, lute.ErrDefaultFormatRequired) {
		t.Fatalf("expected ErrDefaultFormatRequired, got %v", err)
	}
}

func TestNewLoggerProvider(t *testing.T) {
	if _, err := lute.NewLoggerProvider(lute.LoggingConfig{Provider: "console", Level: "warn"}); err != nil {
		t.Fatalf("console provider: %v", err)
	}
	if _, err := lute.NewLoggerProvider(lute.LoggingConfig{Provider: "gologger", Format: "json"}); err != nil {
		t.Fatalf("gologger provider: %v", err)
	}
	if _, err := lute.NewLoggerProvider(lute.LoggingConfig{Provider: "syslog"}); !errors.Is(err, lute.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

// Plain CommonMark documents must render exactly as goldmark renders them.
func TestHTMLMatchesGoldmark(t *testing.T) {
	oracle := goldmark.New(goldmark.WithRendererOptions(html.WithXHTML(), html.WithUnsafe()))
	engine := lute.New(lute.WithParseOptions(lute.ParseOptions{}))

	docs := []string{
		"# Title\n\nHello *world*\n",
		"- a\n- b\n",
		"- a\n\n- b\n",
		"1. one\n2. two\n   - nested\n",
		"> quote\ncontinued\n",
		"```go\nfunc main() {}\n```\n",
		"    indented\n",
		"[link](/url \"title\") and ![img](/i.png)\n",
		"a  \nb\\\nc\n",
		"***\n",
		"*foo**bar**baz*\n",
		"`code` with \\*escape\\*\n",
		"<div>\nraw\n</div>\n",
		"[ref]\n\n[ref]: /target\n",
		"Setext\n------\n",
		"<https://example.com>\n",
		"a & b < c \"q\"\n",
	}
	for _, doc := range docs {
		var want bytes.Buffer
		if err := oracle.Convert([]byte(doc), &want); err != nil {
			t.Fatalf("goldmark failed on %q: %v", doc, err)
		}
		if got := engine.Render(lute.Md2HTML, doc); got != want.String() {
			t.Fatalf("render(%q)\n got: %q\nwant: %q", doc, got, want.String())
		}
	}
}

func TestHTMLTableStructure(t *testing.T) {
	src := "Prices at www.example.com:\n\n| Item | Price |\n| :--- | ----: |\n| tea | `1` |\n| cake | 3 |\n"
	out := lute.New().Render(lute.Md2HTML, src)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	if got := doc.Find("table thead th").Length(); got != 2 {
		t.Fatalf("expected 2 header cells, got %d in %s", got, out)
	}
	if got := doc.Find("table tbody tr").Length(); got != 2 {
		t.Fatalf("expected 2 body rows, got %d in %s", got, out)
	}
	if align, _ := doc.Find("tbody td").Eq(1).Attr("align"); align != "right" {
		t.Fatalf("unexpected alignment %q", align)
	}
	if got := doc.Find("tbody td code").Text(); got != "1" {
		t.Fatalf("unexpected code cell %q", got)
	}
	if href, _ := doc.Find("p a").Attr("href"); href != "http://www.example.com" {
		t.Fatalf("unexpected autolink href %q", href)
	}
}

func TestRender_EmptyInputPerFormat(t *testing.T) {
	engine := lute.New()
	if got := engine.Render(lute.Md2Text, ""); got != "" {
		t.Fatalf("text rendered %q", got)
	}
	if got := engine.Render(lute.Md2JSON, ""); got != `{"type":"Document"}` {
		t.Fatalf("json rendered %q", got)
	}
}

func TestHTMLStructure(t *testing.T) {
	src := "## Tasks\n\n- [x] write parser\n- [ ] write docs\n\nSee [the guide](https://example.com/guide \"Guide\").\n"
	out := lute.New().Render(lute.Md2HTML, src)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}
	if got := doc.Find("h2").Text(); got != "Tasks" {
		t.Fatalf("unexpected heading %q", got)
	}
	boxes := doc.Find("ul li input[type=checkbox]")
	if boxes.Length() != 2 {
		t.Fatalf("expected 2 checkboxes, got %d in %s", boxes.Length(), out)
	}
	if _, checked := boxes.First().Attr("checked"); !checked {
		t.Fatalf("first task should be checked: %s", out)
	}
	if _, checked := boxes.Last().Attr("checked"); checked {
		t.Fatalf("second task should be open: %s", out)
	}
	link := doc.Find("p a")
	if href, _ := link.Attr("href"); href != "https://example.com/guide" {
		t.Fatalf("unexpected href %q", href)
	}
	if title, _ := link.Attr("title"); title != "Guide" {
		t.Fatalf("unexpected title %q", title)
	}
}

func TestRender_GoldenCases(t *testing.T) {
	var cases []struct {
		Name     string `json:"name"`
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	}
	if err := testsupport.LoadGolden("render_golden.json", &cases); err != nil {
		t.Fatalf("load golden cases: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no golden cases")
	}

	engine := lute.New()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			if got := engine.Render(lute.Md2HTML, tc.Markdown); got != tc.HTML {
				t.Fatalf("render(%q)\n got: %q\nwant: %q", tc.Markdown, got, tc.HTML)
			}
		})
	}
}
