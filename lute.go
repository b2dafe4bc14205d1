package lute

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-lute/internal/ast"
	"github.com/goliatone/go-lute/internal/logging"
	"github.com/goliatone/go-lute/internal/metrics"
	"github.com/goliatone/go-lute/internal/parse"
	"github.com/goliatone/go-lute/internal/render"
	"github.com/goliatone/go-lute/pkg/interfaces"
)

// ErrNilEngine is returned by TryRender and RenderTree on a nil *Engine.
var ErrNilEngine = errors.New("lute: nil engine")

// Engine parses Markdown and renders it through per-format renderer tables.
// An Engine is safe for concurrent use; renderer changes only affect renders
// that start after the change.
type Engine struct {
	registry      *render.Registry
	parseOpts     parse.Options
	renderOpts    render.Options
	defaultFormat string
	provider      interfaces.LoggerProvider
	logger        interfaces.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoggerProvider resolves the engine logger from provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(e *Engine) {
		e.provider = provider
		e.logger = nil
	}
}

// WithLogger sets the engine logger directly.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics records every render on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithParseOptions replaces the parser options.
func WithParseOptions(opts ParseOptions) Option {
	return func(e *Engine) {
		e.parseOpts = opts
	}
}

// WithRenderOptions replaces the options of the default renderers.
func WithRenderOptions(opts RenderOptions) Option {
	return func(e *Engine) {
		e.renderOpts = opts
	}
}

// WithDefaultFormat sets the format used when Render is called with an empty
// format name.
func WithDefaultFormat(format string) Option {
	return func(e *Engine) {
		if format = strings.TrimSpace(format); format != "" {
			e.defaultFormat = format
		}
	}
}

// WithClock overrides the time source used for render durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New returns an engine with no renderer overrides, GFM strikethrough and
// task lists enabled, and Md2HTML as the default format.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry:      render.NewRegistry(),
		parseOpts:     parse.DefaultOptions(),
		defaultFormat: Md2HTML,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.logger == nil {
		e.logger = logging.EngineLogger(e.provider)
	}
	return e
}

// NewFromConfig validates cfg and builds an engine from it. opts are applied
// after the configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []Option{
		WithDefaultFormat(cfg.DefaultFormat),
		WithParseOptions(ParseOptions{
			Strikethrough: cfg.Parse.Strikethrough,
			TaskListItems: cfg.Parse.TaskListItems,
			Tables:        cfg.Parse.Tables,
			Autolinks:     cfg.Parse.Autolinks,
			HeadingIDs:    cfg.Parse.HeadingIDs,
		}),
		WithRenderOptions(RenderOptions{
			SafeMode:  cfg.Render.SafeMode,
			HardWraps: cfg.Render.HardWraps,
		}),
	}
	if cfg.Features.Logger {
		provider, err := NewLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("lute: configure logging: %w", err)
		}
		base = append(base, WithLoggerProvider(provider))
	}
	return New(append(base, opts...)...), nil
}

// SetRenderers installs renderer callbacks for format, keyed by node kind
// name. Both "Strong" and "renderStrong" name the Strong kind. A later call
// replaces earlier callbacks kind by kind, and a nil callback restores the
// default. Keys that name no kind are ignored.
func (e *Engine) SetRenderers(format string, renderers map[string]RendererFunc) {
	if e == nil {
		return
	}
	if unknown := e.registry.Set(format, renderers); len(unknown) > 0 {
		e.logger.Warn("engine.renderers.unknown_kinds", "format", format, "keys", strings.Join(unknown, ","))
	}
	e.logger.Debug("engine.renderers.updated", "format", format, "count", len(renderers))
}

// SetKindRenderers is SetRenderers keyed by NodeType.
func (e *Engine) SetKindRenderers(format string, renderers map[NodeType]RendererFunc) {
	if e == nil {
		return
	}
	e.registry.SetKinds(format, renderers)
	e.logger.Debug("engine.renderers.updated", "format", format, "count", len(renderers))
}

// ResetRenderers drops every callback installed for format.
func (e *Engine) ResetRenderers(format string) {
	if e == nil {
		return
	}
	e.registry.Reset(format)
}

// Overridden lists the kinds carrying a callback for format.
func (e *Engine) Overridden(format string) []NodeType {
	if e == nil {
		return nil
	}
	return e.registry.Overridden(format)
}

// Formats lists the built-in formats and every format with callbacks.
func (e *Engine) Formats() []string {
	if e == nil {
		return nil
	}
	return e.registry.Formats()
}

// DefaultFormat returns the format used for an empty format name.
func (e *Engine) DefaultFormat() string {
	if e == nil {
		return Md2HTML
	}
	return e.defaultFormat
}

// Render converts markdown with the renderers of format and never fails. When
// a callback panics the output assembled before it is returned and the
// failure is logged.
func (e *Engine) Render(format, markdown string) string {
	if e == nil {
		return ""
	}
	return e.Do(format, markdown).Output
}

// TryRender is Render with the callback failure surfaced as a
// *RendererError next to the partial output.
func (e *Engine) TryRender(format, markdown string) (string, error) {
	if e == nil {
		return "", ErrNilEngine
	}
	res := e.Do(format, markdown)
	return res.Output, res.Err
}

// MarkdownStr renders markdown to HTML. name identifies the source in logs.
func (e *Engine) MarkdownStr(name, markdown string) string {
	if e == nil {
		return ""
	}
	res := e.Do(Md2HTML, markdown)
	if res.Err != nil {
		e.logger.Warn("engine.markdown_str.partial", "name", name, "error", res.Err)
	}
	return res.Output
}

// Do parses markdown and renders it, returning the full result.
func (e *Engine) Do(format, markdown string) Result {
	if e == nil {
		return Result{Err: ErrNilEngine}
	}
	format = e.resolveFormat(format)
	start := e.now()
	root := e.Parse(markdown)
	res := e.registry.Snapshot(format).Render(root, e.renderOpts)
	e.observe(format, res, e.now().Sub(start))
	return res
}

// Parse builds the syntax tree for markdown. Input the parser cannot handle
// yields a document with one paragraph holding the raw text.
func (e *Engine) Parse(markdown string) (root *Node) {
	opts := parse.DefaultOptions()
	if e != nil {
		opts = e.parseOpts
	}
	defer func() {
		if r := recover(); r != nil {
			root = fallbackTree(markdown)
			if e != nil {
				e.metrics.ParseFallback()
				e.logger.Error("engine.parse.fallback", "panic", fmt.Sprint(r), "bytes", len(markdown))
			}
		}
	}()
	return parse.Parse([]byte(markdown), opts)
}

// RenderTree renders an already parsed tree.
func (e *Engine) RenderTree(format string, root *Node) (string, error) {
	if e == nil {
		return "", ErrNilEngine
	}
	format = e.resolveFormat(format)
	start := e.now()
	res := e.registry.Snapshot(format).Render(root, e.renderOpts)
	e.observe(format, res, e.now().Sub(start))
	return res.Output, res.Err
}

func (e *Engine) resolveFormat(format string) string {
	if format = strings.TrimSpace(format); format != "" {
		return format
	}
	return e.defaultFormat
}

func (e *Engine) observe(format string, res Result, elapsed time.Duration) {
	e.metrics.ObserveRender(format, res.Outcome(), elapsed, len(res.Output))
	switch {
	case res.Err != nil:
		e.logger.Error("engine.render.renderer_error", "format", format, "error", res.Err, "partial_bytes", len(res.Output))
	case res.Stopped:
		e.logger.Debug("engine.render.stopped", "format", format, "bytes", len(res.Output))
	default:
		e.logger.Trace("engine.render.completed", "format", format, "bytes", len(res.Output), "elapsed", elapsed)
	}
}

func fallbackTree(markdown string) *Node {
	doc := ast.NewNode(ast.NodeDocument)
	if markdown == "" {
		return doc
	}
	para := ast.NewNode(ast.NodeParagraph)
	para.AppendChild(ast.NewText(markdown))
	doc.AppendChild(para)
	return doc
}
