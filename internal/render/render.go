package render

import "github.com/goliatone/go-lute/internal/ast"

// Built-in output formats.
const (
	FormatHTML = "Md2HTML"
	FormatText = "Md2Text"
	FormatJSON = "Md2JSON"
)

// RendererFunc produces the output fragment for one node visit. entering is
// true on the way down and false on the way back up; leaf kinds only see the
// entering call. The returned status steers the walk.
type RendererFunc func(n *ast.Node, entering bool) (string, ast.WalkStatus)

// Options tune the default renderers.
type Options struct {
	// SafeMode replaces raw HTML with a comment and drops unsafe link targets.
	SafeMode bool
	// HardWraps renders soft line breaks as hard breaks.
	HardWraps bool
}

// Result is the outcome of one render call.
type Result struct {
	Output string
	// Stopped is set when a renderer returned WalkStop.
	Stopped bool
	// Err is a *RendererError when a renderer panicked; Output then holds
	// everything assembled before the failing call.
	Err error
}

// Outcome names the result for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Err != nil:
		return "failed"
	case r.Stopped:
		return "stopped"
	default:
		return "completed"
	}
}
