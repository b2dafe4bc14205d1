package render

import (
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

// Context assembles the output of a single render call.
type Context struct {
	format string
	out    strings.Builder
}

func newContext(format string) *Context {
	return &Context{format: format}
}

// Format returns the format being rendered.
func (c *Context) Format() string {
	return c.format
}

// LastByte returns the last byte written, or '\n' when nothing was written.
func (c *Context) LastByte() byte {
	s := c.out.String()
	if s == "" {
		return '\n'
	}
	return s[len(s)-1]
}

// Len returns the number of bytes assembled so far.
func (c *Context) Len() int {
	return c.out.Len()
}

func (c *Context) write(fragment string) {
	c.out.WriteString(fragment)
}

func (c *Context) String() string {
	return c.out.String()
}

type walkOutcome int

const (
	walkCompleted walkOutcome = iota
	walkStopped
	walkFailed
)

// walkResult carries an abort up the recursion without unwinding through
// panics.
type walkResult struct {
	outcome walkOutcome
	err     *RendererError
}

func (r walkResult) aborted() bool {
	return r.outcome != walkCompleted
}

type walker struct {
	ctx      *Context
	handlers *table
}

// Render walks root with the snapshot's handlers and assembles the output.
func (s Snapshot) Render(root *ast.Node, opts Options) Result {
	ctx := newContext(s.format)
	if root == nil {
		return Result{}
	}
	w := &walker{ctx: ctx, handlers: s.handlers(ctx, opts)}
	res := w.walk(root)

	result := Result{Output: ctx.String(), Stopped: res.outcome == walkStopped}
	if res.err != nil {
		result.Err = res.err
	}
	return result
}

func (w *walker) walk(n *ast.Node) walkResult {
	status, res := w.visit(n, true)
	if res.aborted() {
		return res
	}
	if n.IsLeaf() {
		return res
	}
	if status != ast.WalkSkipChildren {
		for c := n.FirstChild; c != nil; c = c.Next {
			if res := w.walk(c); res.aborted() {
				return res
			}
		}
	}
	_, res = w.visit(n, false)
	return res
}

func (w *walker) visit(n *ast.Node, entering bool) (ast.WalkStatus, walkResult) {
	fragment, status, err := w.call(n, entering)
	if err != nil {
		return ast.WalkStop, walkResult{outcome: walkFailed, err: err}
	}
	w.ctx.write(fragment)
	switch status {
	case ast.WalkStop:
		return status, walkResult{outcome: walkStopped}
	case ast.WalkSkipChildren:
		return status, walkResult{}
	default:
		return ast.WalkContinue, walkResult{}
	}
}

// call invokes the handler for n and converts a panic into a RendererError.
func (w *walker) call(n *ast.Node, entering bool) (fragment string, status ast.WalkStatus, rerr *RendererError) {
	if !n.Type.Valid() {
		return "", ast.WalkSkipChildren, nil
	}
	fn := w.handlers[n.Type]
	if fn == nil {
		return "", ast.WalkContinue, nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			fragment = ""
			rerr = &RendererError{
				Format:   w.ctx.format,
				Kind:     n.Type,
				Entering: entering,
				Cause:    panicCause(rec),
			}
		}
	}()
	fragment, status = fn(n, entering)
	return fragment, status, nil
}
