package overrides

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-lute/internal/ast"
	"github.com/goliatone/go-lute/internal/render"
)

// ErrInvalidDocument is wrapped by every *ValidationError.
var ErrInvalidDocument = errors.New("overrides: invalid document")

// Directives accepted in a Fragment.
const (
	DirectiveContinue = "continue"
	DirectiveSkip     = "skip"
	DirectiveStop     = "stop"
)

// Fragment is the fixed output for one node kind. Enter is written when the
// walk enters the node and Exit when it leaves; leaf kinds only use Enter.
//
// Fragments may contain placeholders: {{text}} (the node text, escaped for
// Md2HTML), {{level}}, {{destination}}, {{title}} and {{info}}.
type Fragment struct {
	Enter     string `json:"enter"`
	Exit      string `json:"exit"`
	Directive string `json:"directive,omitempty"`
}

// Document maps formats to per-kind fragments.
type Document struct {
	Formats map[string]map[string]Fragment `json:"formats"`
}

// Issue is a single problem found in a document.
type Issue struct {
	Location string
	Message  string
}

// ValidationError lists everything wrong with a document.
type ValidationError struct {
	Issues []Issue
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return "overrides: " + e.Cause.Error()
		}
		return ErrInvalidDocument.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, location+": "+issue.Message)
	}
	return "overrides: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Parse validates data against the overrides schema and decodes it.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ValidationError{Cause: err}
	}
	compiled, err := schema()
	if err != nil {
		return nil, fmt.Errorf("overrides: compile schema: %w", err)
	}
	if err := compiled.Validate(raw); err != nil {
		return nil, &ValidationError{Issues: schemaIssues(err), Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Cause: err}
	}
	if issues := doc.kindIssues(); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return &doc, nil
}

// Read parses a document from r.
func Read(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("overrides: read: %w", err)
	}
	return Parse(data)
}

// ReadFile parses the document at name in fsys.
func ReadFile(fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("overrides: read %s: %w", name, err)
	}
	return Parse(data)
}

// kindIssues reports keys that pass the name pattern but are not node kinds.
func (d *Document) kindIssues() []Issue {
	var issues []Issue
	for _, format := range sortedKeys(d.Formats) {
		for _, name := range sortedKeys(d.Formats[format]) {
			if _, ok := ast.ParseNodeType(name); !ok {
				issues = append(issues, Issue{
					Location: "/formats/" + format + "/" + name,
					Message:  "unknown node kind " + strconv.Quote(name),
				})
			}
		}
	}
	return issues
}

// Compile turns the document into renderer callbacks grouped by format.
func (d *Document) Compile() map[string]map[ast.NodeType]render.RendererFunc {
	if d == nil {
		return nil
	}
	out := make(map[string]map[ast.NodeType]render.RendererFunc, len(d.Formats))
	for format, kinds := range d.Formats {
		fns := make(map[ast.NodeType]render.RendererFunc, len(kinds))
		for name, frag := range kinds {
			kind, ok := ast.ParseNodeType(name)
			if !ok {
				continue
			}
			fns[kind] = frag.renderer(render.EmitsHTML(format))
		}
		out[format] = fns
	}
	return out
}

// Registrar receives compiled callbacks. *lute.Engine satisfies it.
type Registrar interface {
	SetKindRenderers(format string, renderers map[ast.NodeType]render.RendererFunc)
}

// Apply compiles doc and registers the callbacks on target. It returns the
// formats that were touched, sorted.
func Apply(target Registrar, doc *Document) []string {
	compiled := doc.Compile()
	formats := sortedKeys(compiled)
	for _, format := range formats {
		target.SetKindRenderers(format, compiled[format])
	}
	return formats
}

func (f Fragment) renderer(escape bool) render.RendererFunc {
	status := ast.WalkContinue
	switch f.Directive {
	case DirectiveSkip:
		status = ast.WalkSkipChildren
	case DirectiveStop:
		status = ast.WalkStop
	}
	return func(n *ast.Node, entering bool) (string, ast.WalkStatus) {
		if entering {
			return expand(f.Enter, n, escape), status
		}
		return expand(f.Exit, n, escape), ast.WalkContinue
	}
}

func expand(fragment string, n *ast.Node, escape bool) string {
	if !strings.Contains(fragment, "{{") {
		return fragment
	}
	text := n.Text()
	title := n.Title
	destination := n.Destination
	info := ""
	if n.Code != nil {
		info = n.Code.Info
	}
	if escape {
		text = render.EscapeHTML(text)
		title = render.EscapeHTML(title)
		destination = render.EscapeHTML(destination)
		info = render.EscapeHTML(info)
	}
	return strings.NewReplacer(
		"{{text}}", text,
		"{{level}}", strconv.Itoa(n.HeadingLevel),
		"{{destination}}", destination,
		"{{title}}", title,
		"{{info}}", info,
	).Replace(fragment)
}

func schemaIssues(err error) []Issue {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: err.Error()}}
	}
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return issues
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
