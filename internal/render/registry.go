package render

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-lute/internal/ast"
)

// table holds per-kind overrides for one format. Published tables are never
// mutated.
type table [ast.NodeTypeCount]RendererFunc

// Registry maps output formats to renderer overrides. Every mutation
// publishes a fresh table, so snapshots taken by in-flight renders stay
// stable.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*table)}
}

// Set installs renderers for format keyed by kind name ("Strong" or
// "renderStrong"). A later call wins per kind; a nil func removes the
// override. Keys that name no kind are ignored and returned.
func (r *Registry) Set(format string, renderers map[string]RendererFunc) []string {
	kinds := make(map[ast.NodeType]RendererFunc, len(renderers))
	var unknown []string
	for name, fn := range renderers {
		kind, ok := ast.ParseNodeType(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		kinds[kind] = fn
	}
	sort.Strings(unknown)
	r.SetKinds(format, kinds)
	return unknown
}

// SetKinds installs renderers for format keyed by node kind.
func (r *Registry) SetKinds(format string, renderers map[ast.NodeType]RendererFunc) {
	if r == nil {
		return
	}
	format = strings.TrimSpace(format)
	r.mu.Lock()
	defer r.mu.Unlock()

	next := &table{}
	if current := r.tables[format]; current != nil {
		*next = *current
	}
	for kind, fn := range renderers {
		if !kind.Valid() {
			continue
		}
		next[kind] = fn
	}
	r.tables[format] = next
}

// Reset drops every override for format.
func (r *Registry) Reset(format string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	delete(r.tables, strings.TrimSpace(format))
	r.mu.Unlock()
}

// Snapshot captures the overrides for format as they are right now.
func (r *Registry) Snapshot(format string) Snapshot {
	format = strings.TrimSpace(format)
	snap := Snapshot{format: format}
	if r == nil {
		return snap
	}
	r.mu.RLock()
	snap.overrides = r.tables[format]
	r.mu.RUnlock()
	return snap
}

// Overridden lists the kinds that carry an override for format.
func (r *Registry) Overridden(format string) []ast.NodeType {
	snap := r.Snapshot(format)
	if snap.overrides == nil {
		return nil
	}
	var kinds []ast.NodeType
	for kind, fn := range snap.overrides {
		if fn != nil {
			kinds = append(kinds, ast.NodeType(kind))
		}
	}
	return kinds
}

// Formats returns the built-in formats plus any format with overrides.
func (r *Registry) Formats() []string {
	set := map[string]struct{}{}
	for name := range defaultFormats {
		set[name] = struct{}{}
	}
	if r != nil {
		r.mu.RLock()
		for name := range r.tables {
			set[name] = struct{}{}
		}
		r.mu.RUnlock()
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot is an immutable view of one format's overrides.
type Snapshot struct {
	format    string
	overrides *table
}

// Format returns the format the snapshot was taken for.
func (s Snapshot) Format() string {
	return s.format
}

// handlers resolves the dense handler table for one render: overrides first,
// then the format's defaults bound to ctx.
func (s Snapshot) handlers(ctx *Context, opts Options) *table {
	factory, ok := defaultFormats[s.format]
	if !ok {
		factory = defaultFormats[FormatHTML]
	}
	resolved := factory(ctx, opts)
	if s.overrides != nil {
		for kind, fn := range s.overrides {
			if fn != nil {
				resolved[kind] = fn
			}
		}
	}
	return resolved
}
