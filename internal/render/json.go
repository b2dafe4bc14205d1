package render

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

// newJSONDefaults renders the tree as nested JSON objects. Every kind shares
// the same handler.
func newJSONDefaults(*Context, Options) *table {
	var t table
	for i := range t {
		t[i] = jsonNode
	}
	return &t
}

func jsonString(s string) string {
	raw, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(raw)
}

func jsonNode(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if !entering {
		if n.FirstChild != nil {
			return "]}", ast.WalkContinue
		}
		return "}", ast.WalkContinue
	}

	var b strings.Builder
	if n.Previous != nil {
		b.WriteByte(',')
	}
	b.WriteString(`{"type":`)
	b.WriteString(jsonString(n.Type.String()))
	writeJSONFields(&b, n)

	if n.IsLeaf() {
		b.WriteByte('}')
		return b.String(), ast.WalkContinue
	}
	if n.FirstChild != nil {
		b.WriteString(`,"children":[`)
	}
	return b.String(), ast.WalkContinue
}

func writeJSONFields(b *strings.Builder, n *ast.Node) {
	field := func(key, value string) {
		b.WriteByte(',')
		b.WriteString(jsonString(key))
		b.WriteByte(':')
		b.WriteString(value)
	}
	switch n.Type {
	case ast.NodeText, ast.NodeCodeSpan, ast.NodeHTMLBlock, ast.NodeInlineHTML:
		field("text", jsonString(n.Literal()))
	case ast.NodeCodeBlock:
		if n.Code != nil && n.Code.Info != "" {
			field("info", jsonString(n.Code.Info))
		}
		field("text", jsonString(n.Literal()))
	case ast.NodeHeading:
		field("level", strconv.Itoa(n.HeadingLevel))
	case ast.NodeList:
		if n.List != nil {
			field("listType", jsonString(n.List.Type.String()))
			if n.List.Type == ast.ListOrdered {
				field("start", strconv.Itoa(n.List.Start))
			}
			field("tight", strconv.FormatBool(n.List.Tight))
		}
	case ast.NodeLink, ast.NodeImage:
		field("destination", jsonString(n.Destination))
		if n.Title != "" {
			field("title", jsonString(n.Title))
		}
	case ast.NodeTaskListItemMarker:
		field("checked", strconv.FormatBool(n.Checked))
	case ast.NodeTableCell:
		if n.Align != ast.AlignNone {
			field("align", jsonString(n.Align.String()))
		}
	}
	if len(n.Attributes) > 0 {
		raw, err := json.Marshal(n.Attributes)
		if err == nil {
			field("attrs", string(raw))
		}
	}
}
