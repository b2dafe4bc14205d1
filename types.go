package lute

import (
	"github.com/goliatone/go-lute/internal/ast"
	"github.com/goliatone/go-lute/internal/parse"
	"github.com/goliatone/go-lute/internal/render"
)

type (
	// Node is a syntax tree node.
	Node = ast.Node
	// NodeType identifies a node kind.
	NodeType = ast.NodeType
	// WalkStatus steers a render walk.
	WalkStatus = ast.WalkStatus
	// RendererFunc renders one node visit.
	RendererFunc = render.RendererFunc
	// RendererError reports a callback that panicked during a render.
	RendererError = render.RendererError
	Result        = render.Result
	ParseOptions  = parse.Options
	RenderOptions = render.Options
)

// Walk directives.
const (
	WalkStop         = ast.WalkStop
	WalkSkipChildren = ast.WalkSkipChildren
	WalkContinue     = ast.WalkContinue
)

// Built-in output formats.
const (
	Md2HTML = render.FormatHTML
	Md2Text = render.FormatText
	Md2JSON = render.FormatJSON
)

const (
	NodeDocument           = ast.NodeDocument
	NodeParagraph          = ast.NodeParagraph
	NodeHeading            = ast.NodeHeading
	NodeThematicBreak      = ast.NodeThematicBreak
	NodeBlockquote         = ast.NodeBlockquote
	NodeList               = ast.NodeList
	NodeListItem           = ast.NodeListItem
	NodeCodeBlock          = ast.NodeCodeBlock
	NodeHTMLBlock          = ast.NodeHTMLBlock
	NodeText               = ast.NodeText
	NodeEmphasis           = ast.NodeEmphasis
	NodeStrong             = ast.NodeStrong
	NodeCodeSpan           = ast.NodeCodeSpan
	NodeHardBreak          = ast.NodeHardBreak
	NodeSoftBreak          = ast.NodeSoftBreak
	NodeLink               = ast.NodeLink
	NodeImage              = ast.NodeImage
	NodeInlineHTML         = ast.NodeInlineHTML
	NodeStrikethrough      = ast.NodeStrikethrough
	NodeTaskListItemMarker = ast.NodeTaskListItemMarker
	NodeTable              = ast.NodeTable
	NodeTableHead          = ast.NodeTableHead
	NodeTableRow           = ast.NodeTableRow
	NodeTableCell          = ast.NodeTableCell
)

// ParseNodeType resolves a kind name such as "Strong" or "renderStrong".
func ParseNodeType(name string) (NodeType, bool) {
	return ast.ParseNodeType(name)
}

// AsRendererError extracts a *RendererError from err.
func AsRendererError(err error) (*RendererError, bool) {
	return render.AsRendererError(err)
}
