package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

// textRenderer renders plain text: markup is dropped, block structure is
// kept as line breaks.
type textRenderer struct {
	ctx *Context
}

func newTextDefaults(ctx *Context, _ Options) *table {
	r := &textRenderer{ctx: ctx}
	literal := func(n *ast.Node, _ bool) (string, ast.WalkStatus) {
		return n.Literal(), ast.WalkContinue
	}
	passthrough := func(*ast.Node, bool) (string, ast.WalkStatus) {
		return "", ast.WalkContinue
	}
	newline := func(*ast.Node, bool) (string, ast.WalkStatus) {
		return "\n", ast.WalkContinue
	}
	return &table{
		ast.NodeDocument:           passthrough,
		ast.NodeParagraph:          r.block,
		ast.NodeHeading:            r.block,
		ast.NodeThematicBreak:      r.thematicBreak,
		ast.NodeBlockquote:         r.container,
		ast.NodeList:               r.container,
		ast.NodeListItem:           r.listItem,
		ast.NodeCodeBlock:          r.codeBlock,
		ast.NodeHTMLBlock:          passthrough,
		ast.NodeText:               literal,
		ast.NodeEmphasis:           passthrough,
		ast.NodeStrong:             passthrough,
		ast.NodeCodeSpan:           literal,
		ast.NodeHardBreak:          newline,
		ast.NodeSoftBreak:          newline,
		ast.NodeLink:               passthrough,
		ast.NodeImage:              passthrough,
		ast.NodeInlineHTML:         passthrough,
		ast.NodeStrikethrough:      passthrough,
		ast.NodeTaskListItemMarker: r.taskMarker,
		ast.NodeTable:              r.container,
		ast.NodeTableHead:          r.tableRow,
		ast.NodeTableRow:           r.tableRow,
		ast.NodeTableCell:          r.tableCell,
	}
}

// separator starts a block on a fresh line, with a blank line between
// sibling blocks outside tight lists.
func (r *textRenderer) separator(n *ast.Node) string {
	if r.ctx.Len() == 0 {
		return ""
	}
	if n.Previous == nil && n.Parent != nil && n.Parent.Type == ast.NodeListItem {
		return ""
	}
	out := ""
	if r.ctx.LastByte() != '\n' {
		out = "\n"
	}
	if n.Previous != nil && !inTightList(n) && n.Parent != nil && n.Parent.Type != ast.NodeList {
		out += "\n"
	}
	return out
}

func (r *textRenderer) block(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		return r.separator(n), ast.WalkContinue
	}
	return "\n", ast.WalkContinue
}

func (r *textRenderer) container(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		return r.separator(n), ast.WalkContinue
	}
	return "", ast.WalkContinue
}

func (r *textRenderer) thematicBreak(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	return r.separator(n) + "---\n", ast.WalkContinue
}

func (r *textRenderer) codeBlock(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	code := n.Literal()
	if code != "" && !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	return r.separator(n) + code, ast.WalkContinue
}

func (r *textRenderer) listItem(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if !entering {
		return "", ast.WalkContinue
	}
	out := ""
	if r.ctx.Len() > 0 && r.ctx.LastByte() != '\n' {
		out = "\n"
	}
	return out + listMarker(n), ast.WalkContinue
}

func listMarker(item *ast.Node) string {
	list := item.Parent
	if list == nil || list.List == nil || list.List.Type != ast.ListOrdered {
		return "- "
	}
	index := 0
	for prev := item.Previous; prev != nil; prev = prev.Previous {
		index++
	}
	delim := "."
	if list.List.Delimiter == ')' {
		delim = ")"
	}
	return strconv.Itoa(list.List.Start+index) + delim + " "
}

func (r *textRenderer) taskMarker(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	if n.Checked {
		return "[x]", ast.WalkContinue
	}
	return "[ ]", ast.WalkContinue
}

// Table rows render as one line each with tab separated cells.
func (r *textRenderer) tableRow(_ *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		return "", ast.WalkContinue
	}
	return "\n", ast.WalkContinue
}

func (r *textRenderer) tableCell(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering && n.Previous != nil {
		return "\t", ast.WalkContinue
	}
	return "", ast.WalkContinue
}
