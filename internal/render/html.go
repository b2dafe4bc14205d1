package render

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

var (
	reUnsafeProtocol = regexp.MustCompile(`(?i)^(?:javascript|vbscript|file|data):`)
	reSafeDataImage  = regexp.MustCompile(`(?i)^data:image/(?:png|gif|jpeg|webp)`)
	escapeReplacer   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

const rawHTMLOmitted = "<!-- raw HTML omitted -->"

// EscapeHTML escapes the characters the HTML renderer escapes in text and
// attribute values.
func EscapeHTML(s string) string {
	return escapeReplacer.Replace(s)
}

func potentiallyUnsafe(url string) bool {
	return reUnsafeProtocol.MatchString(url) && !reSafeDataImage.MatchString(url)
}

// htmlRenderer holds the per-render state of the default HTML handlers.
type htmlRenderer struct {
	ctx  *Context
	opts Options
	// disableTags is positive while rendering image alt text.
	disableTags int
}

func newHTMLDefaults(ctx *Context, opts Options) *table {
	r := &htmlRenderer{ctx: ctx, opts: opts}
	return &table{
		ast.NodeDocument:           r.document,
		ast.NodeParagraph:          r.paragraph,
		ast.NodeHeading:            r.heading,
		ast.NodeThematicBreak:      r.thematicBreak,
		ast.NodeBlockquote:         r.blockquote,
		ast.NodeList:               r.list,
		ast.NodeListItem:           r.listItem,
		ast.NodeCodeBlock:          r.codeBlock,
		ast.NodeHTMLBlock:          r.htmlBlock,
		ast.NodeText:               r.text,
		ast.NodeEmphasis:           r.wrap("em"),
		ast.NodeStrong:             r.wrap("strong"),
		ast.NodeCodeSpan:           r.codeSpan,
		ast.NodeHardBreak:          r.hardBreak,
		ast.NodeSoftBreak:          r.softBreak,
		ast.NodeLink:               r.link,
		ast.NodeImage:              r.image,
		ast.NodeInlineHTML:         r.inlineHTML,
		ast.NodeStrikethrough:      r.wrap("del"),
		ast.NodeTaskListItemMarker: r.taskMarker,
		ast.NodeTable:              r.table,
		ast.NodeTableHead:          r.tableHead,
		ast.NodeTableRow:           r.tableRow,
		ast.NodeTableCell:          r.tableCell,
	}
}

// cr returns a newline unless the output already ends with one.
func (r *htmlRenderer) cr(pending string) string {
	last := r.ctx.LastByte()
	if pending != "" {
		last = pending[len(pending)-1]
	}
	if last == '\n' {
		return ""
	}
	return "\n"
}

func (r *htmlRenderer) tag(name string, attrs ...string) string {
	if r.disableTags > 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		b.WriteByte(' ')
		b.WriteString(attrs[i])
		b.WriteString(`="`)
		b.WriteString(attrs[i+1])
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}

func (r *htmlRenderer) selfClosing(name string, attrs ...string) string {
	t := r.tag(name, attrs...)
	if t == "" {
		return ""
	}
	return t[:len(t)-1] + " />"
}

func (r *htmlRenderer) document(*ast.Node, bool) (string, ast.WalkStatus) {
	return "", ast.WalkContinue
}

func inTightList(n *ast.Node) bool {
	grand := n.Parent
	if grand != nil {
		grand = grand.Parent
	}
	return grand != nil && grand.Type == ast.NodeList && grand.List != nil && grand.List.Tight
}

func (r *htmlRenderer) paragraph(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if inTightList(n) {
		return "", ast.WalkContinue
	}
	if entering {
		return r.cr("") + r.tag("p"), ast.WalkContinue
	}
	out := r.tag("/p")
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) heading(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	name := "h" + strconv.Itoa(n.HeadingLevel)
	if entering {
		var attrs []string
		if id, ok := n.Attribute("id"); ok {
			attrs = append(attrs, "id", EscapeHTML(id))
		}
		return r.cr("") + r.tag(name, attrs...), ast.WalkContinue
	}
	out := r.tag("/" + name)
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) thematicBreak(*ast.Node, bool) (string, ast.WalkStatus) {
	out := r.cr("") + r.selfClosing("hr")
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) blockquote(_ *ast.Node, entering bool) (string, ast.WalkStatus) {
	out := r.cr("")
	if entering {
		out += r.tag("blockquote")
	} else {
		out += r.tag("/blockquote")
	}
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) list(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	name := "ul"
	var attrs []string
	if n.List != nil && n.List.Type == ast.ListOrdered {
		name = "ol"
		if n.List.Start != 1 {
			attrs = append(attrs, "start", strconv.Itoa(n.List.Start))
		}
	}
	out := r.cr("")
	if entering {
		out += r.tag(name, attrs...)
	} else {
		out += r.tag("/" + name)
	}
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) listItem(_ *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		return r.tag("li"), ast.WalkContinue
	}
	out := r.tag("/li")
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) codeBlock(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	var attrs []string
	if n.Code != nil {
		if lang, _, _ := strings.Cut(strings.TrimSpace(n.Code.Info), " "); lang != "" {
			lang, _, _ = strings.Cut(lang, "\t")
			attrs = append(attrs, "class", "language-"+EscapeHTML(lang))
		}
	}
	out := r.cr("") + r.tag("pre") + r.tag("code", attrs...) + EscapeHTML(n.Literal()) + r.tag("/code") + r.tag("/pre")
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) htmlBlock(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	out := r.cr("")
	if r.opts.SafeMode {
		out += rawHTMLOmitted
	} else {
		out += n.Literal()
	}
	return out + r.cr(out), ast.WalkContinue
}

func (r *htmlRenderer) text(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	return EscapeHTML(n.Literal()), ast.WalkContinue
}

func (r *htmlRenderer) wrap(name string) RendererFunc {
	return func(_ *ast.Node, entering bool) (string, ast.WalkStatus) {
		if entering {
			return r.tag(name), ast.WalkContinue
		}
		return r.tag("/" + name), ast.WalkContinue
	}
}

func (r *htmlRenderer) codeSpan(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	return r.tag("code") + EscapeHTML(n.Literal()) + r.tag("/code"), ast.WalkContinue
}

func (r *htmlRenderer) hardBreak(*ast.Node, bool) (string, ast.WalkStatus) {
	out := r.selfClosing("br")
	return out + "\n", ast.WalkContinue
}

func (r *htmlRenderer) softBreak(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if r.opts.HardWraps {
		return r.hardBreak(n, entering)
	}
	return "\n", ast.WalkContinue
}

func (r *htmlRenderer) link(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if !entering {
		return r.tag("/a"), ast.WalkContinue
	}
	var attrs []string
	if !(r.opts.SafeMode && potentiallyUnsafe(n.Destination)) {
		attrs = append(attrs, "href", EscapeHTML(n.Destination))
	}
	if n.Title != "" {
		attrs = append(attrs, "title", EscapeHTML(n.Title))
	}
	return r.tag("a", attrs...), ast.WalkContinue
}

func (r *htmlRenderer) image(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		out := ""
		if r.disableTags == 0 {
			src := EscapeHTML(n.Destination)
			if r.opts.SafeMode && potentiallyUnsafe(n.Destination) {
				src = ""
			}
			out = `<img src="` + src + `" alt="`
		}
		r.disableTags++
		return out, ast.WalkContinue
	}
	r.disableTags--
	if r.disableTags > 0 {
		return "", ast.WalkContinue
	}
	out := ""
	if n.Title != "" {
		out = `" title="` + EscapeHTML(n.Title)
	}
	return out + `" />`, ast.WalkContinue
}

func (r *htmlRenderer) inlineHTML(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	if r.opts.SafeMode {
		return rawHTMLOmitted, ast.WalkContinue
	}
	return n.Literal(), ast.WalkContinue
}

func (r *htmlRenderer) taskMarker(n *ast.Node, _ bool) (string, ast.WalkStatus) {
	if n.Checked {
		return r.selfClosing("input", "checked", "", "disabled", "", "type", "checkbox"), ast.WalkContinue
	}
	return r.selfClosing("input", "disabled", "", "type", "checkbox"), ast.WalkContinue
}

func (r *htmlRenderer) table(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		return r.cr("") + r.tag("table") + "\n", ast.WalkContinue
	}
	out := r.cr("")
	if n.LastChild != nil && n.LastChild.Type == ast.NodeTableRow {
		out += r.tag("/tbody") + "\n"
	}
	return out + r.tag("/table") + "\n", ast.WalkContinue
}

func (r *htmlRenderer) tableHead(_ *ast.Node, entering bool) (string, ast.WalkStatus) {
	if entering {
		return r.tag("thead") + "\n" + r.tag("tr") + "\n", ast.WalkContinue
	}
	return r.tag("/tr") + "\n" + r.tag("/thead") + "\n", ast.WalkContinue
}

func (r *htmlRenderer) tableRow(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	if !entering {
		return r.tag("/tr") + "\n", ast.WalkContinue
	}
	out := ""
	if n.Previous != nil && n.Previous.Type == ast.NodeTableHead {
		out = r.tag("tbody") + "\n"
	}
	return out + r.tag("tr") + "\n", ast.WalkContinue
}

func (r *htmlRenderer) tableCell(n *ast.Node, entering bool) (string, ast.WalkStatus) {
	name := "td"
	if n.Parent != nil && n.Parent.Type == ast.NodeTableHead {
		name = "th"
	}
	if !entering {
		return r.tag("/"+name) + "\n", ast.WalkContinue
	}
	if n.Align != ast.AlignNone {
		return r.tag(name, "align", n.Align.String()), ast.WalkContinue
	}
	return r.tag(name), ast.WalkContinue
}
