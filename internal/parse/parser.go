package parse

import (
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

const codeIndent = 4

type blockState struct {
	open          bool
	content       []byte
	htmlBlockType int
	startLine     int
	endLine       int
}

type reference struct {
	destination string
	title       string
}

type blockParser struct {
	opts   Options
	doc    *ast.Node
	tip    *ast.Node
	oldTip *ast.Node
	states map[*ast.Node]*blockState
	refs   map[string]reference
	inline *inlineParser

	lastMatched *ast.Node

	line               string
	lineNumber         int
	offset             int
	column             int
	nextNonspace       int
	nextNonspaceColumn int
	indent             int
	indented           bool
	blank              bool
	partialTab         bool
	allClosed          bool
}

// Parse builds the syntax tree for src. It never fails: any input yields a
// Document, and constructs that do not parse degrade to paragraphs and text.
func Parse(src []byte, opts Options) *ast.Node {
	p := newBlockParser(opts)
	lines := splitLines(string(src))
	for _, line := range lines {
		p.incorporateLine(line)
	}
	for p.tip != nil {
		p.finalize(p.tip, len(lines))
	}
	p.processInlines()
	if opts.HeadingIDs {
		assignHeadingIDs(p.doc)
	}
	return p.doc
}

func newBlockParser(opts Options) *blockParser {
	doc := ast.NewNode(ast.NodeDocument)
	p := &blockParser{
		opts:   opts,
		doc:    doc,
		tip:    doc,
		oldTip: doc,
		states: make(map[*ast.Node]*blockState),
		refs:   make(map[string]reference),
	}
	p.inline = newInlineParser(opts, p.refs)
	p.states[doc] = &blockState{open: true, startLine: 1}
	p.lastMatched = doc
	return p
}

func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, src[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, src[start:i])
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(src) {
		lines = append(lines, src[start:])
	}
	return lines
}

func (p *blockParser) state(n *ast.Node) *blockState {
	st, ok := p.states[n]
	if !ok {
		st = &blockState{}
		p.states[n] = st
	}
	return st
}

func (p *blockParser) isOpen(n *ast.Node) bool {
	st, ok := p.states[n]
	return ok && st.open
}

func peek(s string, pos int) int {
	if pos < len(s) {
		return int(s[pos])
	}
	return -1
}

func isSpaceOrTab(c int) bool {
	return c == ' ' || c == '\t'
}

func isBlankLine(s string) bool {
	return strings.Trim(s, " \t\f\v\r\n") == ""
}

func (p *blockParser) findNextNonspace() {
	i := p.offset
	cols := p.column
	c := -1
	for i < len(p.line) {
		c = int(p.line[i])
		if c == ' ' {
			i++
			cols++
		} else if c == '\t' {
			i++
			cols += 4 - (cols % 4)
		} else {
			break
		}
	}
	if i >= len(p.line) {
		c = -1
	}
	p.blank = c == -1 || c == '\n' || c == '\r'
	p.nextNonspace = i
	p.nextNonspaceColumn = cols
	p.indent = p.nextNonspaceColumn - p.column
	p.indented = p.indent >= codeIndent
}

func (p *blockParser) advanceNextNonspace() {
	p.offset = p.nextNonspace
	p.column = p.nextNonspaceColumn
	p.partialTab = false
}

// advanceOffset moves count characters (or columns when columns is set)
// forward on the current line, splitting tabs when needed.
func (p *blockParser) advanceOffset(count int, columns bool) {
	for count > 0 && p.offset < len(p.line) {
		if p.line[p.offset] == '\t' {
			toTab := 4 - (p.column % 4)
			if columns {
				p.partialTab = toTab > count
				advance := toTab
				if toTab > count {
					advance = count
				}
				p.column += advance
				if !p.partialTab {
					p.offset++
				}
				count -= advance
			} else {
				p.partialTab = false
				p.column += toTab
				p.offset++
				count--
			}
			continue
		}
		p.partialTab = false
		p.offset++
		p.column++
		count--
	}
}

func (p *blockParser) addLine() {
	st := p.state(p.tip)
	if p.partialTab {
		p.offset++
		toTab := 4 - (p.column % 4)
		st.content = append(st.content, strings.Repeat(" ", toTab)...)
	}
	if p.offset < len(p.line) {
		st.content = append(st.content, p.line[p.offset:]...)
	}
	st.content = append(st.content, '\n')
}

func canContain(parent, child ast.NodeType) bool {
	switch parent {
	case ast.NodeDocument, ast.NodeBlockquote, ast.NodeListItem:
		return child != ast.NodeListItem
	case ast.NodeList:
		return child == ast.NodeListItem
	}
	return false
}

func acceptsLines(t ast.NodeType) bool {
	return t == ast.NodeParagraph || t == ast.NodeCodeBlock || t == ast.NodeHTMLBlock
}

func (p *blockParser) addChild(t ast.NodeType) *ast.Node {
	for !canContain(p.tip.Type, t) {
		p.finalize(p.tip, p.lineNumber-1)
	}
	n := ast.NewNode(t)
	p.states[n] = &blockState{open: true, startLine: p.lineNumber}
	p.tip.AppendChild(n)
	p.tip = n
	return n
}

func (p *blockParser) closeUnmatchedBlocks() {
	if p.allClosed {
		return
	}
	for p.oldTip != p.lastMatched {
		parent := p.oldTip.Parent
		p.finalize(p.oldTip, p.lineNumber-1)
		p.oldTip = parent
	}
	p.allClosed = true
}

func maybeSpecial(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexByte("#`~*+_=<>0123456789-", s[0]) >= 0
}

func (p *blockParser) incorporateLine(line string) {
	allMatched := true
	container := p.doc
	p.oldTip = p.tip
	p.offset = 0
	p.column = 0
	p.blank = false
	p.partialTab = false
	p.lineNumber++

	if strings.IndexByte(line, 0) >= 0 {
		line = strings.ReplaceAll(line, "\x00", "�")
	}
	p.line = line

	for {
		last := container.LastChild
		if last == nil || !p.isOpen(last) {
			break
		}
		container = last
		p.findNextNonspace()
		switch p.continueBlock(container) {
		case continueMatched:
		case continueFailed:
			allMatched = false
		case continueDone:
			return
		}
		if !allMatched {
			container = container.Parent
			break
		}
	}

	p.allClosed = container == p.oldTip
	p.lastMatched = container

	matchedLeaf := container.Type != ast.NodeParagraph && acceptsLines(container.Type)
	for !matchedLeaf {
		p.findNextNonspace()
		if !p.indented && !maybeSpecial(line[p.nextNonspace:]) {
			p.advanceNextNonspace()
			break
		}
		result := startNone
		for _, start := range blockStarts {
			result = start(p, container)
			if result != startNone {
				break
			}
		}
		if result == startNone {
			p.advanceNextNonspace()
			break
		}
		container = p.tip
		if result == startLeaf {
			matchedLeaf = true
		}
	}

	if !p.allClosed && !p.blank && p.tip.Type == ast.NodeParagraph {
		// lazy continuation
		p.addLine()
		return
	}

	p.closeUnmatchedBlocks()
	switch {
	case acceptsLines(container.Type):
		p.addLine()
		st := p.state(container)
		if container.Type == ast.NodeHTMLBlock && st.htmlBlockType >= 1 && st.htmlBlockType <= 5 {
			rest := ""
			if p.offset < len(line) {
				rest = line[p.offset:]
			}
			if htmlBlockClose[st.htmlBlockType].MatchString(rest) {
				p.finalize(container, p.lineNumber)
			}
		}
	case p.offset < len(line) && !p.blank:
		p.addChild(ast.NodeParagraph)
		p.advanceNextNonspace()
		p.addLine()
	}
}

func (p *blockParser) finalize(block *ast.Node, line int) {
	above := block.Parent
	st := p.state(block)
	st.open = false
	st.endLine = line

	switch block.Type {
	case ast.NodeParagraph:
		for len(st.content) > 0 && st.content[0] == '[' {
			consumed := p.inline.parseReference(string(st.content))
			if consumed == 0 {
				break
			}
			st.content = st.content[consumed:]
		}
		// a paragraph made only of reference definitions disappears
		if isBlankLine(string(st.content)) {
			block.Unlink()
		} else if p.opts.Tables {
			p.paragraphToTable(block, st)
		}
	case ast.NodeCodeBlock:
		p.finalizeCodeBlock(block, st)
	case ast.NodeHTMLBlock:
		block.Tokens = []byte(reHTMLBlockTrailing.ReplaceAllString(string(st.content), ""))
		st.content = nil
	case ast.NodeListItem:
		if block.LastChild != nil {
			st.endLine = p.state(block.LastChild).endLine
		} else {
			st.endLine = st.startLine
		}
	case ast.NodeList:
		block.List.Tight = p.listIsTight(block)
		if block.LastChild != nil {
			st.endLine = p.state(block.LastChild).endLine
		}
	}
	p.tip = above
}

func (p *blockParser) finalizeCodeBlock(block *ast.Node, st *blockState) {
	content := string(st.content)
	st.content = nil
	if block.Code != nil && block.Code.Fenced {
		first, rest, _ := strings.Cut(content, "\n")
		block.Code.Info = unescapeString(strings.TrimSpace(first))
		block.Tokens = []byte(rest)
		return
	}
	lines := strings.Split(content, "\n")
	for len(lines) > 0 && strings.Trim(lines[len(lines)-1], " \t") == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		block.Tokens = nil
		return
	}
	block.Tokens = []byte(strings.Join(lines, "\n") + "\n")
	st.endLine = st.startLine + len(lines) - 1
}

func (p *blockParser) endsWithBlankLine(n *ast.Node) bool {
	if n.Next == nil {
		return false
	}
	return p.state(n).endLine != p.state(n.Next).startLine-1
}

func (p *blockParser) listIsTight(list *ast.Node) bool {
	for item := list.FirstChild; item != nil; item = item.Next {
		if item.Next != nil && p.endsWithBlankLine(item) {
			return false
		}
		for sub := item.FirstChild; sub != nil; sub = sub.Next {
			if p.endsWithBlankLine(sub) && (item.Next != nil || sub.Next != nil) {
				return false
			}
		}
	}
	return true
}

func (p *blockParser) processInlines() {
	var blocks []*ast.Node
	ast.Walk(p.doc, func(n *ast.Node, entering bool) ast.WalkStatus {
		if entering && (n.Type == ast.NodeParagraph || n.Type == ast.NodeHeading || n.Type == ast.NodeTableCell) {
			blocks = append(blocks, n)
			return ast.WalkSkipChildren
		}
		return ast.WalkContinue
	})
	for _, block := range blocks {
		st := p.state(block)
		content := strings.Trim(string(st.content), " \t\n")
		st.content = nil
		if p.opts.TaskListItems && block.Type == ast.NodeParagraph {
			content = p.extractTaskMarker(block, content)
		}
		p.inline.parse(block, content)
	}
}
