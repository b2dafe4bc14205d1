package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

const (
	continueMatched = iota
	continueFailed
	continueDone
)

const (
	startNone = iota
	startContainer
	startLeaf
)

var (
	reATXClosingOnly    = regexp.MustCompile(`^[ \t]*#+[ \t]*$`)
	reATXClosing        = regexp.MustCompile(`[ \t]+#+[ \t]*$`)
	reThematicBreak     = regexp.MustCompile(`^(?:\*[ \t]*){3,}$|^(?:_[ \t]*){3,}$|^(?:-[ \t]*){3,}$`)
	reSetextHeadingLine = regexp.MustCompile(`^(?:=+|-+)[ \t]*$`)
	reOrderedListMarker = regexp.MustCompile(`^(\d{1,9})([.)])`)
	reHTMLBlockTrailing = regexp.MustCompile(`(\n *)+$`)
)

type blockStart func(p *blockParser, container *ast.Node) int

// blockStarts is ordered by precedence.
var blockStarts = []blockStart{
	startBlockquote,
	startATXHeading,
	startFencedCode,
	startHTMLBlock,
	startSetextHeading,
	startThematicBreak,
	startListItem,
	startIndentedCode,
}

func (p *blockParser) continueBlock(container *ast.Node) int {
	switch container.Type {
	case ast.NodeDocument, ast.NodeList:
		return continueMatched
	case ast.NodeBlockquote:
		if !p.indented && peek(p.line, p.nextNonspace) == '>' {
			p.advanceNextNonspace()
			p.advanceOffset(1, false)
			if isSpaceOrTab(peek(p.line, p.offset)) {
				p.advanceOffset(1, true)
			}
			return continueMatched
		}
		return continueFailed
	case ast.NodeListItem:
		data := container.List
		switch {
		case p.blank:
			if container.FirstChild == nil {
				return continueFailed
			}
			p.advanceNextNonspace()
		case p.indent >= data.MarkerOffset+data.Padding:
			p.advanceOffset(data.MarkerOffset+data.Padding, true)
		default:
			return continueFailed
		}
		return continueMatched
	case ast.NodeHeading, ast.NodeThematicBreak:
		return continueFailed
	case ast.NodeCodeBlock:
		return p.continueCodeBlock(container)
	case ast.NodeHTMLBlock:
		ht := p.state(container).htmlBlockType
		if p.blank && (ht == 6 || ht == 7) {
			return continueFailed
		}
		return continueMatched
	case ast.NodeParagraph:
		if p.blank {
			return continueFailed
		}
		return continueMatched
	}
	return continueFailed
}

func (p *blockParser) continueCodeBlock(container *ast.Node) int {
	code := container.Code
	if code.Fenced {
		if p.indent <= 3 && peek(p.line, p.nextNonspace) == int(code.FenceChar) {
			if n := closingFenceLength(p.line[p.nextNonspace:]); n >= code.FenceLength {
				p.finalize(container, p.lineNumber)
				return continueDone
			}
		}
		for i := code.FenceOffset; i > 0 && isSpaceOrTab(peek(p.line, p.offset)); i-- {
			p.advanceOffset(1, true)
		}
		return continueMatched
	}
	switch {
	case p.indent >= codeIndent:
		p.advanceOffset(codeIndent, true)
	case p.blank:
		p.advanceNextNonspace()
	default:
		return continueFailed
	}
	return continueMatched
}

// openingFence returns the fence length when s opens a fenced code block.
func openingFence(s string) (int, byte) {
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return 0, 0
	}
	c := s[0]
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 {
		return 0, 0
	}
	if c == '`' && strings.IndexByte(s[n:], '`') >= 0 {
		return 0, 0
	}
	return n, c
}

// closingFenceLength returns the fence length when s is a closing fence line.
func closingFenceLength(s string) int {
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return 0
	}
	c := s[0]
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 || strings.Trim(s[n:], " \t") != "" {
		return 0
	}
	return n
}

func startBlockquote(p *blockParser, _ *ast.Node) int {
	if p.indented || peek(p.line, p.nextNonspace) != '>' {
		return startNone
	}
	p.advanceNextNonspace()
	p.advanceOffset(1, false)
	if isSpaceOrTab(peek(p.line, p.offset)) {
		p.advanceOffset(1, true)
	}
	p.closeUnmatchedBlocks()
	p.addChild(ast.NodeBlockquote)
	return startContainer
}

func atxMarker(s string) (level, length int) {
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, 0
	}
	length = level
	if length < len(s) {
		if !isSpaceOrTab(int(s[length])) {
			return 0, 0
		}
		for length < len(s) && isSpaceOrTab(int(s[length])) {
			length++
		}
	}
	return level, length
}

func startATXHeading(p *blockParser, _ *ast.Node) int {
	if p.indented {
		return startNone
	}
	level, length := atxMarker(p.line[p.nextNonspace:])
	if level == 0 {
		return startNone
	}
	p.advanceNextNonspace()
	p.advanceOffset(length, false)
	p.closeUnmatchedBlocks()
	heading := p.addChild(ast.NodeHeading)
	heading.HeadingLevel = level
	rest := ""
	if p.offset < len(p.line) {
		rest = p.line[p.offset:]
	}
	rest = reATXClosingOnly.ReplaceAllString(rest, "")
	rest = reATXClosing.ReplaceAllString(rest, "")
	p.state(heading).content = []byte(rest)
	p.advanceOffset(len(p.line)-p.offset, false)
	return startLeaf
}

func startFencedCode(p *blockParser, _ *ast.Node) int {
	if p.indented {
		return startNone
	}
	length, char := openingFence(p.line[p.nextNonspace:])
	if length == 0 {
		return startNone
	}
	p.closeUnmatchedBlocks()
	block := p.addChild(ast.NodeCodeBlock)
	block.Code = &ast.CodeBlockData{
		Fenced:      true,
		FenceChar:   char,
		FenceLength: length,
		FenceOffset: p.indent,
	}
	p.advanceNextNonspace()
	p.advanceOffset(length, false)
	return startLeaf
}

func startHTMLBlock(p *blockParser, container *ast.Node) int {
	if p.indented || peek(p.line, p.nextNonspace) != '<' {
		return startNone
	}
	s := p.line[p.nextNonspace:]
	lazyParagraph := !p.allClosed && !p.blank && p.tip.Type == ast.NodeParagraph
	for kind := 1; kind <= 7; kind++ {
		if !htmlBlockOpen[kind].MatchString(s) {
			continue
		}
		if kind == 7 && (container.Type == ast.NodeParagraph || lazyParagraph) {
			continue
		}
		p.closeUnmatchedBlocks()
		block := p.addChild(ast.NodeHTMLBlock)
		p.state(block).htmlBlockType = kind
		return startLeaf
	}
	return startNone
}

func startSetextHeading(p *blockParser, container *ast.Node) int {
	if p.indented || container.Type != ast.NodeParagraph {
		return startNone
	}
	s := p.line[p.nextNonspace:]
	if !reSetextHeadingLine.MatchString(s) {
		return startNone
	}
	p.closeUnmatchedBlocks()
	st := p.state(container)
	for len(st.content) > 0 && st.content[0] == '[' {
		consumed := p.inline.parseReference(string(st.content))
		if consumed == 0 {
			break
		}
		st.content = st.content[consumed:]
	}
	if len(st.content) == 0 {
		return startNone
	}
	heading := ast.NewNode(ast.NodeHeading)
	heading.Setext = true
	heading.HeadingLevel = 2
	if s[0] == '=' {
		heading.HeadingLevel = 1
	}
	p.states[heading] = &blockState{
		open:      true,
		content:   st.content,
		startLine: st.startLine,
	}
	container.InsertAfter(heading)
	container.Unlink()
	delete(p.states, container)
	p.tip = heading
	p.advanceOffset(len(p.line)-p.offset, false)
	return startLeaf
}

func startThematicBreak(p *blockParser, _ *ast.Node) int {
	if p.indented || !reThematicBreak.MatchString(p.line[p.nextNonspace:]) {
		return startNone
	}
	p.closeUnmatchedBlocks()
	p.addChild(ast.NodeThematicBreak)
	p.advanceOffset(len(p.line)-p.offset, false)
	return startLeaf
}

func listsMatch(a, b *ast.ListData) bool {
	return a.Type == b.Type && a.Delimiter == b.Delimiter && a.BulletChar == b.BulletChar
}

func startListItem(p *blockParser, container *ast.Node) int {
	if p.indented && container.Type != ast.NodeList {
		return startNone
	}
	data := p.parseListMarker(container)
	if data == nil {
		return startNone
	}
	p.closeUnmatchedBlocks()
	if p.tip.Type != ast.NodeList || !listsMatch(container.List, data) {
		list := p.addChild(ast.NodeList)
		listData := *data
		list.List = &listData
	}
	item := p.addChild(ast.NodeListItem)
	item.List = data
	return startContainer
}

func (p *blockParser) parseListMarker(container *ast.Node) *ast.ListData {
	if p.indent >= codeIndent {
		return nil
	}
	rest := p.line[p.nextNonspace:]
	data := &ast.ListData{Tight: true, MarkerOffset: p.indent}
	markerLength := 0
	switch {
	case rest != "" && (rest[0] == '*' || rest[0] == '+' || rest[0] == '-'):
		data.Type = ast.ListBullet
		data.BulletChar = rest[0]
		markerLength = 1
	default:
		m := reOrderedListMarker.FindStringSubmatch(rest)
		if m == nil {
			return nil
		}
		start, _ := strconv.Atoi(m[1])
		if container.Type == ast.NodeParagraph && start != 1 {
			return nil
		}
		data.Type = ast.ListOrdered
		data.Start = start
		data.Delimiter = m[2][0]
		markerLength = len(m[0])
	}

	next := peek(p.line, p.nextNonspace+markerLength)
	if next != -1 && next != '\t' && next != ' ' {
		return nil
	}
	if container.Type == ast.NodeParagraph && isBlankLine(p.line[p.nextNonspace+markerLength:]) {
		return nil
	}

	p.advanceNextNonspace()
	p.advanceOffset(markerLength, true)
	spacesStartCol := p.column
	spacesStartOffset := p.offset
	for {
		p.advanceOffset(1, true)
		if p.column-spacesStartCol >= 5 || !isSpaceOrTab(peek(p.line, p.offset)) {
			break
		}
	}
	blankItem := peek(p.line, p.offset) == -1
	spacesAfter := p.column - spacesStartCol
	if spacesAfter >= 5 || spacesAfter < 1 || blankItem {
		data.Padding = markerLength + 1
		p.column = spacesStartCol
		p.offset = spacesStartOffset
		if isSpaceOrTab(peek(p.line, p.offset)) {
			p.advanceOffset(1, true)
		}
	} else {
		data.Padding = markerLength + spacesAfter
	}
	return data
}

func startIndentedCode(p *blockParser, _ *ast.Node) int {
	if !p.indented || p.tip.Type == ast.NodeParagraph || p.blank {
		return startNone
	}
	p.advanceOffset(codeIndent, true)
	p.closeUnmatchedBlocks()
	block := p.addChild(ast.NodeCodeBlock)
	block.Code = &ast.CodeBlockData{}
	return startLeaf
}
