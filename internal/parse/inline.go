package parse

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-lute/internal/ast"
)

const escapedChar = `\\[!"#$%&'()*+,./:;<=>?@\[\\\]^_` + "`" + `{|}~-]`

var (
	reLinkTitle = regexp.MustCompile(`^(?:"(?:` + escapedChar + `|\\[^\\]|[^\\"\x00])*"` +
		`|'(?:` + escapedChar + `|\\[^\\]|[^\\'\x00])*'` +
		`|\((?:` + escapedChar + `|\\[^\\]|[^\\()\x00])*\))`)
	reLinkDestinationBraces = regexp.MustCompile(`^(?:<(?:[^<>\n\\\x00]|\\.)*>)`)
	reLinkLabel             = regexp.MustCompile(`(?s)^\[(?:[^\\\[\]]|\\.){0,1000}\]`)
	reEmailAutolink         = regexp.MustCompile(`^<([a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*)>`)
	reAutolink              = regexp.MustCompile(`(?i)^<[A-Za-z][A-Za-z0-9.+-]{1,31}:[^<>\x00-\x20]*>`)
	reSpnl                  = regexp.MustCompile(`^ *(?:\n *)?`)
	reSpaceAtEndOfLine      = regexp.MustCompile(`^ *(?:\n|$)`)
	reInitialSpace          = regexp.MustCompile(`^ *`)
)

type delimiter struct {
	char      byte
	count     int
	origCount int
	node      *ast.Node
	prev      *delimiter
	next      *delimiter
	canOpen   bool
	canClose  bool
}

type bracket struct {
	node          *ast.Node
	prev          *bracket
	prevDelimiter *delimiter
	index         int
	image         bool
	active        bool
	bracketAfter  bool
}

type inlineParser struct {
	opts       Options
	refs       map[string]reference
	subject    string
	pos        int
	delimiters *delimiter
	brackets   *bracket
}

func newInlineParser(opts Options, refs map[string]reference) *inlineParser {
	return &inlineParser{opts: opts, refs: refs}
}

func (p *inlineParser) parse(block *ast.Node, content string) {
	p.subject = content
	p.pos = 0
	p.delimiters = nil
	p.brackets = nil
	for p.parseInline(block) {
	}
	p.processEmphasis(nil)
	mergeText(block)
	if p.opts.Autolinks {
		linkifyText(block)
	}
}

func (p *inlineParser) match(re *regexp.Regexp) (string, bool) {
	loc := re.FindStringIndex(p.subject[p.pos:])
	if loc == nil {
		return "", false
	}
	m := p.subject[p.pos+loc[0] : p.pos+loc[1]]
	p.pos += loc[1]
	return m, true
}

func (p *inlineParser) peek() int {
	return peek(p.subject, p.pos)
}

func (p *inlineParser) spnl() {
	p.match(reSpnl)
}

func appendText(block *ast.Node, s string) *ast.Node {
	n := ast.NewText(s)
	block.AppendChild(n)
	return n
}

func (p *inlineParser) isSpecial(c byte) bool {
	switch c {
	case '\n', '`', '[', ']', '\\', '!', '<', '&', '*', '_':
		return true
	case '~':
		return p.opts.Strikethrough
	}
	return false
}

func (p *inlineParser) parseInline(block *ast.Node) bool {
	c := p.peek()
	if c == -1 {
		return false
	}
	handled := false
	switch c {
	case '\n':
		handled = p.parseNewline(block)
	case '\\':
		handled = p.parseBackslash(block)
	case '`':
		handled = p.parseBackticks(block)
	case '*', '_':
		handled = p.handleDelim(byte(c), block)
	case '~':
		handled = p.opts.Strikethrough && p.handleDelim('~', block)
	case '[':
		handled = p.parseOpenBracket(block)
	case '!':
		handled = p.parseBang(block)
	case ']':
		handled = p.parseCloseBracket(block)
	case '<':
		handled = p.parseAutolink(block) || p.parseHTMLTag(block)
	case '&':
		handled = p.parseEntity(block)
	default:
		handled = p.parseString(block)
	}
	if !handled {
		p.pos++
		appendText(block, string(rune(c)))
	}
	return true
}

func (p *inlineParser) parseString(block *ast.Node) bool {
	start := p.pos
	for p.pos < len(p.subject) && !p.isSpecial(p.subject[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return false
	}
	appendText(block, p.subject[start:p.pos])
	return true
}

func (p *inlineParser) parseNewline(block *ast.Node) bool {
	p.pos++
	last := block.LastChild
	breakType := ast.NodeSoftBreak
	if last != nil && last.Type == ast.NodeText && len(last.Tokens) > 0 && last.Tokens[len(last.Tokens)-1] == ' ' {
		if len(last.Tokens) > 1 && last.Tokens[len(last.Tokens)-2] == ' ' {
			breakType = ast.NodeHardBreak
		}
		last.Tokens = []byte(strings.TrimRight(string(last.Tokens), " "))
	}
	block.AppendChild(ast.NewNode(breakType))
	p.match(reInitialSpace)
	return true
}

func (p *inlineParser) parseBackslash(block *ast.Node) bool {
	p.pos++
	switch c := p.peek(); {
	case c == '\n':
		p.pos++
		block.AppendChild(ast.NewNode(ast.NodeHardBreak))
	case c != -1 && isEscapable(byte(c)):
		appendText(block, string(rune(c)))
		p.pos++
	default:
		appendText(block, "\\")
	}
	return true
}

func backtickRun(s string, pos int) int {
	n := 0
	for pos+n < len(s) && s[pos+n] == '`' {
		n++
	}
	return n
}

func (p *inlineParser) parseBackticks(block *ast.Node) bool {
	ticks := backtickRun(p.subject, p.pos)
	if ticks == 0 {
		return false
	}
	p.pos += ticks
	afterOpen := p.pos
	for p.pos < len(p.subject) {
		if p.subject[p.pos] != '`' {
			p.pos++
			continue
		}
		run := backtickRun(p.subject, p.pos)
		p.pos += run
		if run != ticks {
			continue
		}
		contents := strings.ReplaceAll(p.subject[afterOpen:p.pos-ticks], "\n", " ")
		if len(contents) > 2 && contents[0] == ' ' && contents[len(contents)-1] == ' ' && strings.Trim(contents, " ") != "" {
			contents = contents[1 : len(contents)-1]
		}
		code := ast.NewNode(ast.NodeCodeSpan)
		code.Tokens = []byte(contents)
		block.AppendChild(code)
		return true
	}
	p.pos = afterOpen
	appendText(block, strings.Repeat("`", ticks))
	return true
}

func (p *inlineParser) parseAutolink(block *ast.Node) bool {
	if m, ok := p.match(reEmailAutolink); ok {
		dest := m[1 : len(m)-1]
		link := ast.NewNode(ast.NodeLink)
		link.Destination = normalizeURI("mailto:" + dest)
		link.SetAttribute("autolink", "email")
		link.AppendChild(ast.NewText(dest))
		block.AppendChild(link)
		return true
	}
	if m, ok := p.match(reAutolink); ok {
		dest := m[1 : len(m)-1]
		link := ast.NewNode(ast.NodeLink)
		link.Destination = normalizeURI(dest)
		link.SetAttribute("autolink", "uri")
		link.AppendChild(ast.NewText(dest))
		block.AppendChild(link)
		return true
	}
	return false
}

func (p *inlineParser) parseHTMLTag(block *ast.Node) bool {
	m, ok := p.match(reHTMLTag)
	if !ok {
		return false
	}
	n := ast.NewNode(ast.NodeInlineHTML)
	n.Tokens = []byte(m)
	block.AppendChild(n)
	return true
}

func (p *inlineParser) parseEntity(block *ast.Node) bool {
	loc := reEntityHere.FindStringIndex(p.subject[p.pos:])
	if loc == nil {
		return false
	}
	decoded, ok := decodeEntity(p.subject[p.pos : p.pos+loc[1]])
	if !ok {
		return false
	}
	p.pos += loc[1]
	appendText(block, decoded)
	return true
}

func isUnicodeWhitespace(r rune) bool {
	return r == '\t' || r == '\n' || r == '\f' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isUnicodePunctuation(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// scanDelims measures the delimiter run at the current position and decides
// whether it can open and/or close emphasis.
func (p *inlineParser) scanDelims(c byte) (count int, canOpen, canClose bool) {
	start := p.pos
	for start+count < len(p.subject) && p.subject[start+count] == c {
		count++
	}
	if count == 0 {
		return 0, false, false
	}

	before := '\n'
	if start > 0 {
		before, _ = utf8.DecodeLastRuneInString(p.subject[:start])
	}
	after := '\n'
	if start+count < len(p.subject) {
		after, _ = utf8.DecodeRuneInString(p.subject[start+count:])
	}

	afterSpace := isUnicodeWhitespace(after)
	afterPunct := isUnicodePunctuation(after)
	beforeSpace := isUnicodeWhitespace(before)
	beforePunct := isUnicodePunctuation(before)

	leftFlanking := !afterSpace && (!afterPunct || beforeSpace || beforePunct)
	rightFlanking := !beforeSpace && (!beforePunct || afterSpace || afterPunct)

	if c == '_' {
		canOpen = leftFlanking && (!rightFlanking || beforePunct)
		canClose = rightFlanking && (!leftFlanking || afterPunct)
	} else {
		canOpen = leftFlanking
		canClose = rightFlanking
	}
	return count, canOpen, canClose
}

func (p *inlineParser) handleDelim(c byte, block *ast.Node) bool {
	count, canOpen, canClose := p.scanDelims(c)
	if count == 0 {
		return false
	}
	start := p.pos
	p.pos += count
	node := appendText(block, p.subject[start:p.pos])

	if c == '~' && count > 2 {
		return true
	}
	if !canOpen && !canClose {
		return true
	}
	d := &delimiter{
		char:      c,
		count:     count,
		origCount: count,
		node:      node,
		prev:      p.delimiters,
		canOpen:   canOpen,
		canClose:  canClose,
	}
	if d.prev != nil {
		d.prev.next = d
	}
	p.delimiters = d
	return true
}

func (p *inlineParser) removeDelimiter(d *delimiter) {
	if d.prev != nil {
		d.prev.next = d.next
	}
	if d.next != nil {
		d.next.prev = d.prev
	} else {
		p.delimiters = d.prev
	}
}

func removeDelimitersBetween(bottom, top *delimiter) {
	if bottom.next != top {
		bottom.next = top
		top.prev = bottom
	}
}

func openersBottomIndex(closer *delimiter) int {
	canOpen := 0
	if closer.canOpen {
		canOpen = 3
	}
	switch closer.char {
	case '_':
		return canOpen + closer.origCount%3
	case '*':
		return 6 + canOpen + closer.origCount%3
	default:
		return 12 + closer.origCount - 1
	}
}

// processEmphasis resolves the delimiter stack above stackBottom into
// Emphasis, Strong and Strikethrough nodes.
func (p *inlineParser) processEmphasis(stackBottom *delimiter) {
	var openersBottom [14]*delimiter
	for i := range openersBottom {
		openersBottom[i] = stackBottom
	}

	closer := p.delimiters
	for closer != nil && closer.prev != stackBottom {
		closer = closer.prev
	}

	for closer != nil {
		if !closer.canClose {
			closer = closer.next
			continue
		}

		idx := openersBottomIndex(closer)
		opener := closer.prev
		found := false
		for opener != nil && opener != stackBottom && opener != openersBottom[idx] {
			if closer.char == '~' {
				if opener.char == '~' && opener.canOpen && opener.count == closer.count {
					found = true
					break
				}
			} else {
				oddMatch := (closer.canOpen || opener.canClose) &&
					closer.origCount%3 != 0 &&
					(opener.origCount+closer.origCount)%3 == 0
				if opener.char == closer.char && opener.canOpen && !oddMatch {
					found = true
					break
				}
			}
			opener = opener.prev
		}

		oldCloser := closer
		if !found {
			closer = closer.next
			openersBottom[idx] = oldCloser.prev
			if !oldCloser.canOpen {
				p.removeDelimiter(oldCloser)
			}
			continue
		}

		if closer.char == '~' {
			strike := ast.NewNode(ast.NodeStrikethrough)
			wrapBetween(strike, opener.node, closer.node)
			removeDelimitersBetween(opener, closer)
			opener.node.Unlink()
			p.removeDelimiter(opener)
			closer.node.Unlink()
			next := closer.next
			p.removeDelimiter(closer)
			closer = next
			continue
		}

		used := 1
		if closer.count >= 2 && opener.count >= 2 {
			used = 2
		}
		openerNode := opener.node
		closerNode := closer.node
		opener.count -= used
		closer.count -= used
		openerNode.Tokens = openerNode.Tokens[:len(openerNode.Tokens)-used]
		closerNode.Tokens = closerNode.Tokens[:len(closerNode.Tokens)-used]

		kind := ast.NodeEmphasis
		if used == 2 {
			kind = ast.NodeStrong
		}
		wrapBetween(ast.NewNode(kind), openerNode, closerNode)
		removeDelimitersBetween(opener, closer)

		if opener.count == 0 {
			openerNode.Unlink()
			p.removeDelimiter(opener)
		}
		if closer.count == 0 {
			closerNode.Unlink()
			next := closer.next
			p.removeDelimiter(closer)
			closer = next
		}
	}

	for p.delimiters != nil && p.delimiters != stackBottom {
		p.removeDelimiter(p.delimiters)
	}
}

// wrapBetween moves the siblings strictly between from and to into wrapper and
// places wrapper right after from.
func wrapBetween(wrapper, from, to *ast.Node) {
	for n := from.Next; n != nil && n != to; {
		next := n.Next
		wrapper.AppendChild(n)
		n = next
	}
	from.InsertAfter(wrapper)
}

func (p *inlineParser) addBracket(node *ast.Node, index int, image bool) {
	if p.brackets != nil {
		p.brackets.bracketAfter = true
	}
	p.brackets = &bracket{
		node:          node,
		prev:          p.brackets,
		prevDelimiter: p.delimiters,
		index:         index,
		image:         image,
		active:        true,
	}
}

func (p *inlineParser) removeBracket() {
	p.brackets = p.brackets.prev
}

func (p *inlineParser) parseOpenBracket(block *ast.Node) bool {
	start := p.pos
	p.pos++
	node := appendText(block, "[")
	p.addBracket(node, start, false)
	return true
}

func (p *inlineParser) parseBang(block *ast.Node) bool {
	start := p.pos
	p.pos++
	if p.peek() == '[' {
		p.pos++
		node := appendText(block, "![")
		p.addBracket(node, start+1, true)
		return true
	}
	appendText(block, "!")
	return true
}

func (p *inlineParser) parseCloseBracket(block *ast.Node) bool {
	p.pos++
	start := p.pos

	opener := p.brackets
	if opener == nil {
		appendText(block, "]")
		return true
	}
	if !opener.active {
		appendText(block, "]")
		p.removeBracket()
		return true
	}

	var (
		dest, title string
		matched     bool
	)
	save := p.pos

	if p.peek() == '(' {
		p.pos++
		p.spnl()
		if d, ok := p.parseLinkDestination(); ok {
			p.spnl()
			if p.pos > 0 && isASCIIWhitespace(p.subject[p.pos-1]) {
				if t, ok := p.parseLinkTitle(); ok {
					title = t
				}
			}
			p.spnl()
			if p.peek() == ')' {
				p.pos++
				dest = d
				matched = true
			}
		}
		if !matched {
			p.pos = save
			title = ""
		}
	}

	if !matched {
		beforeLabel := p.pos
		n := p.parseLinkLabel()
		label := ""
		if n > 2 {
			label = p.subject[beforeLabel : beforeLabel+n]
		} else if !opener.bracketAfter {
			label = p.subject[opener.index:start]
		}
		if n == 0 {
			p.pos = save
		}
		if label != "" {
			if ref, ok := p.refs[normalizeLabel(label)]; ok {
				dest = ref.destination
				title = ref.title
				matched = true
			}
		}
	}

	if !matched {
		p.removeBracket()
		p.pos = start
		appendText(block, "]")
		return true
	}

	kind := ast.NodeLink
	if opener.image {
		kind = ast.NodeImage
	}
	link := ast.NewNode(kind)
	link.Destination = dest
	link.Title = title
	for n := opener.node.Next; n != nil; {
		next := n.Next
		link.AppendChild(n)
		n = next
	}
	block.AppendChild(link)
	p.processEmphasis(opener.prevDelimiter)
	p.removeBracket()
	opener.node.Unlink()

	// no links inside links
	if !opener.image {
		for b := p.brackets; b != nil; b = b.prev {
			if !b.image {
				b.active = false
			}
		}
	}
	return true
}

func isASCIIWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func (p *inlineParser) parseLinkDestination() (string, bool) {
	if m, ok := p.match(reLinkDestinationBraces); ok {
		return normalizeURI(unescapeString(m[1 : len(m)-1])), true
	}
	if p.peek() == '<' {
		return "", false
	}
	save := p.pos
	parens := 0
	c := -1
	for p.pos < len(p.subject) {
		c = int(p.subject[p.pos])
		if c == '\\' && p.pos+1 < len(p.subject) && isEscapable(p.subject[p.pos+1]) {
			p.pos += 2
			continue
		}
		if c == '(' {
			p.pos++
			parens++
			continue
		}
		if c == ')' {
			if parens < 1 {
				break
			}
			p.pos++
			parens--
			continue
		}
		if isASCIIWhitespace(byte(c)) || c < 0x20 || c == 0x7f {
			break
		}
		p.pos++
	}
	if p.pos >= len(p.subject) {
		c = -1
	}
	if p.pos == save && c != ')' {
		return "", false
	}
	if parens != 0 {
		p.pos = save
		return "", false
	}
	return normalizeURI(unescapeString(p.subject[save:p.pos])), true
}

func (p *inlineParser) parseLinkTitle() (string, bool) {
	m, ok := p.match(reLinkTitle)
	if !ok {
		return "", false
	}
	return unescapeString(m[1 : len(m)-1]), true
}

func (p *inlineParser) parseLinkLabel() int {
	loc := reLinkLabel.FindStringIndex(p.subject[p.pos:])
	if loc == nil || loc[1] > 1001 {
		return 0
	}
	p.pos += loc[1]
	return loc[1]
}

// parseReference consumes one link reference definition from the start of s
// and records it. It returns the number of bytes consumed, or 0.
func (p *inlineParser) parseReference(s string) int {
	p.subject = s
	p.pos = 0

	n := p.parseLinkLabel()
	if n == 0 {
		return 0
	}
	rawLabel := s[:n]

	if p.peek() != ':' {
		p.pos = 0
		return 0
	}
	p.pos++
	p.spnl()

	dest, ok := p.parseLinkDestination()
	if !ok {
		p.pos = 0
		return 0
	}

	beforeTitle := p.pos
	p.spnl()
	title := ""
	hasTitle := false
	if p.pos != beforeTitle {
		title, hasTitle = p.parseLinkTitle()
	}
	if !hasTitle {
		title = ""
		p.pos = beforeTitle
	}

	atLineEnd := true
	if _, ok := p.match(reSpaceAtEndOfLine); !ok {
		if !hasTitle {
			atLineEnd = false
		} else {
			title = ""
			p.pos = beforeTitle
			_, atLineEnd = p.match(reSpaceAtEndOfLine)
		}
	}
	if !atLineEnd {
		p.pos = 0
		return 0
	}

	label := normalizeLabel(rawLabel)
	if label == "" {
		p.pos = 0
		return 0
	}
	if _, exists := p.refs[label]; !exists {
		p.refs[label] = reference{destination: dest, title: title}
	}
	return p.pos
}
