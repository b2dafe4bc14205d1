package parse

import "regexp"

const (
	tagName        = `[A-Za-z][A-Za-z0-9-]*`
	attributeName  = `[a-zA-Z_:][a-zA-Z0-9:._-]*`
	unquotedValue  = "[^\"'=<>`\\x00-\\x20]+"
	singleQuoted   = `'[^']*'`
	doubleQuoted   = `"[^"]*"`
	attributeValue = `(?:` + unquotedValue + `|` + singleQuoted + `|` + doubleQuoted + `)`
	attributeSpec  = `(?:\s*=\s*` + attributeValue + `)`
	attribute      = `(?:\s+` + attributeName + attributeSpec + `?)`
	openTag        = `<` + tagName + attribute + `*\s*/?>`
	closeTag       = `</` + tagName + `\s*[>]`
	htmlComment    = `<!-->|<!--->|<!--[\s\S]*?-->`
	procInstr      = `[<][?][\s\S]*?[?][>]`
	declaration    = `<![A-Za-z]+[^>]*>`
	cdata          = `<!\[CDATA\[[\s\S]*?\]\]>`
	htmlTag        = `(?:` + openTag + `|` + closeTag + `|` + htmlComment + `|` + procInstr + `|` + declaration + `|` + cdata + `)`
)

var reHTMLTag = regexp.MustCompile(`^` + htmlTag)

// htmlBlockOpen holds the start conditions of the seven HTML block kinds;
// index 0 is unused.
var htmlBlockOpen = [...]*regexp.Regexp{
	nil,
	regexp.MustCompile(`(?i)^<(?:script|pre|textarea|style)(?:\s|>|$)`),
	regexp.MustCompile(`^<!--`),
	regexp.MustCompile(`^<[?]`),
	regexp.MustCompile(`^<![A-Za-z]`),
	regexp.MustCompile(`^<!\[CDATA\[`),
	regexp.MustCompile(`(?i)^<[/]?(?:address|article|aside|base|basefont|blockquote|body|caption|center|col|colgroup|dd|details|dialog|dir|div|dl|dt|fieldset|figcaption|figure|footer|form|frame|frameset|h[123456]|head|header|hr|html|iframe|legend|li|link|main|menu|menuitem|nav|noframes|ol|optgroup|option|p|param|search|section|summary|table|tbody|td|tfoot|th|thead|title|tr|track|ul)(?:\s|[/]?[>]|$)`),
	regexp.MustCompile(`(?i)^(?:` + openTag + `|` + closeTag + `)\s*$`),
}

// htmlBlockClose holds the end conditions of HTML block kinds 1 to 5.
var htmlBlockClose = [...]*regexp.Regexp{
	nil,
	regexp.MustCompile(`(?i)</(?:script|pre|textarea|style)>`),
	regexp.MustCompile(`-->`),
	regexp.MustCompile(`\?>`),
	regexp.MustCompile(`>`),
	regexp.MustCompile(`\]\]>`),
}
