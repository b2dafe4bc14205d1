package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
)

const escapable = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

const entityPattern = `&(?:#[xX][a-fA-F0-9]{1,6}|#[0-9]{1,7}|[a-zA-Z][a-zA-Z0-9]{1,31});`

var (
	reEntityHere          = regexp.MustCompile(`^` + entityPattern)
	reEntityOrEscapedChar = regexp.MustCompile(`\\[!"#$%&'()*+,./:;<=>?@\[\\\]^_` + "`" + `{|}~-]|` + entityPattern)
	reLabelWhitespace     = regexp.MustCompile(`[ \t\r\n]+`)

	labelFolder = cases.Fold()
)

func isEscapable(c byte) bool {
	return strings.IndexByte(escapable, c) >= 0
}

// decodeEntity decodes a single character reference such as "&amp;",
// "&#35;" or "&#x22;". ok is false when the reference is not a known entity.
func decodeEntity(ref string) (string, bool) {
	if len(ref) < 3 || ref[0] != '&' || ref[len(ref)-1] != ';' {
		return "", false
	}
	body := ref[1 : len(ref)-1]
	if body[0] == '#' {
		var (
			code int64
			err  error
		)
		if len(body) > 1 && (body[1] == 'x' || body[1] == 'X') {
			code, err = strconv.ParseInt(body[2:], 16, 32)
		} else {
			code, err = strconv.ParseInt(body[1:], 10, 32)
		}
		if err != nil {
			return "", false
		}
		r := rune(code)
		if code == 0 || code > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
			r = utf8.RuneError
		}
		return string(r), true
	}

	decoded := html.UnescapeString(ref)
	if decoded == ref {
		return "", false
	}
	// UnescapeString also accepts legacy references without a semicolon as a
	// prefix ("&ampfoo;" -> "&foo;"); only exact names count.
	if decoded != ";" && strings.HasSuffix(decoded, ";") {
		return "", false
	}
	return decoded, true
}

// unescapeString resolves backslash escapes and character references.
func unescapeString(s string) string {
	if !strings.ContainsAny(s, "\\&") {
		return s
	}
	return reEntityOrEscapedChar.ReplaceAllStringFunc(s, func(m string) string {
		if m[0] == '\\' {
			return m[1:]
		}
		if decoded, ok := decodeEntity(m); ok {
			return decoded
		}
		return m
	})
}

// normalizeLabel prepares a link label for reference lookup: brackets are
// removed, inner whitespace collapsed and the result case folded.
func normalizeLabel(raw string) string {
	if len(raw) >= 2 && raw[0] == '[' && raw[len(raw)-1] == ']' {
		raw = raw[1 : len(raw)-1]
	}
	raw = strings.TrimSpace(raw)
	raw = reLabelWhitespace.ReplaceAllString(raw, " ")
	return labelFolder.String(raw)
}

const uriSafe = ";/?:@&=+$,-_.!~*'()#"

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// normalizeURI percent-encodes characters that are not allowed in a URL while
// keeping existing escapes intact.
func normalizeURI(uri string) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(uri))
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		switch {
		case c == '%':
			if i+2 < len(uri) && isHex(uri[i+1]) && isHex(uri[i+2]) {
				b.WriteString(uri[i : i+3])
				i += 2
				continue
			}
			b.WriteString("%25")
		case ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9'):
			b.WriteByte(c)
		case c < 0x80 && strings.IndexByte(uriSafe, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&0xF])
		}
	}
	return b.String()
}
