package parse

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-lute/internal/ast"
)

var reEmailLiteral = regexp.MustCompile(`^[a-zA-Z0-9.+_-]+@[a-zA-Z0-9_-]+(?:\.[a-zA-Z0-9_-]+)+`)

// linkifyText turns bare URLs and email addresses found in Text nodes below
// n into Link nodes. Link and image content is left untouched.
func linkifyText(n *ast.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.Next
		switch c.Type {
		case ast.NodeLink, ast.NodeImage:
		case ast.NodeText:
			linkifyNode(c)
		default:
			if c.FirstChild != nil {
				linkifyText(c)
			}
		}
		c = next
	}
}

func linkifyNode(text *ast.Node) {
	s := text.Literal()
	hasAt := strings.IndexByte(s, '@') >= 0
	var pieces []*ast.Node
	last := 0
	for i := 0; i < len(s); {
		end, dest, kind, ok := matchURLLiteral(s, i)
		if !ok && hasAt {
			end, dest, kind, ok = matchEmailLiteral(s, i)
		}
		if !ok {
			i++
			continue
		}
		if i > last {
			pieces = append(pieces, ast.NewText(s[last:i]))
		}
		link := ast.NewNode(ast.NodeLink)
		link.Destination = normalizeURI(dest)
		link.SetAttribute("autolink", kind)
		link.AppendChild(ast.NewText(s[i:end]))
		pieces = append(pieces, link)
		last, i = end, end
	}
	if len(pieces) == 0 {
		return
	}
	if last < len(s) {
		pieces = append(pieces, ast.NewText(s[last:]))
	}
	for _, piece := range pieces {
		text.InsertBefore(piece)
	}
	text.Unlink()
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// matchURLLiteral matches "www." and http, https or ftp URLs starting at
// s[i]. They must start a line or follow whitespace or one of *_~(.
func matchURLLiteral(s string, i int) (int, string, string, bool) {
	if i > 0 && strings.IndexByte(" \t\n*_~(", s[i-1]) < 0 {
		return 0, "", "", false
	}
	rest := s[i:]
	scheme, hostStart, kind := "", 0, "url"
	switch {
	case hasPrefixFold(rest, "www."):
		scheme, kind = "http://", "www"
	case hasPrefixFold(rest, "http://"):
		hostStart = len("http://")
	case hasPrefixFold(rest, "https://"):
		hostStart = len("https://")
	case hasPrefixFold(rest, "ftp://"):
		hostStart = len("ftp://")
	default:
		return 0, "", "", false
	}

	hostEnd := hostStart
	for hostEnd < len(rest) && isDomainChar(rest[hostEnd]) {
		hostEnd++
	}
	end := hostEnd
	for end < len(rest) && !isLinkStop(rest[end]) {
		end++
	}
	end = trimLinkTail(rest, end)
	if end < hostEnd {
		hostEnd = end
	}
	if !validDomain(rest[hostStart:hostEnd], kind == "www") {
		return 0, "", "", false
	}
	return i + end, scheme + rest[:end], kind, true
}

// matchEmailLiteral matches an email address whose local part starts at s[i].
func matchEmailLiteral(s string, i int) (int, string, string, bool) {
	if i > 0 && isEmailLocalChar(s[i-1]) {
		return 0, "", "", false
	}
	m := reEmailLiteral.FindString(s[i:])
	if m == "" {
		return 0, "", "", false
	}
	if c := m[len(m)-1]; c == '-' || c == '_' {
		return 0, "", "", false
	}
	return i + len(m), "mailto:" + m, "email", true
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func isDomainChar(c byte) bool {
	return isAlnum(c) || c == '-' || c == '_' || c == '.' || c >= 0x80
}

func isEmailLocalChar(c byte) bool {
	return isAlnum(c) || c == '.' || c == '+' || c == '-' || c == '_'
}

func isLinkStop(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v', '<':
		return true
	}
	return false
}

// trimLinkTail drops trailing punctuation, unbalanced closing parentheses and
// a trailing entity reference from rest[:end].
func trimLinkTail(rest string, end int) int {
	for end > 0 {
		c := rest[end-1]
		switch {
		case strings.IndexByte(`?!.,:*_~'"`, c) >= 0:
			end--
		case c == ')':
			if strings.Count(rest[:end], "(") >= strings.Count(rest[:end], ")") {
				return end
			}
			end--
		case c == ';':
			j := end - 2
			for j >= 0 && isAlnum(rest[j]) {
				j--
			}
			if j < 0 || j == end-2 || rest[j] != '&' {
				return end
			}
			end = j
		default:
			return end
		}
	}
	return end
}

// validDomain checks period separated segments with no underscore in the
// last two. "www." links need at least two segments.
func validDomain(domain string, www bool) bool {
	domain = strings.TrimRight(domain, ".")
	if domain == "" {
		return false
	}
	segments := strings.Split(domain, ".")
	if www && len(segments) < 2 {
		return false
	}
	for i, seg := range segments {
		if seg == "" {
			return false
		}
		if i >= len(segments)-2 && strings.IndexByte(seg, '_') >= 0 {
			return false
		}
	}
	return true
}
