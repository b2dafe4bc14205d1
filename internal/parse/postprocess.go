package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-lute/internal/ast"
)

var reTaskMarker = regexp.MustCompile(`^\[([ xX])\][ \t]+`)

// mergeText joins adjacent Text siblings below n and drops empty ones.
func mergeText(n *ast.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.Next
		if c.Type != ast.NodeText {
			if c.FirstChild != nil {
				mergeText(c)
			}
			c = next
			continue
		}
		for next != nil && next.Type == ast.NodeText {
			c.Tokens = append(c.Tokens, next.Tokens...)
			following := next.Next
			next.Unlink()
			next = following
		}
		if len(c.Tokens) == 0 {
			c.Unlink()
		}
		c = next
	}
}

// extractTaskMarker detects a "[ ]" / "[x]" prefix on the first paragraph of a
// list item, prepends a TaskListItemMarker and returns the remaining content.
func (p *blockParser) extractTaskMarker(paragraph *ast.Node, content string) string {
	item := paragraph.Parent
	if item == nil || item.Type != ast.NodeListItem || item.FirstChild != paragraph {
		return content
	}
	m := reTaskMarker.FindStringSubmatch(content)
	if m == nil {
		return content
	}
	marker := ast.NewNode(ast.NodeTaskListItemMarker)
	marker.Checked = m[1] != " "
	paragraph.PrependChild(marker)
	item.SetAttribute("task", strconv.FormatBool(marker.Checked))
	// keep the separating whitespace as a single space
	return " " + strings.TrimLeft(content[len(m[0]):], " \t")
}

// assignHeadingIDs gives every heading a slug id, suffixing duplicates.
func assignHeadingIDs(doc *ast.Node) {
	seen := map[string]bool{}
	ast.Walk(doc, func(n *ast.Node, entering bool) ast.WalkStatus {
		if !entering || n.Type != ast.NodeHeading {
			return ast.WalkContinue
		}
		base, err := slug.Normalize(n.Text())
		if err != nil || base == "" {
			base = "heading"
		}
		id := base
		for i := 1; seen[id]; i++ {
			id = base + "-" + strconv.Itoa(i)
		}
		seen[id] = true
		n.SetAttribute("id", id)
		return ast.WalkSkipChildren
	})
}
