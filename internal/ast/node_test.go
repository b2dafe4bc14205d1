package ast

import "testing"

func TestParseNodeTypeAcceptsBothSpellings(t *testing.T) {
	cases := map[string]NodeType{
		"Strong":          NodeStrong,
		"renderStrong":    NodeStrong,
		"renderText":      NodeText,
		"Paragraph":       NodeParagraph,
		" renderHeading ": NodeHeading,
		"renderTableCell": NodeTableCell,
	}
	for name, want := range cases {
		got, ok := ParseNodeType(name)
		if !ok || got != want {
			t.Fatalf("ParseNodeType(%q) = %v, %v; want %v", name, got, ok, want)
		}
	}
	for _, name := range []string{"", "render", "renderFootnote", "strong"} {
		if _, ok := ParseNodeType(name); ok {
			t.Fatalf("expected %q to be rejected", name)
		}
	}
}

func TestNodeTypeNamesAreComplete(t *testing.T) {
	seen := map[string]bool{}
	for _, kind := range NodeTypes() {
		name := kind.String()
		if name == "" || name == "Unknown" {
			t.Fatalf("kind %d has no name", kind)
		}
		if seen[name] {
			t.Fatalf("duplicate kind name %q", name)
		}
		seen[name] = true
	}
	if len(seen) != NodeTypeCount {
		t.Fatalf("expected %d names, got %d", NodeTypeCount, len(seen))
	}
	if NodeType(-1).Valid() || NodeType(NodeTypeCount).Valid() {
		t.Fatalf("out of range kinds must be invalid")
	}
}

func TestChildLinksStayConsistent(t *testing.T) {
	doc := NewNode(NodeDocument)
	a := NewNode(NodeParagraph)
	b := NewNode(NodeParagraph)
	c := NewNode(NodeParagraph)
	doc.AppendChild(a)
	doc.AppendChild(c)
	a.InsertAfter(b)

	if got := doc.ChildCount(); got != 3 {
		t.Fatalf("expected 3 children, got %d", got)
	}
	if doc.FirstChild != a || doc.LastChild != c || a.Next != b || b.Next != c || c.Previous != b {
		t.Fatalf("sibling links broken")
	}

	// re-appending moves the node instead of duplicating it
	doc.AppendChild(a)
	children := doc.Children()
	if len(children) != 3 || children[0] != b || children[2] != a {
		t.Fatalf("unexpected order after move: %v", children)
	}
	if a.Parent != doc || b.Previous != nil {
		t.Fatalf("parent or previous link broken")
	}

	b.Unlink()
	if doc.FirstChild != c || b.Parent != nil {
		t.Fatalf("unlink did not detach node")
	}
}

func TestTextConcatenatesDescendants(t *testing.T) {
	p := NewNode(NodeParagraph)
	strong := NewNode(NodeStrong)
	strong.AppendChild(NewText("Lute"))
	p.AppendChild(NewText("Hello "))
	p.AppendChild(strong)
	p.AppendChild(NewNode(NodeSoftBreak))
	code := NewNode(NodeCodeSpan)
	code.Tokens = []byte("x")
	p.AppendChild(code)

	if got := p.Text(); got != "Hello Lute\nx" {
		t.Fatalf("unexpected text %q", got)
	}
	var nilNode *Node
	if nilNode.Text() != "" {
		t.Fatalf("nil node text should be empty")
	}
}

func TestWalkHonoursDirectives(t *testing.T) {
	doc := NewNode(NodeDocument)
	p1 := NewNode(NodeParagraph)
	p1.AppendChild(NewText("one"))
	p2 := NewNode(NodeParagraph)
	p2.AppendChild(NewText("two"))
	doc.AppendChild(p1)
	doc.AppendChild(p2)

	var visited []string
	completed := Walk(doc, func(n *Node, entering bool) WalkStatus {
		if entering {
			visited = append(visited, n.Type.String())
		}
		if n == p1 && entering {
			return WalkSkipChildren
		}
		if n.Type == NodeText && entering {
			return WalkStop
		}
		return WalkContinue
	})
	if completed {
		t.Fatalf("expected walk to report a stop")
	}
	want := []string{"Document", "Paragraph", "Paragraph", "Text"}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}
