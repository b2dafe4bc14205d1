package ast

import "strings"

// NodeType identifies the kind of a syntax tree node.
type NodeType int

const (
	NodeDocument NodeType = iota
	NodeParagraph
	NodeHeading
	NodeThematicBreak
	NodeBlockquote
	NodeList
	NodeListItem
	NodeCodeBlock
	NodeHTMLBlock
	NodeText
	NodeEmphasis
	NodeStrong
	NodeCodeSpan
	NodeHardBreak
	NodeSoftBreak
	NodeLink
	NodeImage
	NodeInlineHTML
	NodeStrikethrough
	NodeTaskListItemMarker
	NodeTable
	NodeTableHead
	NodeTableRow
	NodeTableCell

	nodeTypeCount
)

var nodeTypeNames = [...]string{
	NodeDocument:           "Document",
	NodeParagraph:          "Paragraph",
	NodeHeading:            "Heading",
	NodeThematicBreak:      "ThematicBreak",
	NodeBlockquote:         "Blockquote",
	NodeList:               "List",
	NodeListItem:           "ListItem",
	NodeCodeBlock:          "CodeBlock",
	NodeHTMLBlock:          "HTMLBlock",
	NodeText:               "Text",
	NodeEmphasis:           "Emphasis",
	NodeStrong:             "Strong",
	NodeCodeSpan:           "CodeSpan",
	NodeHardBreak:          "HardBreak",
	NodeSoftBreak:          "SoftBreak",
	NodeLink:               "Link",
	NodeImage:              "Image",
	NodeInlineHTML:         "InlineHTML",
	NodeStrikethrough:      "Strikethrough",
	NodeTaskListItemMarker: "TaskListItemMarker",
	NodeTable:              "Table",
	NodeTableHead:          "TableHead",
	NodeTableRow:           "TableRow",
	NodeTableCell:          "TableCell",
}

// NodeTypeCount is the number of node kinds; kinds are dense in [0, NodeTypeCount).
const NodeTypeCount = int(nodeTypeCount)

// String returns the kind name, e.g. "Strong".
func (t NodeType) String() string {
	if t < 0 || t >= nodeTypeCount {
		return "Unknown"
	}
	return nodeTypeNames[t]
}

// Valid reports whether t is one of the declared kinds.
func (t NodeType) Valid() bool {
	return t >= 0 && t < nodeTypeCount
}

// IsLeaf reports whether nodes of this kind never carry children. Leaf kinds
// receive only the entering renderer call.
func (t NodeType) IsLeaf() bool {
	switch t {
	case NodeText, NodeCodeSpan, NodeCodeBlock, NodeHTMLBlock, NodeInlineHTML,
		NodeHardBreak, NodeSoftBreak, NodeThematicBreak, NodeTaskListItemMarker:
		return true
	}
	return false
}

// IsBlock reports whether the kind is a block-level container or leaf.
func (t NodeType) IsBlock() bool {
	switch t {
	case NodeDocument, NodeParagraph, NodeHeading, NodeThematicBreak, NodeBlockquote,
		NodeList, NodeListItem, NodeCodeBlock, NodeHTMLBlock,
		NodeTable, NodeTableHead, NodeTableRow, NodeTableCell:
		return true
	}
	return false
}

// NodeTypes returns every declared kind in declaration order.
func NodeTypes() []NodeType {
	out := make([]NodeType, 0, nodeTypeCount)
	for t := NodeType(0); t < nodeTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// ParseNodeType resolves a kind name. Both "Strong" and the callback-map
// spelling "renderStrong" are accepted.
func ParseNodeType(name string) (NodeType, bool) {
	name = strings.TrimSpace(name)
	if rest, ok := strings.CutPrefix(name, "render"); ok && rest != "" {
		name = rest
	}
	for t := NodeType(0); t < nodeTypeCount; t++ {
		if nodeTypeNames[t] == name {
			return t, true
		}
	}
	return 0, false
}

// ListType distinguishes bullet from ordered lists.
type ListType int

const (
	ListBullet ListType = iota
	ListOrdered
)

func (l ListType) String() string {
	if l == ListOrdered {
		return "ordered"
	}
	return "bullet"
}

// ListData carries the attributes shared by a list and its items.
type ListData struct {
	Type         ListType
	Tight        bool
	BulletChar   byte
	Start        int
	Delimiter    byte
	Padding      int
	MarkerOffset int
}

// CellAlign is the column alignment of a table cell.
type CellAlign int

const (
	AlignNone CellAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a CellAlign) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return ""
}

// CodeBlockData describes a fenced or indented code block.
type CodeBlockData struct {
	Fenced      bool
	Info        string
	FenceChar   byte
	FenceLength int
	FenceOffset int
}

// Node is a syntax tree node. Children are owned by their parent and are kept
// as a doubly linked list in document order.
type Node struct {
	Type NodeType

	// Tokens is the literal payload of leaf kinds (text, code, raw HTML).
	Tokens []byte

	Parent     *Node
	FirstChild *Node
	LastChild  *Node
	Previous   *Node
	Next       *Node

	HeadingLevel int
	Setext       bool
	List         *ListData
	Code         *CodeBlockData
	Destination  string
	Title        string
	Checked      bool
	// Align is set on table cells.
	Align CellAlign

	Attributes map[string]string
}

// NewNode returns a detached node of the given kind.
func NewNode(t NodeType) *Node {
	return &Node{Type: t}
}

// NewText returns a Text node holding s.
func NewText(s string) *Node {
	return &Node{Type: NodeText, Tokens: []byte(s)}
}

// Literal returns the node's own payload as a string.
func (n *Node) Literal() string {
	return string(n.Tokens)
}

// Text concatenates the literal text of n and all of its descendants.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	Walk(n, func(c *Node, entering bool) WalkStatus {
		if !entering {
			return WalkContinue
		}
		switch c.Type {
		case NodeText, NodeCodeSpan, NodeCodeBlock, NodeHTMLBlock, NodeInlineHTML:
			b.Write(c.Tokens)
		case NodeSoftBreak, NodeHardBreak:
			b.WriteByte('\n')
		}
		return WalkContinue
	})
	return b.String()
}

// Children returns a slice view of the direct children.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.Next {
		out = append(out, c)
	}
	return out
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.Next {
		count++
	}
	return count
}

// IsLeaf reports whether the node's kind is a leaf kind.
func (n *Node) IsLeaf() bool {
	return n.Type.IsLeaf()
}

// SetAttribute stores a generic attribute on the node.
func (n *Node) SetAttribute(key, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[key] = value
}

// Attribute returns a generic attribute value.
func (n *Node) Attribute(key string) (string, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}

// Unlink detaches n from its parent and siblings.
func (n *Node) Unlink() {
	if n.Previous != nil {
		n.Previous.Next = n.Next
	} else if n.Parent != nil {
		n.Parent.FirstChild = n.Next
	}
	if n.Next != nil {
		n.Next.Previous = n.Previous
	} else if n.Parent != nil {
		n.Parent.LastChild = n.Previous
	}
	n.Parent = nil
	n.Next = nil
	n.Previous = nil
}

// AppendChild adds child as the last child of n.
func (n *Node) AppendChild(child *Node) {
	child.Unlink()
	child.Parent = n
	if n.LastChild != nil {
		n.LastChild.Next = child
		child.Previous = n.LastChild
		n.LastChild = child
		return
	}
	n.FirstChild = child
	n.LastChild = child
}

// PrependChild adds child as the first child of n.
func (n *Node) PrependChild(child *Node) {
	child.Unlink()
	child.Parent = n
	if n.FirstChild != nil {
		n.FirstChild.Previous = child
		child.Next = n.FirstChild
		n.FirstChild = child
		return
	}
	n.FirstChild = child
	n.LastChild = child
}

// InsertAfter places sibling directly after n.
func (n *Node) InsertAfter(sibling *Node) {
	sibling.Unlink()
	sibling.Next = n.Next
	if sibling.Next != nil {
		sibling.Next.Previous = sibling
	}
	sibling.Previous = n
	n.Next = sibling
	sibling.Parent = n.Parent
	if sibling.Next == nil && sibling.Parent != nil {
		sibling.Parent.LastChild = sibling
	}
}

// InsertBefore places sibling directly before n.
func (n *Node) InsertBefore(sibling *Node) {
	sibling.Unlink()
	sibling.Previous = n.Previous
	if sibling.Previous != nil {
		sibling.Previous.Next = sibling
	}
	sibling.Next = n
	n.Previous = sibling
	sibling.Parent = n.Parent
	if sibling.Previous == nil && sibling.Parent != nil {
		sibling.Parent.FirstChild = sibling
	}
}
