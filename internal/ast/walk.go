package ast

// WalkStatus is the directive a visitor returns to steer a traversal.
type WalkStatus int

const (
	// WalkStop aborts the whole traversal.
	WalkStop WalkStatus = iota
	// WalkSkipChildren skips the descendants of the current node.
	WalkSkipChildren
	// WalkContinue proceeds normally.
	WalkContinue
)

func (s WalkStatus) String() string {
	switch s {
	case WalkStop:
		return "stop"
	case WalkSkipChildren:
		return "skip_children"
	case WalkContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// Visitor is called on entry and exit of every node. Leaf kinds are visited
// on entry and exit as well; callers that care test entering.
type Visitor func(n *Node, entering bool) WalkStatus

// Walk traverses the tree rooted at n in pre-order. It reports false when a
// visitor returned WalkStop.
func Walk(n *Node, visit Visitor) bool {
	if n == nil {
		return true
	}
	status := visit(n, true)
	if status == WalkStop {
		return false
	}
	if status != WalkSkipChildren {
		for c := n.FirstChild; c != nil; {
			next := c.Next
			if !Walk(c, visit) {
				return false
			}
			c = next
		}
	}
	return visit(n, false) != WalkStop
}
