package doctree

import "unicode/utf8"

// AttrLanguage is the attribute key carrying a code block's language tag.
const AttrLanguage = "language"

// Node is a single node in a document tree.
//
// A Node is built mutable (fill in Kind, Attrs, Text, Children) and becomes
// logically immutable once handed to NewTree, which deep-copies it and
// assigns positions. Reading Pos or Size on a node that was never placed in
// a tree returns zero values.
type Node struct {
	// Kind identifies the node type, e.g. "doc", "paragraph", "code_block".
	Kind string

	// Attrs holds node attributes. Code blocks carry their language tag
	// under AttrLanguage. May be nil.
	Attrs map[string]string

	// Text is the node's own text content. For container nodes with
	// Children, Text is empty and content comes from the children.
	Text string

	// Children are the node's child nodes, in document order.
	Children []*Node

	pos  int
	size int
}

// Pos returns the node's offset into the linearized view of its tree.
func (n *Node) Pos() int { return n.pos }

// Size returns the node's extent in the linearized view: one open token,
// the content size (rune length of text, or the summed size of children),
// and one close token.
func (n *Node) Size() int { return n.size }

// Attr returns the named attribute and whether it was present.
// Safe on nodes with a nil attribute map.
func (n *Node) Attr(name string) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// Content returns the node's text content: its own Text if set, otherwise
// the concatenated content of its children.
func (n *Node) Content() string {
	if n.Text != "" || len(n.Children) == 0 {
		return n.Text
	}
	var out string
	for _, c := range n.Children {
		out += c.Content()
	}
	return out
}

// contentSize is the linearized size of the node's content, excluding the
// node's own open/close tokens.
func (n *Node) contentSize() int {
	if len(n.Children) == 0 {
		return utf8.RuneCountInString(n.Text)
	}
	var sum int
	for _, c := range n.Children {
		sum += c.size
	}
	return sum
}

// clone deep-copies a node so published trees cannot be mutated through
// retained references.
func (n *Node) clone() *Node {
	cp := &Node{
		Kind: n.Kind,
		Text: n.Text,
	}
	if n.Attrs != nil {
		cp.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			cp.Attrs[k] = v
		}
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.clone()
		}
	}
	return cp
}
