package doctree

// Tree is one immutable version of a document.
//
// A Tree is produced wholesale on every edit; the engine never mutates one
// in place. Version numbers are strictly increasing per editor view and are
// used to tag derived overlays so stale positions can be detected.
type Tree struct {
	version int64
	root    *Node
}

// NewTree builds an immutable tree from a root node.
//
// The root is deep-copied, then every node is assigned its position in the
// linearized view: the root starts at 0, each node occupies an open token,
// its content, and a close token. Retained references to the input node are
// therefore harmless.
func NewTree(version int64, root *Node) *Tree {
	cp := root.clone()
	layout(cp, 0)
	return &Tree{version: version, root: cp}
}

// layout assigns pos and size to n and its descendants, with n's open token
// at the given offset. Returns n's size.
func layout(n *Node, pos int) int {
	n.pos = pos
	child := pos + 1
	for _, c := range n.Children {
		child += layout(c, child)
	}
	n.size = 2 + n.contentSize()
	return n.size
}

// Version returns the tree's version number.
func (t *Tree) Version() int64 { return t.version }

// Root returns the root node. Callers must treat the returned node and its
// descendants as read-only.
func (t *Tree) Root() *Node { return t.root }

// Walk visits every node depth-first in document order. The visit function
// returns whether to descend into the node's children.
func (t *Tree) Walk(visit func(n *Node) bool) {
	if t == nil || t.root == nil {
		return
	}
	walk(t.root, visit)
}

func walk(n *Node, visit func(n *Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		walk(c, visit)
	}
}
