// Package doctree provides the document tree types the sync engine operates
// on: immutable versioned trees, nodes with linearized positions, and
// transactions carrying position maps between tree versions.
//
// This package contains type definitions and pure functions only. All other
// internal packages import doctree; doctree imports nothing internal. This
// keeps it the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Trees are never mutated in place. Every edit produces a new Tree with
//     a higher version. NewTree deep-copies its input so no caller can alias
//     into a published tree.
//   - Positions are offsets into a linearized view of the tree. An element
//     node occupies [Pos, Pos+Size) where Size counts an open token, the
//     node's content, and a close token. Positions are only meaningful
//     relative to the tree version that assigned them.
//   - A position from an old tree must be projected through a Transaction's
//     PosMap (or discarded) before use against the new tree.
package doctree
