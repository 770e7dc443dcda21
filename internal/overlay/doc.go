// Package overlay computes the set of widget descriptors for one document
// tree version.
//
// The Scanner walks a tree and returns the ordered list of executable code
// blocks whose language tag is in the recognized set. Build converts those
// matches into an immutable Overlay: one position-anchored descriptor per
// block, carrying the payload a widget needs to render.
//
// An Overlay holds no state of its own - it is always derivable purely from
// the tree version that produced it. When a transaction carries no document
// content change, Remap projects an existing Overlay's anchors through the
// transaction's position map instead of rescanning.
package overlay
