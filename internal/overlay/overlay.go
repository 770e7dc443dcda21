package overlay

import "github.com/runcell/runcell/internal/doctree"

// Overlay is the complete, immutable set of widget descriptors for one tree
// version. Descriptors are ordered ascending by anchor position.
type Overlay struct {
	version     int64
	descriptors []Descriptor
}

// Empty returns an overlay with no descriptors for the given tree version.
func Empty(version int64) *Overlay {
	return &Overlay{version: version}
}

// Build converts scanner matches into an Overlay for the tree that produced
// them. Each match becomes one code-runner descriptor anchored immediately
// after the block, side after, payload carrying the block's source and
// language. This is the canonical rebuild path and the only path that
// reflects arbitrary structural edits.
func Build(tree *doctree.Tree, matches []BlockMatch) *Overlay {
	o := &Overlay{version: tree.Version()}
	if len(matches) == 0 {
		return o
	}
	o.descriptors = make([]Descriptor, len(matches))
	for i, m := range matches {
		o.descriptors[i] = Descriptor{
			Kind:   KindCodeRunner,
			Anchor: m.Anchor(),
			Side:   SideAfter,
			Payload: Payload{
				Source:   m.Source,
				Language: m.Language,
			},
		}
	}
	return o
}

// Version returns the tree version this overlay was derived from (or last
// remapped to).
func (o *Overlay) Version() int64 { return o.version }

// Len returns the number of descriptors.
func (o *Overlay) Len() int { return len(o.descriptors) }

// Descriptors returns a copy of the descriptor list. The overlay itself is
// never exposed mutably.
func (o *Overlay) Descriptors() []Descriptor {
	if len(o.descriptors) == 0 {
		return nil
	}
	out := make([]Descriptor, len(o.descriptors))
	copy(out, o.descriptors)
	return out
}

// ActiveSet returns the set of anchor positions present in the overlay.
func (o *Overlay) ActiveSet() map[int]struct{} {
	set := make(map[int]struct{}, len(o.descriptors))
	for _, d := range o.descriptors {
		set[d.Anchor] = struct{}{}
	}
	return set
}

// Remap projects every descriptor anchor through a position map, producing
// a new Overlay tagged with the given tree version. Descriptors whose
// anchor was invalidated (content deleted) are dropped. Payloads are
// carried over unchanged: the remap path is only taken when document
// content did not change, so the snapshots remain accurate.
func (o *Overlay) Remap(version int64, m doctree.PosMap) *Overlay {
	next := &Overlay{version: version}
	if len(o.descriptors) == 0 {
		return next
	}
	next.descriptors = make([]Descriptor, 0, len(o.descriptors))
	for _, d := range o.descriptors {
		anchor, ok := m.Map(d.Anchor)
		if !ok {
			continue
		}
		d.Anchor = anchor
		next.descriptors = append(next.descriptors, d)
	}
	return next
}
