package doctree

// PosMap projects a position valid in one tree version to the corresponding
// position in the next. Map returns ok=false when the content at the old
// position was deleted, in which case the position must be discarded rather
// than used against the new tree.
type PosMap interface {
	Map(pos int) (int, bool)
}

// IdentityMap maps every position to itself. Used by transactions that do
// not move content (selection changes, attribute-only metadata updates).
type IdentityMap struct{}

// Map implements PosMap.
func (IdentityMap) Map(pos int) (int, bool) { return pos, true }

// InsertMap describes an insertion of Len positions at At. Positions at or
// after the insertion point shift right; positions before it are unchanged.
type InsertMap struct {
	At  int
	Len int
}

// Map implements PosMap.
func (m InsertMap) Map(pos int) (int, bool) {
	if pos < m.At {
		return pos, true
	}
	return pos + m.Len, true
}

// DeleteMap describes the removal of the half-open range [From, To).
// Positions inside the range are invalidated; positions after it shift left.
type DeleteMap struct {
	From int
	To   int
}

// Map implements PosMap.
func (m DeleteMap) Map(pos int) (int, bool) {
	switch {
	case pos < m.From:
		return pos, true
	case pos < m.To:
		return 0, false
	default:
		return pos - (m.To - m.From), true
	}
}

// ComposedMap applies a sequence of maps in order. Invalidation at any step
// invalidates the whole projection.
type ComposedMap []PosMap

// Map implements PosMap.
func (m ComposedMap) Map(pos int) (int, bool) {
	for _, step := range m {
		var ok bool
		pos, ok = step.Map(pos)
		if !ok {
			return 0, false
		}
	}
	return pos, true
}

// Transaction describes the transition from one tree version to the next.
//
// DocChanged reports whether document content changed. When false, positions
// derived from Before remain semantically valid after projection through
// Mapping and consumers may skip rescanning entirely.
type Transaction struct {
	Before *Tree
	After  *Tree

	// DocChanged is true when document content changed between Before and
	// After. A pure selection movement or no-op transaction sets it false.
	DocChanged bool

	// Mapping projects positions from Before to After. A nil Mapping is
	// treated as the identity map.
	Mapping PosMap
}

// Map projects a position from the transaction's old tree to its new tree.
func (tx *Transaction) Map(pos int) (int, bool) {
	if tx.Mapping == nil {
		return pos, true
	}
	return tx.Mapping.Map(pos)
}
