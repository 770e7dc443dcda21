package overlay

import "fmt"

// DescriptorKind is the closed set of widget kinds. New widget kinds extend
// this enum rather than relying on ad hoc payload shape-checking.
type DescriptorKind int

const (
	// KindCodeRunner is an interactive run-widget for an executable code block.
	KindCodeRunner DescriptorKind = iota + 1
)

// String returns the canonical name of the kind.
func (k DescriptorKind) String() string {
	switch k {
	case KindCodeRunner:
		return "code_runner"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its canonical name.
func (k DescriptorKind) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", k.String())), nil
}

// Side indicates on which side of the anchor position a widget is placed.
type Side int

const (
	// SideAfter places the widget immediately after the anchor position.
	SideAfter Side = iota + 1
)

// String returns the canonical name of the side.
func (s Side) String() string {
	switch s {
	case SideAfter:
		return "after"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalJSON encodes the side as its canonical name.
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// Payload is the data snapshot a widget renders from. Containers hold a
// payload copy, never a reference into the tree that produced it.
type Payload struct {
	Source   string `json:"source"`
	Language string `json:"language"`
}

// Descriptor is an immutable value stating "a widget must exist here".
type Descriptor struct {
	Kind    DescriptorKind `json:"kind"`
	Anchor  int            `json:"anchor"`
	Side    Side           `json:"side"`
	Payload Payload        `json:"payload"`
}
