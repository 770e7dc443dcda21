package overlay

import "github.com/runcell/runcell/internal/doctree"

// DefaultBlockKinds are the node kinds treated as executable code blocks.
var DefaultBlockKinds = []string{"code_block", "fenced_code"}

// DefaultLanguages is the recognized language set. Matching is exact and
// case-sensitive: "python" and "py" match, "Python" does not.
var DefaultLanguages = []string{"python", "py"}

// BlockMatch is a code block that satisfied the scanner's predicate.
type BlockMatch struct {
	// Pos is the block's position in the tree that produced the match.
	Pos int
	// Size is the block's linearized size.
	Size int
	// Language is the block's language attribute value.
	Language string
	// Source is the block's text content.
	Source string
}

// Anchor returns the position immediately after the block, where its widget
// is overlaid.
func (m BlockMatch) Anchor() int { return m.Pos + m.Size }

// Scanner finds executable code blocks in a document tree.
//
// Scan is a pure function of the tree: no state is read or written, and
// scanning the same tree twice yields identical, identically-ordered
// results. Cost is linear in tree size, which is acceptable because a scan
// only runs on the full-rebuild path.
type Scanner struct {
	kinds     map[string]struct{}
	languages map[string]struct{}
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithBlockKinds overrides the node kinds recognized as code blocks.
func WithBlockKinds(kinds ...string) ScannerOption {
	return func(s *Scanner) {
		s.kinds = toSet(kinds)
	}
}

// WithLanguages overrides the recognized language set.
func WithLanguages(languages ...string) ScannerOption {
	return func(s *Scanner) {
		s.languages = toSet(languages)
	}
}

// NewScanner creates a Scanner with the default kind and language sets,
// then applies options.
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		kinds:     toSet(DefaultBlockKinds),
		languages: toSet(DefaultLanguages),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan traverses the tree and returns all matching blocks in ascending
// position order.
//
// A block with no language attribute, or with a language outside the
// recognized set, is excluded. A tree whose schema has no block kinds at
// all simply yields no matches - absence is not an error.
func (s *Scanner) Scan(tree *doctree.Tree) []BlockMatch {
	var matches []BlockMatch
	tree.Walk(func(n *doctree.Node) bool {
		if _, isBlock := s.kinds[n.Kind]; !isBlock {
			return true
		}
		lang, ok := n.Attr(doctree.AttrLanguage)
		if !ok {
			return false
		}
		if _, recognized := s.languages[lang]; !recognized {
			return false
		}
		matches = append(matches, BlockMatch{
			Pos:      n.Pos(),
			Size:     n.Size(),
			Language: lang,
			Source:   n.Content(),
		})
		// Code blocks do not nest further code blocks.
		return false
	})
	return matches
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
