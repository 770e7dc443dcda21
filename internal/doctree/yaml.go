package doctree

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// documentFile is the on-disk YAML shape for a document fixture.
//
// Example:
//
//	version: 1
//	doc:
//	  - kind: paragraph
//	    text: "intro"
//	  - kind: code_block
//	    language: python
//	    text: "print(1)"
type documentFile struct {
	Version int64      `yaml:"version"`
	Doc     []nodeFile `yaml:"doc"`
}

// nodeFile is the YAML shape for one node. Language is a convenience alias
// for the language attribute; explicit attrs win on conflict.
type nodeFile struct {
	Kind     string            `yaml:"kind"`
	Text     string            `yaml:"text,omitempty"`
	Language string            `yaml:"language,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Children []nodeFile        `yaml:"children,omitempty"`
}

// UnmarshalDocument parses a YAML document fixture into a Tree.
//
// A missing version defaults to 1. The top-level doc list becomes the
// children of an implicit "doc" root node.
func UnmarshalDocument(data []byte) (*Tree, error) {
	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if file.Version == 0 {
		file.Version = 1
	}

	root := &Node{Kind: "doc"}
	for i, nf := range file.Doc {
		child, err := buildNode(nf)
		if err != nil {
			return nil, fmt.Errorf("doc[%d]: %w", i, err)
		}
		root.Children = append(root.Children, child)
	}
	return NewTree(file.Version, root), nil
}

func buildNode(nf nodeFile) (*Node, error) {
	if nf.Kind == "" {
		return nil, fmt.Errorf("node missing kind")
	}
	n := &Node{Kind: nf.Kind, Text: nf.Text}
	if nf.Language != "" || len(nf.Attrs) > 0 {
		n.Attrs = make(map[string]string, len(nf.Attrs)+1)
		if nf.Language != "" {
			n.Attrs[AttrLanguage] = nf.Language
		}
		for k, v := range nf.Attrs {
			n.Attrs[k] = v
		}
	}
	for i, cf := range nf.Children {
		child, err := buildNode(cf)
		if err != nil {
			return nil, fmt.Errorf("children[%d]: %w", i, err)
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}
