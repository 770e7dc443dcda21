package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one edit-script scenario.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Document is the initial document: a list of nodes in the same shape
	// the doctree YAML codec accepts.
	Document yaml.Node `yaml:"document"`

	// Steps is the edit script, applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final engine state after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one edit-script entry. Exactly one field must be set.
type Step struct {
	// Remap applies a content-preserving transaction (DocChanged=false)
	// whose position map is built from the step's offsets.
	Remap *RemapStep `yaml:"remap,omitempty"`

	// Replace applies a content-changing transaction whose After tree is
	// the given document.
	Replace *ReplaceStep `yaml:"replace,omitempty"`

	// Render fires every pending UI tick.
	Render *struct{} `yaml:"render,omitempty"`

	// Destroy tears the engine down.
	Destroy *struct{} `yaml:"destroy,omitempty"`
}

// RemapStep describes the position map of a content-preserving transaction.
// An insertion, a deletion, or both (applied insert-then-delete); all-zero
// offsets mean the identity map.
type RemapStep struct {
	InsertAt  int `yaml:"insert_at,omitempty"`
	InsertLen int `yaml:"insert_len,omitempty"`

	DeleteFrom int `yaml:"delete_from,omitempty"`
	DeleteTo   int `yaml:"delete_to,omitempty"`
}

// ReplaceStep carries the document state after a content change.
type ReplaceStep struct {
	Document yaml.Node `yaml:"document"`
}

// Assertion types.
const (
	// AssertWidgets checks the final overlay's descriptor count.
	AssertWidgets = "widgets"
	// AssertAnchors checks the final cached anchor positions.
	AssertAnchors = "anchors"
)

// Assertion validates final engine state.
type Assertion struct {
	Type    string `yaml:"type"`
	Count   int    `yaml:"count,omitempty"`
	Anchors []int  `yaml:"anchors,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks scenario well-formedness: a name, a document, and exactly
// one operation per step.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("missing name")
	}
	if s.Document.IsZero() {
		return fmt.Errorf("missing document")
	}
	for i, step := range s.Steps {
		var set int
		if step.Remap != nil {
			set++
		}
		if step.Replace != nil {
			set++
		}
		if step.Render != nil {
			set++
		}
		if step.Destroy != nil {
			set++
		}
		if set != 1 {
			return fmt.Errorf("step %d: exactly one of remap, replace, render, destroy must be set", i)
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertWidgets, AssertAnchors:
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}
	return nil
}
