package harness

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/runcell/runcell/internal/doctree"
	"github.com/runcell/runcell/internal/engine"
	"github.com/runcell/runcell/internal/testutil"
)

// Trace event types.
const (
	EventInit    = "init"
	EventRemap   = "remap"
	EventRebuild = "rebuild"
	EventRender  = "render"
	EventDestroy = "destroy"
)

// TraceEvent records one engine decision during a scenario run.
// Zero-valued fields are omitted from the serialized trace.
type TraceEvent struct {
	Type      string `json:"type"`
	Version   int64  `json:"version,omitempty"`
	Widgets   int    `json:"widgets,omitempty"`
	Anchors   []int  `json:"anchors,omitempty"`
	Created   int    `json:"created,omitempty"`
	Destroyed int    `json:"destroyed,omitempty"`
	Rendered  int    `json:"rendered,omitempty"`
	Skipped   int    `json:"skipped,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	ScenarioName string       `json:"scenario"`
	Trace        []TraceEvent `json:"trace"`

	// FinalWidgets is the latest overlay's descriptor count (0 after
	// destroy).
	FinalWidgets int `json:"-"`

	// FinalAnchors is the cached anchor set after the last step.
	FinalAnchors []int `json:"-"`
}

// Run executes a scenario against a fresh engine with a deterministic tick
// host, then checks the scenario's assertions.
func Run(s *Scenario) (*Result, error) {
	host := testutil.NewTickHost()
	e := engine.New(host)
	defer func() { _ = e.Destroy() }()

	version := int64(1)
	tree, err := buildDocument(version, &s.Document)
	if err != nil {
		return nil, err
	}

	result := &Result{ScenarioName: s.Name}
	prev := e.Stats()

	o, err := e.Init(tree)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	stats := e.Stats()
	result.Trace = append(result.Trace, TraceEvent{
		Type:    EventInit,
		Version: version,
		Widgets: o.Len(),
		Anchors: e.CachedAnchors(),
		Created: stats.Created - prev.Created,
	})
	prev = stats

	for i, step := range s.Steps {
		switch {
		case step.Remap != nil:
			version++
			// Content did not change; the engine only reads the After
			// tree's version on this path.
			after := doctree.NewTree(version, tree.Root())
			tx := &doctree.Transaction{
				Before:     tree,
				After:      after,
				DocChanged: false,
				Mapping:    step.Remap.mapping(),
			}
			o, err = e.Apply(tx, o)
			if err != nil {
				return nil, fmt.Errorf("step %d (remap): %w", i, err)
			}
			tree = after
			result.Trace = append(result.Trace, TraceEvent{
				Type:    EventRemap,
				Version: version,
				Widgets: o.Len(),
				Anchors: e.CachedAnchors(),
			})

		case step.Replace != nil:
			version++
			after, err := buildDocument(version, &step.Replace.Document)
			if err != nil {
				return nil, fmt.Errorf("step %d (replace): %w", i, err)
			}
			tx := &doctree.Transaction{
				Before:     tree,
				After:      after,
				DocChanged: true,
			}
			o, err = e.Apply(tx, o)
			if err != nil {
				return nil, fmt.Errorf("step %d (replace): %w", i, err)
			}
			tree = after
			stats = e.Stats()
			result.Trace = append(result.Trace, TraceEvent{
				Type:      EventRebuild,
				Version:   version,
				Widgets:   o.Len(),
				Anchors:   e.CachedAnchors(),
				Created:   stats.Created - prev.Created,
				Destroyed: stats.Destroyed - prev.Destroyed,
			})
			prev = stats

		case step.Render != nil:
			host.FireAll()
			stats = e.Stats()
			result.Trace = append(result.Trace, TraceEvent{
				Type:     EventRender,
				Rendered: stats.RenderedWidgets - prev.RenderedWidgets,
				Skipped:  stats.SkippedDetached - prev.SkippedDetached,
			})
			prev = stats

		case step.Destroy != nil:
			if err := e.Destroy(); err != nil {
				return nil, fmt.Errorf("step %d (destroy): %w", i, err)
			}
			stats = e.Stats()
			result.Trace = append(result.Trace, TraceEvent{
				Type:      EventDestroy,
				Destroyed: stats.Destroyed - prev.Destroyed,
			})
			prev = stats
		}
	}

	if latest := e.Overlay(); latest != nil {
		result.FinalWidgets = latest.Len()
	}
	result.FinalAnchors = e.CachedAnchors()

	if err := checkAssertions(s, result); err != nil {
		return nil, err
	}
	return result, nil
}

// mapping builds the step's position map. Insert applies before delete when
// both are present.
func (r *RemapStep) mapping() doctree.PosMap {
	var maps doctree.ComposedMap
	if r.InsertLen != 0 {
		maps = append(maps, doctree.InsertMap{At: r.InsertAt, Len: r.InsertLen})
	}
	if r.DeleteTo > r.DeleteFrom {
		maps = append(maps, doctree.DeleteMap{From: r.DeleteFrom, To: r.DeleteTo})
	}
	if len(maps) == 0 {
		return doctree.IdentityMap{}
	}
	return maps
}

// checkAssertions validates the scenario's final-state assertions.
func checkAssertions(s *Scenario, result *Result) error {
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertWidgets:
			if result.FinalWidgets != a.Count {
				return fmt.Errorf("assertion %d: expected %d widgets, got %d", i, a.Count, result.FinalWidgets)
			}
		case AssertAnchors:
			if !slices.Equal(result.FinalAnchors, a.Anchors) {
				return fmt.Errorf("assertion %d: expected anchors %v, got %v", i, a.Anchors, result.FinalAnchors)
			}
		}
	}
	return nil
}

// buildDocument wraps a scenario's node list in the doctree YAML document
// shape and parses it into a tree with the given version.
func buildDocument(version int64, nodes *yaml.Node) (*doctree.Tree, error) {
	raw, err := yaml.Marshal(struct {
		Version int64      `yaml:"version"`
		Doc     *yaml.Node `yaml:"doc"`
	}{Version: version, Doc: nodes})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	tree, err := doctree.UnmarshalDocument(raw)
	if err != nil {
		return nil, err
	}
	return tree, nil
}
