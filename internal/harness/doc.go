// Package harness runs edit-script scenarios against the sync engine and
// records a trace of its lifecycle decisions.
//
// A scenario is a YAML file: an initial document, a list of steps (remap,
// replace, render, destroy), and optional assertions on the final state.
// Running a scenario yields a Result whose trace captures, per step, which
// path the engine took (rebuild vs remap), how many containers were created
// and destroyed, and what each render pass touched.
//
// Traces serialize to deterministic JSON and are compared against golden
// files with goldie; goldens are the source of truth for engine behavior
// over a whole edit script, complementing the unit tests' single-step
// properties.
package harness
