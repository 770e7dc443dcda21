// Package engine implements the runcell widget synchronization engine.
//
// The engine is the stateful core of runcell: it owns the container cache,
// decides between the rebuild and remap paths on every transaction, and
// defers widget hydration to the next UI tick.
//
// ARCHITECTURE:
//
// Single-threaded cooperative model:
// Tree updates, overlay computation, and cache reconciliation all execute
// synchronously within the handling of one transaction. One goroutine (the
// editor view's update loop) drives Init/Apply/Destroy. This ensures:
//   - No concurrent mutation of the container cache
//   - Deterministic create/destroy ordering
//   - Simple reasoning about which overlay a render reflects
//
// Transaction flow:
//  1. Apply() inspects the transaction's DocChanged flag
//  2. Unchanged content: existing anchors projected through the position
//     map, cache keys re-aligned, no containers created or destroyed
//  3. Changed content: full rescan, rebuild overlay, reconcile cache
//  4. Either way, one render task is scheduled for the next UI tick
//
// The deferred render task reads the LATEST overlay at fire time, never a
// snapshot captured at schedule time. Multiple transactions landing before
// the tick fires coalesce into a single render pass reflecting only the
// final state. A connectivity guard skips containers that were destroyed
// between scheduling and firing.
//
// INVARIANTS:
//   - At most one container per anchor position
//   - A container is destroyed iff its anchor leaves the active set
//   - After reconcile, cache key set == active anchor set exactly
//   - The overlay is derivable purely from the tree; the cache is the only
//     state that persists across tree versions
//
// The engine instance is owned by exactly one editor view and its lifetime
// matches that view. There is no package-level state.
package engine
