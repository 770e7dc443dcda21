package engine

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/runcell/runcell/internal/doctree"
	"github.com/runcell/runcell/internal/overlay"
)

// Engine keeps the set of live widget containers consistent with the
// current document tree version.
//
// One Engine is owned by one editor view and lives exactly as long as it.
// All state is per-instance; two views never share a cache.
//
// Thread-safety model:
//   - Init/Apply/Destroy: driven by the view's update loop, one at a time
//   - Render: safe from the tick goroutine; internal state is mutex-guarded
//
// INVARIANTS:
//   - current always points at the overlay for the latest applied tree
//     version; the deferred render task reads it at fire time
//   - cache key set tracks the active anchor set (exactly, after every
//     rebuild reconcile; by rekeying, across remaps)
type Engine struct {
	host    Host
	scanner *overlay.Scanner

	mu        sync.Mutex
	current   *overlay.Overlay
	cache     *containerCache
	sched     renderScheduler
	destroyed bool
	stats     Stats
}

// Stats counts engine operations since creation. Used for testing and
// introspection; the harness derives its trace from deltas between steps.
type Stats struct {
	Rebuilds        int
	Remaps          int
	Created         int
	Destroyed       int
	RenderPasses    int
	RenderedWidgets int
	SkippedDetached int
}

// Option configures an Engine.
type Option func(*Engine)

// WithScanner overrides the block scanner (custom kind or language sets).
func WithScanner(s *overlay.Scanner) Option {
	return func(e *Engine) {
		e.scanner = s
	}
}

// New creates an Engine bound to a host view. The default scanner
// recognizes the standard code-block kinds and languages.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{
		host:    host,
		scanner: overlay.NewScanner(),
		cache:   newContainerCache(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Init computes the initial overlay for a tree, creates containers for
// every matched block, and schedules the first render pass.
func (e *Engine) Init(tree *doctree.Tree) (*overlay.Overlay, error) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return nil, ErrEngineDestroyed
	}

	next := overlay.Build(tree, e.scanner.Scan(tree))
	err := e.reconcileLocked(next)
	e.current = next
	e.stats.Rebuilds++
	e.mu.Unlock()

	slog.Debug("engine initialized",
		"version", tree.Version(),
		"widgets", next.Len(),
	)

	// Scheduled outside the lock: a host is allowed to fire the tick
	// synchronously, and the task body re-enters the engine.
	e.sched.schedule(e.host, e.renderTick)
	return next, err
}

// Apply transitions the engine from one tree version to the next.
//
// A transaction with no document-content change takes the remap path: the
// previous overlay's anchors are projected through the transaction's
// position map and the cache is rekeyed - same containers, no creates, no
// destroys, no scan. Any content change takes the rebuild path: full
// rescan, rebuild, reconcile. The binary choice is coarse on purpose; a
// scan is linear in document size and edits are small per keystroke.
//
// prev must be the overlay produced for the transaction's old tree
// version (invariant: positions are only valid against the version that
// produced them). A nil prev forces the rebuild path.
//
// Either way one render task is scheduled for the next UI tick.
func (e *Engine) Apply(tx *doctree.Transaction, prev *overlay.Overlay) (*overlay.Overlay, error) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return nil, ErrEngineDestroyed
	}

	var next *overlay.Overlay
	var err error

	if !tx.DocChanged && prev != nil {
		mapping := tx.Mapping
		if mapping == nil {
			mapping = doctree.IdentityMap{}
		}
		next = prev.Remap(tx.After.Version(), mapping)
		e.cache.rekey(mapping)
		e.stats.Remaps++

		slog.Debug("overlay remapped",
			"version", tx.After.Version(),
			"widgets", next.Len(),
		)
	} else {
		next = overlay.Build(tx.After, e.scanner.Scan(tx.After))
		err = e.reconcileLocked(next)
		e.stats.Rebuilds++

		slog.Debug("overlay rebuilt",
			"version", tx.After.Version(),
			"widgets", next.Len(),
		)
	}

	e.current = next
	e.mu.Unlock()

	e.sched.schedule(e.host, e.renderTick)
	return next, err
}

// reconcileLocked repairs the cache against an overlay's active set.
// Caller holds e.mu.
func (e *Engine) reconcileLocked(o *overlay.Overlay) error {
	payloads := make(map[int]overlay.Payload, o.Len())
	for _, d := range o.Descriptors() {
		payloads[d.Anchor] = d.Payload
	}

	stats, err := e.cache.reconcile(o.ActiveSet(), func(anchor int) (Container, error) {
		return e.host.CreateContainer(anchor, payloads[anchor])
	})
	e.stats.Created += stats.created
	e.stats.Destroyed += stats.destroyed
	return err
}

// renderTick is the deferred task body. It reads the latest overlay at
// fire time; errors have no caller to surface to and are logged.
func (e *Engine) renderTick() {
	if err := e.Render(); err != nil {
		if errors.Is(err, ErrEngineDestroyed) {
			return
		}
		slog.Error("deferred render failed", "error", err)
	}
}

// Render hydrates every currently-active container from the latest
// overlay's payloads. Idempotent and safe to call repeatedly.
//
// Descriptors whose container is missing or no longer connected are
// silently skipped - the connectivity guard against operating on
// torn-down containers.
func (e *Engine) Render() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return ErrEngineDestroyed
	}
	if e.current == nil {
		return nil
	}

	var errs []error
	e.stats.RenderPasses++
	for _, d := range e.current.Descriptors() {
		ctr, ok := e.cache.get(d.Anchor)
		if !ok || !ctr.Connected() {
			e.stats.SkippedDetached++
			slog.Debug("skipping detached container",
				"anchor", d.Anchor,
				"cached", ok,
			)
			continue
		}
		if err := ctr.Render(d.Payload); err != nil {
			errs = append(errs, &ContainerError{Anchor: d.Anchor, Op: OpRender, Err: err})
			continue
		}
		e.stats.RenderedWidgets++
	}
	return errors.Join(errs...)
}

// Destroy tears the engine down: every cached container is unmounted, the
// cache is cleared, and any pending render task becomes a no-op. No
// container handle or scheduled task outlives Destroy.
//
// Per-container teardown failures are collected and joined; teardown of
// the remaining containers always proceeds.
func (e *Engine) Destroy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return nil
	}
	e.destroyed = true
	e.current = nil

	destroyed := e.cache.len()
	err := e.cache.clear()
	e.stats.Destroyed += destroyed

	slog.Debug("engine destroyed", "containers", destroyed)
	return err
}

// Container returns the cached container at an anchor position, if any.
// Used for testing and by hosts wiring run actions to widgets.
func (e *Engine) Container(anchor int) (Container, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.get(anchor)
}

// CacheLen returns the number of live containers.
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.len()
}

// CachedAnchors returns the cached anchor positions in ascending order.
func (e *Engine) CachedAnchors() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.anchors()
}

// Overlay returns the latest overlay, or nil before Init.
func (e *Engine) Overlay() *overlay.Overlay {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Stats returns a snapshot of the engine's operation counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// RenderPending reports whether a deferred render task is armed.
// Used for testing.
func (e *Engine) RenderPending() bool {
	return e.sched.isPending()
}
