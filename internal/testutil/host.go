// Package testutil provides deterministic test doubles for the engine's
// host-view surface: a manually-fired tick scheduler and containers with
// injectable failures.
package testutil

import (
	"sync"

	"github.com/runcell/runcell/internal/engine"
	"github.com/runcell/runcell/internal/overlay"
)

// TickHost is a deterministic engine.Host.
//
// Scheduled ticks are queued instead of deferred to a real UI frame; tests
// fire them explicitly with FireTick. Container creations are recorded in
// order, and individual anchors can be armed to fail creation or unmount.
//
// Thread-safety: all methods are safe for concurrent use, though engine
// tests drive it from one goroutine.
type TickHost struct {
	mu            sync.Mutex
	ticks         []func()
	created       []int
	failCreateAt  map[int]error
	failUnmountAt map[int]error
}

// NewTickHost creates an empty TickHost.
func NewTickHost() *TickHost {
	return &TickHost{
		failCreateAt:  make(map[int]error),
		failUnmountAt: make(map[int]error),
	}
}

// ScheduleTick implements engine.Host by queueing fn.
func (h *TickHost) ScheduleTick(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ticks = append(h.ticks, fn)
}

// CreateContainer implements engine.Host. It mounts a RunnerContainer,
// wrapped with an unmount failure if the anchor was armed with
// FailUnmountAt.
func (h *TickHost) CreateContainer(anchor int, p overlay.Payload) (engine.Container, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err, ok := h.failCreateAt[anchor]; ok {
		return nil, err
	}
	h.created = append(h.created, anchor)

	ctr := engine.NewRunnerContainer(p)
	if err, ok := h.failUnmountAt[anchor]; ok {
		return &failingContainer{Container: ctr, unmountErr: err}, nil
	}
	return ctr, nil
}

// FireTick runs the oldest queued tick. Returns false if none is queued.
func (h *TickHost) FireTick() bool {
	h.mu.Lock()
	if len(h.ticks) == 0 {
		h.mu.Unlock()
		return false
	}
	fn := h.ticks[0]
	h.ticks = h.ticks[1:]
	h.mu.Unlock()

	fn()
	return true
}

// FireAll runs every queued tick in order and returns how many fired.
func (h *TickHost) FireAll() int {
	var n int
	for h.FireTick() {
		n++
	}
	return n
}

// PendingTicks returns the number of queued ticks.
func (h *TickHost) PendingTicks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ticks)
}

// CreatedAnchors returns the anchors passed to CreateContainer, in call
// order.
func (h *TickHost) CreatedAnchors() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int, len(h.created))
	copy(out, h.created)
	return out
}

// FailCreateAt arms creation at an anchor to fail with err.
func (h *TickHost) FailCreateAt(anchor int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failCreateAt[anchor] = err
}

// FailUnmountAt arms containers created at an anchor to fail unmounting
// with err.
func (h *TickHost) FailUnmountAt(anchor int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failUnmountAt[anchor] = err
}

// failingContainer wraps a container with an injected unmount failure.
// The underlying container still detaches so the view is not left with a
// half-mounted widget.
type failingContainer struct {
	engine.Container
	unmountErr error
}

func (c *failingContainer) Unmount() error {
	_ = c.Container.Unmount()
	return c.unmountErr
}
