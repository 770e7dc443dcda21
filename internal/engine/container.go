package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/runcell/runcell/internal/overlay"
)

// Container is a mutable, long-lived handle backing one rendered widget.
//
// Containers live outside the document tree in the engine's cache; their
// lifetime spans multiple tree versions. They never reference tree nodes
// directly, only the payload snapshot passed at creation and render time.
type Container interface {
	// ID identifies the container instance. Stable for the container's
	// lifetime; used to verify identity preservation across edits.
	ID() string

	// Connected reports whether the container is still attached to the
	// live view. Render passes skip disconnected containers.
	Connected() bool

	// Render updates the container's displayed content from a payload.
	Render(p overlay.Payload) error

	// Unmount detaches the container and releases its resources. After
	// Unmount, Connected reports false.
	Unmount() error
}

// Host abstracts the editor view the engine is embedded in.
//
// The engine consumes exactly two things from its host: a way to defer work
// to the next UI tick, and a factory for widget containers.
type Host interface {
	// ScheduleTick invokes fn on the next UI tick. The engine schedules at
	// most one pending task at a time, so hosts need not coalesce.
	ScheduleTick(fn func())

	// CreateContainer mounts a new widget container anchored at the given
	// position with an initial payload snapshot.
	CreateContainer(anchor int, p overlay.Payload) (Container, error)
}

// RunnerContainer is the built-in in-memory Container for code-runner
// widgets. Hosts without their own widget toolkit (the CLI, the test
// harness) mount these.
//
// The running flag models in-widget interactive state: it belongs to the
// container, not the overlay, and must survive reconciliation as long as
// the container's anchor stays active.
type RunnerContainer struct {
	id string

	mu        sync.Mutex
	payload   overlay.Payload
	connected bool
	running   bool
	renders   int
}

// NewRunnerContainer mounts a runner container with an initial payload.
func NewRunnerContainer(p overlay.Payload) *RunnerContainer {
	return &RunnerContainer{
		id:        uuid.NewString(),
		payload:   p,
		connected: true,
	}
}

// ID implements Container.
func (c *RunnerContainer) ID() string { return c.id }

// Connected implements Container.
func (c *RunnerContainer) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Render implements Container. Rendering a disconnected container is a
// caller bug; the engine's connectivity guard prevents it.
func (c *RunnerContainer) Render(p overlay.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return ErrContainerDetached
	}
	c.payload = p
	c.renders++
	return nil
}

// Unmount implements Container. Idempotent.
func (c *RunnerContainer) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.running = false
	return nil
}

// Payload returns the most recently rendered payload snapshot.
func (c *RunnerContainer) Payload() overlay.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

// SetRunning flips the widget's "currently running" state.
func (c *RunnerContainer) SetRunning(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = running
}

// Running reports the widget's "currently running" state.
func (c *RunnerContainer) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Renders returns how many times the container has been hydrated.
func (c *RunnerContainer) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}
