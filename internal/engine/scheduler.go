package engine

import "sync"

// renderScheduler collapses re-entrant render scheduling into at most one
// pending deferred task.
//
// Hydration is never performed synchronously with transaction application.
// After an overlay is finalized, schedule() arms a single task on the
// host's next UI tick. Arming while a task is already pending is a no-op:
// the pending task will read the latest overlay when it fires, so every
// transaction that lands before the tick is covered by the one pass. This
// is the implicit debounce the engine relies on.
//
// A scheduled task has no identity to cancel. Cancellation is implicit: the
// fire callback no-ops per descriptor whose container was destroyed before
// the tick, and no-ops entirely once the engine is destroyed.
type renderScheduler struct {
	mu      sync.Mutex
	pending bool
}

// schedule arms one deferred invocation of fire on the host's next tick.
// Collapses to the already-pending task if one is armed.
func (s *renderScheduler) schedule(host Host, fire func()) {
	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return
	}
	s.pending = true
	s.mu.Unlock()

	host.ScheduleTick(func() {
		s.mu.Lock()
		s.pending = false
		s.mu.Unlock()
		fire()
	})
}

// isPending reports whether a task is armed. Used for testing.
func (s *renderScheduler) isPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
