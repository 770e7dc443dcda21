package engine

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/runcell/runcell/internal/doctree"
)

// containerCache is the anchor-position → container side table.
//
// The cache is the only state that persists across tree versions. It is
// exclusively owned and mutated by its engine; no external component may
// insert or remove entries directly.
type containerCache struct {
	containers map[int]Container
}

func newContainerCache() *containerCache {
	return &containerCache{containers: make(map[int]Container)}
}

// get returns the container at an anchor, if any.
func (c *containerCache) get(anchor int) (Container, bool) {
	ctr, ok := c.containers[anchor]
	return ctr, ok
}

// len returns the number of cached containers.
func (c *containerCache) len() int { return len(c.containers) }

// anchors returns the cached anchor positions in ascending order.
func (c *containerCache) anchors() []int {
	out := make([]int, 0, len(c.containers))
	for a := range c.containers {
		out = append(out, a)
	}
	sort.Ints(out)
	return out
}

// reconcileStats counts lifecycle operations performed by one reconcile.
type reconcileStats struct {
	created   int
	destroyed int
}

// reconcile diffs the active anchor set against the cache.
//
// Anchors in active but not cached get a new container from the factory.
// Cached anchors no longer active are unmounted and removed. Anchors in
// both keep their container untouched - identity preservation is what
// prevents visual flicker and loss of in-widget state across rebuilds.
//
// Postcondition: the cache key set equals the active set exactly (modulo
// positions whose factory call failed, which are reported in the error).
//
// Teardown is fault-isolated per container: a failing unmount is recorded
// and reconciliation of the remaining positions proceeds. The entry is
// removed from the cache either way - a container that failed to unmount
// cleanly must still not be resurrected by a later reconcile.
func (c *containerCache) reconcile(active map[int]struct{}, create func(anchor int) (Container, error)) (reconcileStats, error) {
	var stats reconcileStats
	var errs []error

	// Destroy pass first: walk in deterministic order so failures and logs
	// are reproducible.
	for _, anchor := range c.anchors() {
		if _, stillActive := active[anchor]; stillActive {
			continue
		}
		ctr := c.containers[anchor]
		delete(c.containers, anchor)
		stats.destroyed++
		if err := ctr.Unmount(); err != nil {
			errs = append(errs, &ContainerError{Anchor: anchor, Op: OpUnmount, Err: err})
			slog.Warn("container unmount failed",
				"anchor", anchor,
				"container_id", ctr.ID(),
				"error", err,
			)
		}
	}

	// Create pass.
	newAnchors := make([]int, 0, len(active))
	for anchor := range active {
		if _, exists := c.containers[anchor]; !exists {
			newAnchors = append(newAnchors, anchor)
		}
	}
	sort.Ints(newAnchors)
	for _, anchor := range newAnchors {
		ctr, err := create(anchor)
		if err != nil {
			errs = append(errs, &ContainerError{Anchor: anchor, Op: OpCreate, Err: err})
			continue
		}
		c.containers[anchor] = ctr
		stats.created++
	}

	return stats, errors.Join(errs...)
}

// rekey projects every cache key through a position map without creating or
// destroying containers. Used on the remap path, where document content did
// not change and the same containers stay valid under new positions.
//
// An anchor the map invalidates cannot occur on a content-preserving
// transaction; if one shows up anyway the entry is dropped and the orphaned
// container unmounted so the cache never holds an unreachable handle.
func (c *containerCache) rekey(m doctree.PosMap) {
	next := make(map[int]Container, len(c.containers))
	for _, anchor := range c.anchors() {
		ctr := c.containers[anchor]
		mapped, ok := m.Map(anchor)
		if !ok {
			slog.Warn("anchor invalidated on remap path, dropping container",
				"anchor", anchor,
				"container_id", ctr.ID(),
			)
			_ = ctr.Unmount()
			continue
		}
		next[mapped] = ctr
	}
	c.containers = next
}

// clear unmounts every container and empties the cache. Used on engine
// teardown. Per-container failures are joined, not short-circuited.
func (c *containerCache) clear() error {
	var errs []error
	for _, anchor := range c.anchors() {
		ctr := c.containers[anchor]
		if err := ctr.Unmount(); err != nil {
			errs = append(errs, &ContainerError{Anchor: anchor, Op: OpUnmount, Err: err})
		}
	}
	c.containers = make(map[int]Container)
	return errors.Join(errs...)
}
