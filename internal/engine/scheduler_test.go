package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runcell/runcell/internal/overlay"
)

// queueHost queues scheduled ticks for manual firing.
type queueHost struct {
	ticks []func()
}

func (h *queueHost) ScheduleTick(fn func()) {
	h.ticks = append(h.ticks, fn)
}

func (h *queueHost) CreateContainer(anchor int, p overlay.Payload) (Container, error) {
	return NewRunnerContainer(p), nil
}

func (h *queueHost) fire() bool {
	if len(h.ticks) == 0 {
		return false
	}
	fn := h.ticks[0]
	h.ticks = h.ticks[1:]
	fn()
	return true
}

func TestRenderScheduler_ArmsOneTask(t *testing.T) {
	var s renderScheduler
	host := &queueHost{}
	var fired int

	s.schedule(host, func() { fired++ })
	assert.True(t, s.isPending())
	require.Len(t, host.ticks, 1)

	host.fire()
	assert.Equal(t, 1, fired)
	assert.False(t, s.isPending())
}

func TestRenderScheduler_ReentrantSchedulingCollapses(t *testing.T) {
	var s renderScheduler
	host := &queueHost{}
	var fired int

	s.schedule(host, func() { fired++ })
	s.schedule(host, func() { fired++ })
	s.schedule(host, func() { fired++ })

	assert.Len(t, host.ticks, 1, "re-entrant scheduling collapses to one pending task")
	host.fire()
	assert.Equal(t, 1, fired)
}

func TestRenderScheduler_RearmsAfterFire(t *testing.T) {
	var s renderScheduler
	host := &queueHost{}
	var fired int

	s.schedule(host, func() { fired++ })
	host.fire()
	s.schedule(host, func() { fired++ })
	host.fire()

	assert.Equal(t, 2, fired)
}
