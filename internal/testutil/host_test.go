package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runcell/runcell/internal/overlay"
)

func TestTickHost_FiresInOrder(t *testing.T) {
	h := NewTickHost()
	var order []int

	h.ScheduleTick(func() { order = append(order, 1) })
	h.ScheduleTick(func() { order = append(order, 2) })

	assert.Equal(t, 2, h.PendingTicks())
	assert.Equal(t, 2, h.FireAll())
	assert.Equal(t, []int{1, 2}, order)
	assert.False(t, h.FireTick(), "no ticks left")
}

func TestTickHost_RecordsCreations(t *testing.T) {
	h := NewTickHost()

	_, err := h.CreateContainer(25, overlay.Payload{Language: "py"})
	require.NoError(t, err)
	_, err = h.CreateContainer(54, overlay.Payload{Language: "python"})
	require.NoError(t, err)

	assert.Equal(t, []int{25, 54}, h.CreatedAnchors())
}

func TestTickHost_FailCreateAt(t *testing.T) {
	h := NewTickHost()
	boom := errors.New("boom")
	h.FailCreateAt(25, boom)

	_, err := h.CreateContainer(25, overlay.Payload{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, h.CreatedAnchors(), "failed creation is not recorded")
}

func TestTickHost_FailUnmountAt(t *testing.T) {
	h := NewTickHost()
	boom := errors.New("stuck")
	h.FailUnmountAt(25, boom)

	ctr, err := h.CreateContainer(25, overlay.Payload{})
	require.NoError(t, err)

	assert.ErrorIs(t, ctr.Unmount(), boom)
	assert.False(t, ctr.Connected(), "container still detaches despite the error")
}
