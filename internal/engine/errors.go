package engine

import (
	"errors"
	"fmt"
)

// ErrEngineDestroyed is returned by operations on an engine after Destroy.
var ErrEngineDestroyed = errors.New("engine destroyed")

// ErrContainerDetached is returned when rendering a container that has been
// unmounted from the view.
var ErrContainerDetached = errors.New("container detached")

// ContainerOp identifies the container lifecycle operation that failed.
type ContainerOp string

const (
	// OpCreate is container creation during reconciliation.
	OpCreate ContainerOp = "create"
	// OpUnmount is container teardown during reconciliation or Destroy.
	OpUnmount ContainerOp = "unmount"
	// OpRender is container hydration during a render pass.
	OpRender ContainerOp = "render"
)

// ContainerError wraps a failure of a single container operation with the
// anchor position it occurred at.
//
// Teardown is fault-isolated per container: one failing unmount does not
// abort reconciliation of the remaining positions. Callers receive all
// per-container failures joined into one error.
type ContainerError struct {
	Anchor int
	Op     ContainerOp
	Err    error
}

// Error implements the error interface.
func (e *ContainerError) Error() string {
	return fmt.Sprintf("container %s at anchor %d: %v", e.Op, e.Anchor, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContainerError) Unwrap() error {
	return e.Err
}

// IsContainerError reports whether err (or anything it wraps) is a
// ContainerError for the given operation.
func IsContainerError(err error, op ContainerOp) bool {
	var ce *ContainerError
	if errors.As(err, &ce) {
		return ce.Op == op
	}
	return false
}
