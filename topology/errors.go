package topology

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrAmbiguousDevice is returned when a selection names more than one compute device where
	// exactly one is needed
	ErrAmbiguousDevice = errors.New("selection names more than one compute device")
	// ErrNoDevice is returned when a selection names no compute device where one is needed
	ErrNoDevice = errors.New("selection names no compute device")
	// ErrSubDeviceUnavailable is returned when a selection names a sub-device the root device
	// does not expose
	ErrSubDeviceUnavailable = errors.New("sub-device is not available")
	// ErrNoRootDevice is returned when the provider reports no root devices
	ErrNoRootDevice = errors.New("no root device is available")
	// ErrInvalidSelection is returned when a selection names locations that do not exist
	ErrInvalidSelection = errors.New("selection names unknown locations")
)

// Error reports a selection that could not be resolved to a concrete device
type Error struct {
	Selection Selection
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot resolve device selection %s: %v", e.Selection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
