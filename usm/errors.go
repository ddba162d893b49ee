package usm

import (
	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/topology"
)

var (
	// ErrAmbiguousDevice is returned when a runtime-managed allocation names more than one compute
	// device. The combination is invalid and should be skipped.
	ErrAmbiguousDevice = topology.ErrAmbiguousDevice
	// ErrNoTarget is returned when a runtime-managed allocation names neither the host nor a
	// device. The combination is invalid and should be skipped.
	ErrNoTarget = errors.New("allocation needs at least one storage location")
	// ErrImportFailure marks a failure to register host memory with the runtime. The iteration
	// that requested the allocation must be abandoned.
	ErrImportFailure = errors.New("failed to import host pointer")
	// ErrInvalidSize is returned for allocations of less than one byte
	ErrInvalidSize = errors.New("allocation size must be positive")
	// ErrPlacementMismatch is returned when a handle is released with a different placement than it
	// was allocated with
	ErrPlacementMismatch = errors.New("placement does not match the handle")
	// ErrAlreadyFreed is returned when a handle is released a second time
	ErrAlreadyFreed = errors.New("handle was already freed")
)
