package host

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownAddress is returned when an address does not belong to a live allocation made by
	// the runtime
	ErrUnknownAddress = errors.New("address was not allocated by this runtime")
	// ErrWrongPool is returned when memory is released through a different entry point than the
	// one that allocated it
	ErrWrongPool = errors.New("memory released through the wrong free call")
	// ErrImportOutstanding is returned when host memory is freed while it is still imported
	ErrImportOutstanding = errors.New("memory is still imported")
	// ErrImportUnsupported is returned from ImportHostPointer when host pointer import is disabled
	ErrImportUnsupported = errors.New("host pointer import is not supported")
	// ErrSharedUnsupported is returned when shared memory is requested but disabled
	ErrSharedUnsupported = errors.New("shared allocations are not supported")
	// ErrUnknownDevice is returned when runtime-managed memory is requested for a device the topology
	// does not report
	ErrUnknownDevice = errors.New("device is not part of the topology")
	// ErrDestroyed is returned by every call made after Destroy
	ErrDestroyed = errors.New("runtime was destroyed")
	// ErrLeakedMemory is returned from CheckLeaks and Destroy when allocations or imports are
	// still outstanding
	ErrLeakedMemory = errors.New("allocations are still outstanding")
)
