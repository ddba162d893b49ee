package usm

import (
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
)

//go:generate mockgen -destination=mocks/runtime.go -package=mock_usm github.com/computebench/arsenal/usm DeviceRuntime,HostAllocator

// Capabilities describes what a DeviceRuntime can do. The Resolver snapshots it once at
// construction so the feasibility predicate never calls into the runtime.
type Capabilities struct {
	// HostPointerImport is true when ImportHostPointer can register plain heap memory
	HostPointerImport bool
	// SharedAllocations is true when the runtime can allocate memory coherent between host and device
	SharedAllocations bool
}

// DeviceRuntime is the compute runtime's side of the native allocation boundary. Addresses are
// opaque to the Resolver: for device-local memory they need not be dereferenceable from the host.
type DeviceRuntime interface {
	Capabilities() Capabilities

	// AllocRuntimeManaged allocates size bytes of kind memory. device is topology.HostDevice for
	// host-local allocations.
	AllocRuntimeManaged(kind placement.RuntimePlacement, device topology.Device, size int) (uintptr, error)
	FreeRuntimeManaged(address uintptr) error

	// ImportHostPointer registers size bytes of host memory at address so the runtime can address
	// it like its own memory. Only one registration may be outstanding per address.
	ImportHostPointer(address uintptr, size int) error
	ReleaseImportedPointer(address uintptr) error
}

// HostAllocator is the process-memory side of the native allocation boundary
type HostAllocator interface {
	// Alloc returns memory from the general-purpose allocator with no alignment guarantee
	Alloc(size int) (uintptr, error)
	Free(address uintptr) error

	// AllocAligned returns memory whose address is a multiple of alignment, a power of two
	AllocAligned(alignment uint, size int) (uintptr, error)
	FreeAligned(address uintptr) error
}
