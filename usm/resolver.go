package usm

import (
	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
	"golang.org/x/exp/slog"
)

// MisalignedOffset is the number of bytes a misaligned placement is shifted past its 4KiB-aligned
// base. It is fixed for the process lifetime; handles record it so release can recover the base.
const MisalignedOffset int = 4

// Resolver turns a placement and a device selection into a concrete allocation, and releases it
// again through the matching path. Its only state is read-only after New, so a Resolver may be used
// from several goroutines as long as each Handle stays with the goroutine that allocated it.
type Resolver struct {
	logger       *slog.Logger
	topology     topology.Provider
	runtime      DeviceRuntime
	host         HostAllocator
	capabilities Capabilities
	callbacks    resolverCallbacks
}

// Capabilities returns the runtime capabilities captured when the Resolver was created
func (r *Resolver) Capabilities() Capabilities {
	return r.capabilities
}

// Allocate obtains size bytes of memory for placement. For the runtime-managed placements Device,
// Host and Shared, the selection decides the concrete kind: a compute device plus the host gives
// shared memory on that device, a compute device alone gives device-local memory, the host alone
// gives host-local memory. The literal runtime placement is not consulted beyond that. Plain heap
// placements ignore the selection.
//
// Allocate returns ErrAmbiguousDevice or ErrNoTarget, without calling into the runtime, when the
// selection cannot be resolved. A selection naming unknown locations is rejected for every placement. It panics if p is not a member of the closed placement enumeration.
func (r *Resolver) Allocate(p placement.Placement, selection topology.Selection, size int) (*Handle, error) {
	traits := placement.MustTraits(p)

	r.logger.Debug("Resolver::Allocate",
		slog.String("Placement", p.String()),
		slog.String("Selection", selection.String()),
		slog.Int("Size", size),
	)

	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidSize, "requested %d bytes", size)
	}
	if !selection.IsValid() {
		return nil, &topology.Error{Selection: selection, Err: topology.ErrInvalidSelection}
	}

	var handle *Handle
	var err error
	if traits.RuntimeManaged() {
		handle, err = r.allocateForSelection(p, selection, size)
	} else {
		handle, err = r.allocateHost(p, traits, size)
	}
	if err != nil {
		r.logger.Debug("  Allocate FAILED", slog.Any("error", err))
		return nil, err
	}

	r.callbacks.Allocate(handle)
	return handle, nil
}

// AllocateRuntime allocates kind memory against the first root device reported by the topology
func (r *Resolver) AllocateRuntime(kind placement.RuntimePlacement, size int) (*Handle, error) {
	// Panics on a kind outside the enumeration before the topology is consulted
	kind.Placement()

	roots := r.topology.RootDevices()
	if len(roots) == 0 && kind != placement.RuntimeHost {
		return nil, &topology.Error{Selection: topology.Root, Err: topology.ErrNoRootDevice}
	}

	device := topology.HostDevice
	if kind != placement.RuntimeHost {
		device = roots[0]
	}

	return r.AllocateOnDevice(kind, device, size)
}

// AllocateOnDevice allocates kind memory against an explicit device. The device is ignored for
// host-local memory.
func (r *Resolver) AllocateOnDevice(kind placement.RuntimePlacement, device topology.Device, size int) (*Handle, error) {
	p := kind.Placement()

	r.logger.Debug("Resolver::AllocateOnDevice",
		slog.String("Kind", kind.String()),
		slog.String("Device", device.String()),
		slog.Int("Size", size),
	)

	if size < 1 {
		return nil, errors.Wrapf(ErrInvalidSize, "requested %d bytes", size)
	}

	if kind == placement.RuntimeHost {
		device = topology.HostDevice
	}

	handle, err := r.allocateRuntime(p, kind, device, size)
	if err != nil {
		return nil, err
	}

	r.callbacks.Allocate(handle)
	return handle, nil
}

func (r *Resolver) allocateForSelection(p placement.Placement, selection topology.Selection, size int) (*Handle, error) {
	gpu := selection.WithoutHost()
	deviceCount := gpu.ComputeDeviceCount()
	if deviceCount > 1 {
		return nil, errors.Wrapf(ErrAmbiguousDevice, "%s allocation on %s", p, selection)
	}

	hasDevice := deviceCount == 1
	hasHost := selection.IncludesHost()

	var kind placement.RuntimePlacement
	switch {
	case hasDevice && hasHost:
		kind = placement.RuntimeShared
	case hasDevice:
		kind = placement.RuntimeDevice
	case hasHost:
		kind = placement.RuntimeHost
	default:
		return nil, errors.Wrapf(ErrNoTarget, "%s allocation on %s", p, selection)
	}

	device := topology.HostDevice
	if hasDevice {
		var err error
		device, err = topology.Resolve(r.topology, gpu)
		if err != nil {
			return nil, err
		}
	}

	return r.allocateRuntime(p, kind, device, size)
}

func (r *Resolver) allocateRuntime(p placement.Placement, kind placement.RuntimePlacement, device topology.Device, size int) (*Handle, error) {
	address, err := r.runtime.AllocRuntimeManaged(kind, device, size)
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d bytes of %s memory on %s", size, kind, device)
	}

	r.logger.Debug("  Allocated runtime memory", slog.String("Kind", kind.String()), slog.String("Device", device.String()))

	return &Handle{
		address:   address,
		size:      size,
		placement: p,
		kind:      kind,
		device:    device,
	}, nil
}

func (r *Resolver) allocateHost(p placement.Placement, traits placement.Traits, size int) (*Handle, error) {
	offset := 0
	if traits.Misaligned {
		offset = MisalignedOffset
	}

	var base uintptr
	var err error
	switch traits.Family {
	case placement.FamilyHeap:
		base, err = r.host.Alloc(size)
	case placement.FamilyAligned:
		base, err = r.host.AllocAligned(traits.Alignment, size+offset)
	default:
		panic(errors.AssertionFailedf("placement %s is not a host placement", p))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d bytes of %s memory", size, p)
	}

	handle := &Handle{
		address:   base + uintptr(offset),
		size:      size,
		offset:    offset,
		placement: p,
		device:    topology.HostDevice,
	}

	if !traits.NeedsImport {
		return handle, nil
	}

	// The raw allocation and the import succeed or fail together
	err = r.runtime.ImportHostPointer(handle.address, size)
	if err != nil {
		freeErr := r.freeHost(traits, handle)
		if freeErr != nil {
			r.logger.Error("error attempting to free host memory after import failure", slog.Any("error", freeErr))
		}
		return nil, errors.Mark(errors.Wrapf(err, "importing %d bytes of %s memory", size, p), ErrImportFailure)
	}
	handle.imported = true

	return handle, nil
}

func (r *Resolver) freeHost(traits placement.Traits, handle *Handle) error {
	switch traits.Family {
	case placement.FamilyHeap:
		return r.host.Free(handle.Base())
	case placement.FamilyAligned:
		return r.host.FreeAligned(handle.Base())
	}

	panic(errors.AssertionFailedf("placement %s is not a host placement", handle.placement))
}

// Deallocate releases handle, which must have been allocated with placement p. Imported memory is
// unregistered from the runtime before it is freed. A handle can only be released once; later calls
// return ErrAlreadyFreed without touching native memory. It panics if p is not a member of the closed
// placement enumeration.
func (r *Resolver) Deallocate(p placement.Placement, handle *Handle) error {
	traits := placement.MustTraits(p)

	if handle == nil {
		return errors.New("attempted to free a nil handle")
	}

	r.logger.Debug("Resolver::Deallocate",
		slog.String("Placement", p.String()),
		slog.Int("Size", handle.size),
	)

	if handle.freed {
		return errors.Wrapf(ErrAlreadyFreed, "%s handle", handle.placement)
	}
	if handle.placement != p {
		return errors.Wrapf(ErrPlacementMismatch, "handle was allocated as %s but released as %s", handle.placement, p)
	}
	handle.freed = true

	var releaseErr error
	if traits.NeedsImport && handle.imported {
		releaseErr = r.runtime.ReleaseImportedPointer(handle.address)
		if releaseErr != nil {
			releaseErr = errors.Wrapf(releaseErr, "releasing imported %s memory", p)
		}
		handle.imported = false
	}

	var freeErr error
	if traits.RuntimeManaged() {
		freeErr = r.runtime.FreeRuntimeManaged(handle.address)
	} else {
		freeErr = r.freeHost(traits, handle)
	}
	if freeErr != nil {
		freeErr = errors.Wrapf(freeErr, "freeing %s memory", p)
	}

	r.callbacks.Free(handle)

	return errors.CombineErrors(releaseErr, freeErr)
}

// Free releases handle with the placement it was allocated with
func (r *Resolver) Free(handle *Handle) error {
	if handle == nil {
		return errors.New("attempted to free a nil handle")
	}
	return r.Deallocate(handle.placement, handle)
}

// WithAllocation allocates memory, runs fn against it and releases it exactly once, whether fn
// returns normally, returns an error or panics. Errors from fn and from the release are combined.
func (r *Resolver) WithAllocation(p placement.Placement, selection topology.Selection, size int, fn func(handle *Handle) error) (err error) {
	handle, err := r.Allocate(p, selection, size)
	if err != nil {
		return err
	}

	defer func() {
		freeErr := r.Deallocate(p, handle)
		err = errors.CombineErrors(err, freeErr)
	}()

	return fn(handle)
}
