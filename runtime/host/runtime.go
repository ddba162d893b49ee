package host

import (
	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/internal/utils"
	"github.com/computebench/arsenal/memutils"
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
	"github.com/computebench/arsenal/usm"
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slog"
)

// Runtime serves both usm.DeviceRuntime and usm.HostAllocator from process memory. It keeps every
// live region, and every imported range, so that release calls can be checked against the call
// that created them and leaks can be reported.
type Runtime struct {
	logger       *slog.Logger
	topology     topology.Provider
	flags        CreateFlags
	capabilities usm.Capabilities

	mutex     utils.OptionalRWMutex
	regions   *swiss.Map[uintptr, *region]
	imports   *swiss.Map[uintptr, int]
	stats     [poolCount]memutils.DetailedStatistics
	destroyed bool
}

var _ usm.DeviceRuntime = &Runtime{}
var _ usm.HostAllocator = &Runtime{}

// Capabilities reports what the runtime was created to support
func (r *Runtime) Capabilities() usm.Capabilities {
	return r.capabilities
}

// AllocRuntimeManaged simulates a runtime-managed allocation of kind on device
func (r *Runtime) AllocRuntimeManaged(kind placement.RuntimePlacement, device topology.Device, size int) (uintptr, error) {
	r.logger.Debug("host::AllocRuntimeManaged",
		slog.String("Kind", kind.String()),
		slog.String("Device", device.String()),
		slog.Int("Size", size),
	)

	switch kind {
	case placement.RuntimeShared:
		if !r.capabilities.SharedAllocations {
			return 0, ErrSharedUnsupported
		}
		fallthrough
	case placement.RuntimeDevice:
		if !r.knownDevice(device) {
			return 0, errors.Wrapf(ErrUnknownDevice, "%s allocation on %s", kind, device)
		}
	case placement.RuntimeHost:
		if !device.IsHost() {
			return 0, errors.Newf("host memory was requested on %s", device)
		}
	default:
		return 0, errors.Newf("unknown runtime placement %d", kind)
	}

	return r.allocate(poolRuntime, 0, size, func(reg *region) {
		reg.kind = kind
		reg.device = device
	})
}

// FreeRuntimeManaged releases memory obtained from AllocRuntimeManaged
func (r *Runtime) FreeRuntimeManaged(address uintptr) error {
	r.logger.Debug("host::FreeRuntimeManaged")
	return r.free(poolRuntime, address)
}

// Alloc obtains size bytes from the Go heap
func (r *Runtime) Alloc(size int) (uintptr, error) {
	r.logger.Debug("host::Alloc", slog.Int("Size", size))
	return r.allocate(poolHeap, 0, size, nil)
}

// Free releases memory obtained from Alloc
func (r *Runtime) Free(address uintptr) error {
	r.logger.Debug("host::Free")
	return r.free(poolHeap, address)
}

// AllocAligned obtains size bytes starting at a multiple of alignment. On Linux the memory is mapped
// directly from the kernel, and 2MiB-aligned memory is advised to use huge pages.
func (r *Runtime) AllocAligned(alignment uint, size int) (uintptr, error) {
	r.logger.Debug("host::AllocAligned", slog.Int("Alignment", int(alignment)), slog.Int("Size", size))

	err := memutils.CheckPow2(alignment, "alignment")
	if err != nil {
		return 0, err
	}

	return r.allocate(poolAligned, alignment, size, nil)
}

// FreeAligned releases memory obtained from AllocAligned
func (r *Runtime) FreeAligned(address uintptr) error {
	r.logger.Debug("host::FreeAligned")
	return r.free(poolAligned, address)
}

// ImportHostPointer registers [address, address+size) with the runtime. The range must lie inside
// a live Alloc or AllocAligned region and must not already be imported.
func (r *Runtime) ImportHostPointer(address uintptr, size int) error {
	r.logger.Debug("host::ImportHostPointer", slog.Int("Size", size))

	if !r.capabilities.HostPointerImport {
		return ErrImportUnsupported
	}
	if size < 1 {
		return errors.Newf("cannot import %d bytes", size)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.destroyed {
		return ErrDestroyed
	}

	reg := r.findRegion(address, size)
	if reg == nil || reg.pool == poolRuntime {
		return errors.Wrapf(ErrUnknownAddress, "importing 0x%x", address)
	}

	if r.imports.Has(address) {
		return errors.Newf("0x%x is already imported", address)
	}
	r.imports.Put(address, size)

	return nil
}

// ReleaseImportedPointer unregisters an address passed to ImportHostPointer
func (r *Runtime) ReleaseImportedPointer(address uintptr) error {
	r.logger.Debug("host::ReleaseImportedPointer")

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.destroyed {
		return ErrDestroyed
	}

	if !r.imports.Delete(address) {
		return errors.Wrapf(ErrUnknownAddress, "releasing import of 0x%x", address)
	}

	return nil
}

// Bytes returns the memory behind [address, address+size) of a live allocation. The slice is only
// valid until the allocation is freed.
func (r *Runtime) Bytes(address uintptr, size int) ([]byte, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.destroyed {
		return nil, ErrDestroyed
	}

	reg := r.findRegion(address, size)
	if reg == nil {
		return nil, errors.Wrapf(ErrUnknownAddress, "0x%x+%d", address, size)
	}

	return reg.bytes(address, size), nil
}

// IsImported reports whether address is currently imported
func (r *Runtime) IsImported(address uintptr) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.imports.Has(address)
}

// OutstandingImports is the number of imported ranges that have not been released
func (r *Runtime) OutstandingImports() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.imports.Count()
}

func (r *Runtime) knownDevice(device topology.Device) bool {
	if device.IsHost() {
		return false
	}

	var candidates []topology.Device
	if device.IsSubDevice() {
		candidates = r.topology.SubDevices(device.Parent())
	} else {
		candidates = r.topology.RootDevices()
	}

	for _, candidate := range candidates {
		if candidate == device {
			return true
		}
	}

	return false
}

func (r *Runtime) allocate(p pool, alignment uint, size int, initRegion func(reg *region)) (uintptr, error) {
	if size < 1 {
		return 0, errors.Newf("cannot allocate %d bytes", size)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.destroyed {
		return 0, ErrDestroyed
	}

	reg := &region{
		pool:      p,
		size:      size,
		alignment: alignment,
		kind:      placement.RuntimeUnknown,
		device:    topology.HostDevice,
	}

	if alignment == 0 {
		reg.backing = make([]byte, size)
		reg.address = reg.backingStart()
	} else {
		memutils.DebugCheckPow2(alignment, "alignment")

		backing, mapped, err := allocBacking(size + int(alignment))
		if err != nil {
			return 0, err
		}
		reg.backing = backing
		reg.mapped = mapped

		start := reg.backingStart()
		padding := memutils.AlignUp(int(start), alignment) - int(start)
		reg.address = start + uintptr(padding)

		if alignment >= memutils.HugePageSize && r.flags&CreateNoHugePages == 0 {
			err = adviseHugePages(backing[padding : padding+size])
			if err != nil {
				r.logger.Debug("  huge page advice was rejected", slog.Any("error", err))
			}
		}
	}

	if initRegion != nil {
		initRegion(reg)
	}

	r.regions.Put(reg.address, reg)
	r.stats[p].AddAllocation(len(reg.backing), size)

	memutils.DebugValidate(heldRuntime{r})

	return reg.address, nil
}

func (r *Runtime) free(p pool, address uintptr) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.destroyed {
		return ErrDestroyed
	}

	reg, ok := r.regions.Get(address)
	if !ok {
		return errors.Wrapf(ErrUnknownAddress, "freeing 0x%x", address)
	}
	if reg.pool != p {
		return errors.Wrapf(ErrWrongPool, "%s memory released as %s", reg.pool, p)
	}
	if r.importedWithin(reg) {
		return errors.Wrapf(ErrImportOutstanding, "freeing 0x%x", address)
	}

	r.regions.Delete(address)
	r.stats[p].RemoveAllocation(len(reg.backing), reg.size)

	err := releaseBacking(reg.backing, reg.mapped)
	reg.backing = nil

	memutils.DebugValidate(heldRuntime{r})

	return err
}

// findRegion returns the live region holding [address, address+size), or nil
func (r *Runtime) findRegion(address uintptr, size int) *region {
	reg, ok := r.regions.Get(address)
	if ok && reg.contains(address, size) {
		return reg
	}

	var found *region
	r.regions.Iter(func(_ uintptr, candidate *region) bool {
		if candidate.contains(address, size) {
			found = candidate
			return true
		}
		return false
	})

	return found
}

func (r *Runtime) importedWithin(reg *region) bool {
	found := false
	r.imports.Iter(func(address uintptr, size int) bool {
		found = reg.contains(address, size)
		return found
	})

	return found
}
