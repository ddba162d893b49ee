package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/internal/utils"
	"github.com/computebench/arsenal/memutils"
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
	"github.com/computebench/arsenal/usm"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific runtime behaviors to activate or deactivate
type CreateFlags int32

var createFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	createFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return createFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that the runtime will not be synchronized internally
	CreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
}

// syntheticAddressBase is where addresses for memory that cannot be mapped start. They identify the
// allocation and are never dereferenced.
const syntheticAddressBase uintptr = 1 << 44

var (
	// ErrImportUnsupported is returned from ImportHostPointer and ReleaseImportedPointer
	ErrImportUnsupported = errors.New("vulkan runtime cannot import host pointers")
	// ErrNoMemoryType is returned when the device exposes no memory type suitable for a kind
	ErrNoMemoryType = errors.New("no suitable memory type")
	// ErrUnknownAddress is returned when an address was not allocated by the runtime
	ErrUnknownAddress = errors.New("address was not allocated by this runtime")
)

// CreateOptions contains optional settings when creating a Vulkan Runtime
type CreateOptions struct {
	// Flags indicates specific runtime behaviors to activate or deactivate
	Flags CreateFlags
	// VulkanCallbacks is an optional set of callbacks passed to every memory allocation and free
	VulkanCallbacks *driver.AllocationCallbacks
}

// Runtime allocates runtime-managed memory as Vulkan device memory on a single device. The device is
// exposed as the only root device, without sub-devices. Host-visible memory is persistently mapped
// and addressed through the mapping; device-local memory is given a synthetic address.
type Runtime struct {
	logger      *slog.Logger
	device      memoryDevice
	memoryTypes []core1_0.MemoryType
	typeIndex   map[placement.RuntimePlacement]int
	callbacks   *driver.AllocationCallbacks

	mutex           utils.OptionalMutex
	allocations     *swiss.Map[uintptr, *allocation]
	nextSynthetic   uintptr
	statistics      memutils.DetailedStatistics
	memoryTypeStats []memutils.Statistics
}

var _ usm.DeviceRuntime = &Runtime{}
var _ topology.Provider = &Runtime{}

// New creates a Runtime that allocates from device
//
// physicalDevice - The PhysicalDevice that owns the provided Device
//
// device - The Device that memory will be allocated into
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, physicalDevice core1_0.PhysicalDevice, device core1_0.Device, options CreateOptions) (*Runtime, error) {
	if physicalDevice == nil || device == nil {
		return nil, errors.New("vulkan.New requires a physical device and a device")
	}

	return newRuntime(logger, vulkanDevice{device: device, callbacks: options.VulkanCallbacks}, physicalDevice.MemoryProperties(), options)
}

func newRuntime(logger *slog.Logger, device memoryDevice, memoryProperties *core1_0.PhysicalDeviceMemoryProperties, options CreateOptions) (*Runtime, error) {
	if logger == nil {
		return nil, errors.New("vulkan.New was called with a nil logger")
	}
	if memoryProperties == nil {
		return nil, errors.New("vulkan.New could not read the device memory properties")
	}

	runtime := &Runtime{
		logger:          logger,
		device:          device,
		memoryTypes:     memoryProperties.MemoryTypes,
		typeIndex:       make(map[placement.RuntimePlacement]int),
		callbacks:       options.VulkanCallbacks,
		mutex:           utils.OptionalMutex{UseMutex: options.Flags&CreateExternallySynchronized == 0},
		allocations:     swiss.NewMap[uintptr, *allocation](42),
		nextSynthetic:   syntheticAddressBase,
		memoryTypeStats: make([]memutils.Statistics, len(memoryProperties.MemoryTypes)),
	}
	runtime.statistics.Clear()

	for kind, preferences := range kindPreferences {
		runtime.typeIndex[kind] = findMemoryTypeIndex(runtime.memoryTypes, preferences)
	}

	logger.Debug("vulkan::New",
		slog.String("Flags", options.Flags.String()),
		slog.Int("DeviceMemoryType", runtime.typeIndex[placement.RuntimeDevice]),
		slog.Int("HostMemoryType", runtime.typeIndex[placement.RuntimeHost]),
		slog.Int("SharedMemoryType", runtime.typeIndex[placement.RuntimeShared]),
	)

	return runtime, nil
}

// Capabilities reports shared allocation support when the device exposes a memory type that is
// both device-local and host-visible. Host pointer import is never supported.
func (r *Runtime) Capabilities() usm.Capabilities {
	return usm.Capabilities{
		HostPointerImport: false,
		SharedAllocations: r.typeIndex[placement.RuntimeShared] >= 0,
	}
}

// RootDevices reports the single device the runtime allocates from
func (r *Runtime) RootDevices() []topology.Device {
	return []topology.Device{topology.RootDevice(0)}
}

// SubDevices always returns nil: Vulkan devices are not partitioned
func (r *Runtime) SubDevices(root topology.Device) []topology.Device {
	return nil
}

// MemoryTypeIndex returns the memory type used for kind, or -1 if there is none
func (r *Runtime) MemoryTypeIndex(kind placement.RuntimePlacement) int {
	index, ok := r.typeIndex[kind]
	if !ok {
		return -1
	}
	return index
}

func (r *Runtime) AllocRuntimeManaged(kind placement.RuntimePlacement, device topology.Device, size int) (uintptr, error) {
	r.logger.Debug("vulkan::AllocRuntimeManaged",
		slog.String("Kind", kind.String()),
		slog.String("Device", device.String()),
		slog.Int("Size", size),
	)

	if size < 1 {
		return 0, errors.Newf("cannot allocate %d bytes", size)
	}
	if kind != placement.RuntimeHost && device != topology.RootDevice(0) {
		return 0, errors.Newf("%s is not the vulkan device", device)
	}

	memoryTypeIndex := r.MemoryTypeIndex(kind)
	if memoryTypeIndex < 0 {
		return 0, errors.Wrapf(ErrNoMemoryType, "%s memory", kind)
	}

	memory, res, err := r.device.allocate(memoryTypeIndex, size)
	if err != nil {
		return 0, errors.Wrapf(err, "vkAllocateMemory returned %s", res)
	}

	alloc := &allocation{
		memory:          memory,
		memoryTypeIndex: memoryTypeIndex,
		kind:            kind,
		size:            size,
	}

	if r.memoryTypes[memoryTypeIndex].PropertyFlags&core1_0.MemoryPropertyHostVisible != 0 {
		alloc.mappedData, res, err = memory.Map(0, -1, 0)
		if err != nil {
			memory.Free(r.callbacks)
			return 0, errors.Wrapf(err, "vkMapMemory returned %s", res)
		}
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	var address uintptr
	if alloc.mappedData != nil {
		address = uintptr(alloc.mappedData)
	} else {
		address = r.nextSynthetic
		r.nextSynthetic += uintptr(memutils.AlignUp(size, memutils.PageSize))
	}

	r.allocations.Put(address, alloc)
	r.statistics.AddAllocation(size, size)
	r.memoryTypeStats[memoryTypeIndex].AddAllocation(size, size)

	return address, nil
}

func (r *Runtime) FreeRuntimeManaged(address uintptr) error {
	r.logger.Debug("vulkan::FreeRuntimeManaged")

	r.mutex.Lock()
	alloc, ok := r.allocations.Get(address)
	if ok {
		r.allocations.Delete(address)
		r.statistics.RemoveAllocation(alloc.size, alloc.size)
		r.memoryTypeStats[alloc.memoryTypeIndex].RemoveAllocation(alloc.size, alloc.size)
	}
	r.mutex.Unlock()

	if !ok {
		return errors.Wrapf(ErrUnknownAddress, "freeing 0x%x", address)
	}

	if alloc.mappedData != nil {
		alloc.memory.Unmap()
	}
	alloc.memory.Free(r.callbacks)

	return nil
}

func (r *Runtime) ImportHostPointer(address uintptr, size int) error {
	return ErrImportUnsupported
}

func (r *Runtime) ReleaseImportedPointer(address uintptr) error {
	return ErrImportUnsupported
}

// Bytes returns the mapped memory behind an allocation that starts at address. Device-local
// allocations cannot be accessed from the host.
func (r *Runtime) Bytes(address uintptr, size int) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	alloc, ok := r.allocations.Get(address)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAddress, "0x%x", address)
	}
	if alloc.mappedData == nil {
		return nil, errors.Newf("%s memory at 0x%x is not host-visible", alloc.kind, address)
	}
	if size > alloc.size {
		return nil, errors.Newf("requested %d bytes of a %d byte allocation", size, alloc.size)
	}

	return unsafe.Slice((*byte)(alloc.mappedData), size), nil
}

// Statistics returns the statistics of every live allocation
func (r *Runtime) Statistics() memutils.DetailedStatistics {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.statistics
}

// MemoryTypeStatistics returns the statistics of live allocations in one memory type
func (r *Runtime) MemoryTypeStatistics(memoryTypeIndex int) memutils.Statistics {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.memoryTypeStats[memoryTypeIndex]
}

// Destroy frees every allocation that is still live and reports how many there were
func (r *Runtime) Destroy() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	leaked := r.allocations.Count()
	r.allocations.Iter(func(address uintptr, alloc *allocation) bool {
		if alloc.mappedData != nil {
			alloc.memory.Unmap()
		}
		alloc.memory.Free(r.callbacks)
		return false
	})
	r.allocations = swiss.NewMap[uintptr, *allocation](42)
	r.statistics.Clear()
	for i := range r.memoryTypeStats {
		r.memoryTypeStats[i].Clear()
	}

	if leaked > 0 {
		return errors.Newf("%d vulkan allocations were still live", leaked)
	}
	return nil
}
