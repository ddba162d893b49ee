package vulkan

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/computebench/arsenal/placement"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

// deviceMemory is the part of core1_0.DeviceMemory the runtime relies on
type deviceMemory interface {
	Map(offset int, size int, flags core1_0.MemoryMapFlags) (unsafe.Pointer, common.VkResult, error)
	Unmap()
	Free(callbacks *driver.AllocationCallbacks)
}

type memoryDevice interface {
	allocate(memoryTypeIndex int, size int) (deviceMemory, common.VkResult, error)
}

type vulkanDevice struct {
	device    core1_0.Device
	callbacks *driver.AllocationCallbacks
}

func (d vulkanDevice) allocate(memoryTypeIndex int, size int) (deviceMemory, common.VkResult, error) {
	memory, res, err := d.device.AllocateMemory(d.callbacks, core1_0.MemoryAllocateInfo{
		MemoryTypeIndex: memoryTypeIndex,
		AllocationSize:  size,
	})
	if err != nil {
		return nil, res, err
	}

	return memory, res, nil
}

type memoryPreferences struct {
	required     core1_0.MemoryPropertyFlags
	preferred    core1_0.MemoryPropertyFlags
	notPreferred core1_0.MemoryPropertyFlags
}

var kindPreferences = map[placement.RuntimePlacement]memoryPreferences{
	placement.RuntimeDevice: {
		required:     core1_0.MemoryPropertyDeviceLocal,
		notPreferred: core1_0.MemoryPropertyHostVisible,
	},
	placement.RuntimeHost: {
		required:     core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
		preferred:    core1_0.MemoryPropertyHostCached,
		notPreferred: core1_0.MemoryPropertyDeviceLocal,
	},
	placement.RuntimeShared: {
		required:  core1_0.MemoryPropertyDeviceLocal | core1_0.MemoryPropertyHostVisible,
		preferred: core1_0.MemoryPropertyHostCoherent,
	},
}

// findMemoryTypeIndex picks the memory type that has every required flag and the fewest mismatched
// preferences. It returns -1 when no memory type qualifies.
func findMemoryTypeIndex(memoryTypes []core1_0.MemoryType, preferences memoryPreferences) int {
	bestMemoryTypeIndex := -1
	minCost := math.MaxInt

	for memTypeIndex, memType := range memoryTypes {
		flags := memType.PropertyFlags
		if preferences.required&flags != preferences.required {
			// This memory type is missing required flags
			continue
		}

		missingPreferredFlags := preferences.preferred & ^flags
		presentNotPreferredFlags := preferences.notPreferred & flags
		cost := bits.OnesCount32(uint32(missingPreferredFlags)) + bits.OnesCount32(uint32(presentNotPreferredFlags))
		if cost == 0 {
			return memTypeIndex
		} else if cost < minCost {
			bestMemoryTypeIndex = memTypeIndex
			minCost = cost
		}
	}

	return bestMemoryTypeIndex
}

type allocation struct {
	memory          deviceMemory
	memoryTypeIndex int
	kind            placement.RuntimePlacement
	size            int
	mappedData      unsafe.Pointer
}
