package placement

// All returns every valid placement, in enumeration order
func All() []Placement {
	all := make([]Placement, 0, placementCount-1)
	for p := Device; p < placementCount; p++ {
		all = append(all, p)
	}
	return all
}

// Stable excludes the plain unaligned heap, whose results vary with the general-purpose allocator
func Stable() []Placement {
	return []Placement{
		Device, Host, Shared,
		PlainHeapMisaligned, PlainHeap4KAligned, PlainHeap2MAligned,
		ImportedMisaligned, Imported4KAligned, Imported2MAligned,
	}
}

// Limited is the minimal set that every API supports
func Limited() []Placement {
	return []Placement{Device, Host, PlainHeap4KAligned}
}

// NonRuntime is every raw heap variant that is not registered with the runtime
func NonRuntime() []Placement {
	return []Placement{PlainHeap, PlainHeapMisaligned, PlainHeap4KAligned, PlainHeap2MAligned}
}

// DeviceOrHost is the two simplest runtime placements
func DeviceOrHost() []Placement {
	return []Placement{Device, Host}
}

// RuntimeAll returns every valid RuntimePlacement
func RuntimeAll() []RuntimePlacement {
	return []RuntimePlacement{RuntimeDevice, RuntimeHost, RuntimeShared}
}

var subsetMapping = map[string]func() []Placement{
	"all":            All,
	"stable":         Stable,
	"limited":        Limited,
	"non-runtime":    NonRuntime,
	"device-or-host": DeviceOrHost,
}

// Subset returns the named placement subset: all, stable, limited, non-runtime or device-or-host
func Subset(name string) ([]Placement, bool) {
	subset, ok := subsetMapping[name]
	if !ok {
		return nil, false
	}
	return subset(), true
}
