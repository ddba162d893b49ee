package placement

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnknownPlacement is returned by Parse when a name does not match any placement
var ErrUnknownPlacement = errors.New("unknown memory placement")

// Placement names where a benchmark buffer should live and how it is obtained
type Placement int32

const (
	// Unknown marks a failed parse. It is never a valid value to allocate with.
	Unknown Placement = iota
	// Device is runtime-managed memory resident on the accelerator
	Device
	// Host is runtime-managed memory resident on the host
	Host
	// Shared is runtime-managed memory coherently visible to both host and accelerator
	Shared
	// PlainHeap is ordinary process memory from the general-purpose allocator
	PlainHeap
	// PlainHeapMisaligned is process memory deliberately offset from a page boundary
	PlainHeapMisaligned
	// PlainHeap4KAligned is process memory aligned to 4KiB
	PlainHeap4KAligned
	// PlainHeap2MAligned is process memory aligned to 2MiB
	PlainHeap2MAligned
	// ImportedMisaligned is PlainHeapMisaligned memory registered with the runtime
	ImportedMisaligned
	// Imported4KAligned is PlainHeap4KAligned memory registered with the runtime
	Imported4KAligned
	// Imported2MAligned is PlainHeap2MAligned memory registered with the runtime
	Imported2MAligned

	placementCount
)

var placementNames = map[Placement]string{
	Unknown:             "Unknown",
	Device:              "Device",
	Host:                "Host",
	Shared:              "Shared",
	PlainHeap:           "non-USM",
	PlainHeapMisaligned: "non-USMmisaligned",
	PlainHeap4KAligned:  "non-USM4KBAligned",
	PlainHeap2MAligned:  "non-USM2MBAligned",
	ImportedMisaligned:  "non-USMmisaligned-imported",
	Imported4KAligned:   "non-USM4KBAligned-imported",
	Imported2MAligned:   "non-USM2MBAligned-imported",
}

func (p Placement) String() string {
	str, ok := placementNames[p]
	if !ok {
		return "unknown"
	}
	return str
}

// IsValid reports whether p is a member of the closed enumeration. Unknown is not.
func (p Placement) IsValid() bool {
	return p > Unknown && p < placementCount
}

// Parse resolves a placement name, case-insensitively. On failure it returns Unknown
// alongside an error wrapping ErrUnknownPlacement.
func Parse(name string) (Placement, error) {
	for p := Device; p < placementCount; p++ {
		if strings.EqualFold(placementNames[p], name) {
			return p, nil
		}
	}

	return Unknown, errors.Wrapf(ErrUnknownPlacement, "%q", name)
}

func (p Placement) MarshalText() ([]byte, error) {
	if !p.IsValid() {
		return nil, errors.Wrapf(ErrUnknownPlacement, "value %d", int32(p))
	}
	return []byte(p.String()), nil
}

func (p *Placement) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	*p = parsed
	return err
}

// RuntimePlacement is the subset of placements backed by runtime-managed memory
type RuntimePlacement int32

const (
	RuntimeUnknown RuntimePlacement = iota
	RuntimeDevice
	RuntimeHost
	RuntimeShared
)

var runtimePlacementMapping = map[RuntimePlacement]Placement{
	RuntimeDevice: Device,
	RuntimeHost:   Host,
	RuntimeShared: Shared,
}

func (r RuntimePlacement) String() string {
	p, ok := runtimePlacementMapping[r]
	if !ok {
		return "unknown"
	}
	return p.String()
}

// Placement widens r to the full enumeration. It panics on RuntimeUnknown or any value
// outside the enumeration.
func (r RuntimePlacement) Placement() Placement {
	p, ok := runtimePlacementMapping[r]
	if !ok {
		panic(errors.AssertionFailedf("unknown runtime placement %d", int32(r)))
	}
	return p
}

// Runtime narrows p to a RuntimePlacement. The second return is false for placements that are not
// runtime-managed.
func (p Placement) Runtime() (RuntimePlacement, bool) {
	switch p {
	case Device:
		return RuntimeDevice, true
	case Host:
		return RuntimeHost, true
	case Shared:
		return RuntimeShared, true
	}

	return RuntimeUnknown, false
}
