package usm

import (
	"fmt"

	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Handle is a live allocation produced by the Resolver. It records everything needed to release the
// allocation through the same path that created it, and is owned by the benchmark iteration that
// requested it.
type Handle struct {
	address   uintptr
	size      int
	offset    int
	placement placement.Placement
	kind      placement.RuntimePlacement
	device    topology.Device
	imported  bool
	freed     bool
}

// Address is the start of the usable region
func (h *Handle) Address() uintptr {
	return h.address
}

// Size is the number of usable bytes starting at Address
func (h *Handle) Size() int {
	return h.size
}

// Offset is the misalignment applied to the native allocation, zero for aligned placements
func (h *Handle) Offset() int {
	return h.offset
}

// Base is the address returned by the native allocator, before any misalignment offset
func (h *Handle) Base() uintptr {
	return h.address - uintptr(h.offset)
}

// Placement is the placement the handle was requested with
func (h *Handle) Placement() placement.Placement {
	return h.placement
}

// Kind is the runtime memory kind the Resolver chose, or placement.RuntimeUnknown for plain heap
// placements
func (h *Handle) Kind() placement.RuntimePlacement {
	return h.kind
}

// Device is the device the memory was resolved against. It is topology.HostDevice for host-local
// and plain heap memory.
func (h *Handle) Device() topology.Device {
	return h.device
}

// Imported reports whether the memory is currently registered with the runtime
func (h *Handle) Imported() bool {
	return h.imported
}

// Freed reports whether the handle has been released
func (h *Handle) Freed() bool {
	return h.freed
}

func (h *Handle) printParameters(json *jwriter.ObjectState) {
	json.Name("Placement").String(h.placement.String())
	if h.kind != placement.RuntimeUnknown {
		json.Name("Kind").String(h.kind.String())
	}
	json.Name("Device").String(h.device.String())
	json.Name("Address").String(fmt.Sprintf("0x%x", h.address))
	json.Name("Size").Int(h.size)
	if h.offset != 0 {
		json.Name("Offset").Int(h.offset)
	}
	json.Name("Imported").Bool(h.imported)
}

// String describes the handle as a JSON object
func (h *Handle) String() string {
	writer := jwriter.NewWriter()
	obj := writer.Object()
	h.printParameters(&obj)
	obj.End()

	return string(writer.Bytes())
}
