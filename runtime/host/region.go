package host

import (
	"fmt"
	"unsafe"

	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// pool groups regions by the entry point that created them, so a region can only be released
// through the matching free call
type pool int32

const (
	poolRuntime pool = iota
	poolHeap
	poolAligned
	poolCount
)

var poolMapping = map[pool]string{
	poolRuntime: "Runtime",
	poolHeap:    "Heap",
	poolAligned: "Aligned",
}

func (p pool) String() string {
	return poolMapping[p]
}

func (p pool) family() placement.Family {
	switch p {
	case poolRuntime:
		return placement.FamilyRuntime
	case poolHeap:
		return placement.FamilyHeap
	default:
		return placement.FamilyAligned
	}
}

func poolForFamily(family placement.Family) (pool, bool) {
	switch family {
	case placement.FamilyRuntime:
		return poolRuntime, true
	case placement.FamilyHeap:
		return poolHeap, true
	case placement.FamilyAligned:
		return poolAligned, true
	}
	return poolCount, false
}

type region struct {
	pool      pool
	backing   []byte
	mapped    bool
	address   uintptr
	size      int
	alignment uint
	kind      placement.RuntimePlacement
	device    topology.Device
}

func (r *region) backingStart() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(r.backing)))
}

func (r *region) contains(address uintptr, size int) bool {
	return address >= r.address && address+uintptr(size) <= r.address+uintptr(r.size)
}

// bytes returns the part of the backing store covering [address, address+size)
func (r *region) bytes(address uintptr, size int) []byte {
	start := int(address - r.backingStart())
	return r.backing[start : start+size : start+size]
}

func (r *region) printParameters(json *jwriter.ObjectState) {
	json.Name("Pool").String(r.pool.String())
	json.Name("Address").String(fmt.Sprintf("0x%x", r.address))
	json.Name("Size").Int(r.size)
	json.Name("BlockSize").Int(len(r.backing))
	if r.alignment > 0 {
		json.Name("Alignment").Int(int(r.alignment))
	}
	if r.pool == poolRuntime {
		json.Name("Kind").String(r.kind.String())
		json.Name("Device").String(r.device.String())
	}
	json.Name("Mapped").Bool(r.mapped)
}
