package placement

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/memutils"
)

// Family groups placements by the native allocate/free pair that serves them
type Family int32

const (
	familyNone Family = iota
	// FamilyRuntime is allocated and freed by the compute runtime
	FamilyRuntime
	// FamilyHeap is allocated and freed by the general-purpose allocator
	FamilyHeap
	// FamilyAligned is allocated and freed by the aligned allocator
	FamilyAligned
)

var familyNames = map[Family]string{
	FamilyRuntime: "runtime",
	FamilyHeap:    "heap",
	FamilyAligned: "aligned",
}

func (f Family) String() string {
	str, ok := familyNames[f]
	if !ok {
		return "unknown"
	}
	return str
}

// Traits describes how a placement is obtained and released. Allocation, release and feasibility
// checks all key off this table rather than repeating case lists.
type Traits struct {
	Family Family
	// NeedsImport placements are plain heap memory that must be registered with the runtime
	NeedsImport bool
	// Alignment is the required base alignment in bytes, or 0 when the general-purpose
	// allocator is used
	Alignment uint
	// Misaligned placements hand out a pointer offset from an aligned base
	Misaligned bool
}

// RuntimeManaged reports whether the placement is allocated by the compute runtime against a
// device selection
func (t Traits) RuntimeManaged() bool {
	return t.Family == FamilyRuntime
}

var traitsTable = [placementCount]Traits{
	Device:              {Family: FamilyRuntime},
	Host:                {Family: FamilyRuntime},
	Shared:              {Family: FamilyRuntime},
	PlainHeap:           {Family: FamilyHeap},
	PlainHeapMisaligned: {Family: FamilyAligned, Alignment: memutils.PageSize, Misaligned: true},
	PlainHeap4KAligned:  {Family: FamilyAligned, Alignment: memutils.PageSize},
	PlainHeap2MAligned:  {Family: FamilyAligned, Alignment: memutils.HugePageSize},
	ImportedMisaligned:  {Family: FamilyAligned, NeedsImport: true, Alignment: memutils.PageSize, Misaligned: true},
	Imported4KAligned:   {Family: FamilyAligned, NeedsImport: true, Alignment: memutils.PageSize},
	Imported2MAligned:   {Family: FamilyAligned, NeedsImport: true, Alignment: memutils.HugePageSize},
}

// A placement added to the enumeration without a row in traitsTable fails here, at program start,
// instead of silently behaving like some other placement.
func init() {
	for p := Device; p < placementCount; p++ {
		if traitsTable[p].Family == familyNone {
			panic(fmt.Sprintf("placement %d has no traits", int32(p)))
		}
		if _, ok := placementNames[p]; !ok {
			panic(fmt.Sprintf("placement %d has no name", int32(p)))
		}
	}
}

// LookupTraits returns the traits for p. The second return is false for Unknown and any value
// outside the enumeration.
func LookupTraits(p Placement) (Traits, bool) {
	if !p.IsValid() {
		return Traits{}, false
	}
	return traitsTable[p], true
}

// MustTraits returns the traits for p and panics if p is not a member of the closed enumeration.
// A bad value here means upstream argument validation is broken, which is not recoverable.
func MustTraits(p Placement) Traits {
	traits, ok := LookupTraits(p)
	if !ok {
		panic(errors.AssertionFailedf("unknown placement %d (%s)", int32(p), p))
	}
	return traits
}

// RequiresImport reports whether p must be registered with the runtime after allocation
func RequiresImport(p Placement) bool {
	traits, _ := LookupTraits(p)
	return traits.NeedsImport
}

// IsRuntimeManaged reports whether p is allocated by the compute runtime
func IsRuntimeManaged(p Placement) bool {
	traits, _ := LookupTraits(p)
	return traits.RuntimeManaged()
}
