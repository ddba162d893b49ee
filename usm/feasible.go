package usm

import (
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/topology"
)

// IsFeasible reports whether Allocate can be expected to succeed for the pair. It is meant for
// filtering generated parameter combinations before anything runs: it never allocates and never
// calls into the runtime.
func (r *Resolver) IsFeasible(p placement.Placement, selection topology.Selection) bool {
	return Feasible(p, selection, r.capabilities, r.topology)
}

// Feasible is the predicate behind Resolver.IsFeasible. provider may be nil, in which case
// sub-device existence is not checked.
func Feasible(p placement.Placement, selection topology.Selection, capabilities Capabilities, provider topology.Provider) bool {
	traits, ok := placement.LookupTraits(p)
	if !ok || !selection.IsValid() {
		return false
	}

	if traits.NeedsImport && !capabilities.HostPointerImport {
		return false
	}

	if !traits.RuntimeManaged() {
		return true
	}

	gpu := selection.WithoutHost()
	switch gpu.ComputeDeviceCount() {
	case 0:
		return selection.IncludesHost()
	case 1:
		if selection.IncludesHost() && !capabilities.SharedAllocations {
			return false
		}
		return provider == nil || topology.IsResolvable(provider, gpu)
	}

	return false
}
