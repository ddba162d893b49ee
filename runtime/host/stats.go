package host

import (
	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/memutils"
	"github.com/computebench/arsenal/placement"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

// heldRuntime validates a Runtime whose mutex is already held
type heldRuntime struct {
	*Runtime
}

func (r heldRuntime) Validate() error {
	return r.validate()
}

// Validate checks the internal bookkeeping: per-pool statistics must agree with the live regions
// and every import must lie inside a live host region
func (r *Runtime) Validate() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.validate()
}

func (r *Runtime) validate() error {
	var actual [poolCount]memutils.Statistics
	r.regions.Iter(func(address uintptr, reg *region) bool {
		actual[reg.pool].AddAllocation(len(reg.backing), reg.size)
		return false
	})

	for p := pool(0); p < poolCount; p++ {
		if actual[p] != r.stats[p].Statistics {
			return errors.Newf("%s statistics %+v do not match live regions %+v", p, r.stats[p].Statistics, actual[p])
		}
	}

	var err error
	r.imports.Iter(func(address uintptr, size int) bool {
		reg := r.findRegion(address, size)
		if reg == nil || reg.pool == poolRuntime {
			err = errors.Newf("import of 0x%x+%d is not inside a live host allocation", address, size)
			return true
		}
		return false
	})

	return err
}

// Statistics returns the statistics for memory created through the entry points of family
func (r *Runtime) Statistics(family placement.Family) memutils.DetailedStatistics {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, ok := poolForFamily(family)
	if !ok {
		var empty memutils.DetailedStatistics
		empty.Clear()
		return empty
	}

	return r.stats[p]
}

// TotalStatistics combines the statistics of every family
func (r *Runtime) TotalStatistics() memutils.DetailedStatistics {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var total memutils.DetailedStatistics
	total.Clear()
	for p := pool(0); p < poolCount; p++ {
		total.AddDetailedStatistics(&r.stats[p])
	}

	return total
}

// CheckLeaks returns an error marked with ErrLeakedMemory if any allocation or import is still
// outstanding
func (r *Runtime) CheckLeaks() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.checkLeaks()
}

func (r *Runtime) checkLeaks() error {
	regions := r.regions.Count()
	imports := r.imports.Count()
	if regions == 0 && imports == 0 {
		return nil
	}

	return errors.Wrapf(ErrLeakedMemory, "%d allocations and %d imports outstanding", regions, imports)
}

// Destroy releases everything the runtime still holds. Leaked allocations are reported through the
// returned error after they have been released. The runtime cannot be used afterward.
func (r *Runtime) Destroy() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.destroyed {
		return ErrDestroyed
	}

	leakErr := r.checkLeaks()
	if leakErr != nil {
		r.logger.Error("host runtime destroyed with outstanding memory", slog.Any("error", leakErr))
	}

	var releaseErr error
	r.regions.Iter(func(address uintptr, reg *region) bool {
		releaseErr = errors.CombineErrors(releaseErr, releaseBacking(reg.backing, reg.mapped))
		reg.backing = nil
		return false
	})

	r.regions = swiss.NewMap[uintptr, *region](42)
	r.imports = swiss.NewMap[uintptr, int](42)
	for p := range r.stats {
		r.stats[p].Clear()
	}
	r.destroyed = true

	return errors.CombineErrors(leakErr, releaseErr)
}

func printStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("BlockCount").Int(stats.BlockCount)
	json.Name("BlockBytes").Int(stats.BlockBytes)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
	json.Name("TotalAllocations").Int(stats.TotalAllocations)
	if stats.TotalAllocations > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
}

// BuildStatsString describes the runtime as JSON. With detailed set, every live allocation is
// listed as well.
func (r *Runtime) BuildStatsString(detailed bool) string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	writer := jwriter.NewWriter()
	root := writer.Object()

	var total memutils.DetailedStatistics
	total.Clear()
	for p := pool(0); p < poolCount; p++ {
		total.AddDetailedStatistics(&r.stats[p])
	}

	totalObj := root.Name("Total").Object()
	printStatistics(&totalObj, &total)
	totalObj.End()

	families := root.Name("Families").Object()
	for p := pool(0); p < poolCount; p++ {
		familyObj := families.Name(p.family().String()).Object()
		printStatistics(&familyObj, &r.stats[p])
		familyObj.End()
	}
	families.End()

	root.Name("OutstandingImports").Int(r.imports.Count())

	if detailed {
		regions := root.Name("Allocations").Array()
		r.regions.Iter(func(address uintptr, reg *region) bool {
			obj := regions.Object()
			reg.printParameters(&obj)
			obj.Name("Imported").Bool(r.importedWithin(reg))
			obj.End()
			return false
		})
		regions.End()
	}

	root.End()

	return string(writer.Bytes())
}
