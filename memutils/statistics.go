package memutils

import "math"

// Statistics counts native blocks (the regions actually obtained from the allocator, including any
// alignment padding) and allocations (the usable regions handed back to callers)
type Statistics struct {
	BlockCount      int
	AllocationCount int
	BlockBytes      int
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.AllocationCount = 0
	s.BlockBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.BlockBytes += other.BlockBytes
	s.AllocationBytes += other.AllocationBytes
}

func (s *Statistics) AddAllocation(blockSize, allocationSize int) {
	s.BlockCount++
	s.BlockBytes += blockSize
	s.AllocationCount++
	s.AllocationBytes += allocationSize
}

func (s *Statistics) RemoveAllocation(blockSize, allocationSize int) {
	s.BlockCount--
	s.BlockBytes -= blockSize
	s.AllocationCount--
	s.AllocationBytes -= allocationSize
}

// IsEmpty reports whether no blocks or allocations are outstanding
func (s *Statistics) IsEmpty() bool {
	return s.BlockCount == 0 && s.AllocationCount == 0 && s.BlockBytes == 0 && s.AllocationBytes == 0
}

// DetailedStatistics extends Statistics with lifetime totals and size extremes
type DetailedStatistics struct {
	Statistics
	TotalAllocations  int
	AllocationSizeMin int
	AllocationSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.TotalAllocations = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
}

func (s *DetailedStatistics) AddAllocation(blockSize, allocationSize int) {
	s.Statistics.AddAllocation(blockSize, allocationSize)
	s.TotalAllocations++

	if allocationSize < s.AllocationSizeMin {
		s.AllocationSizeMin = allocationSize
	}

	if allocationSize > s.AllocationSizeMax {
		s.AllocationSizeMax = allocationSize
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.TotalAllocations += other.TotalAllocations

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}
