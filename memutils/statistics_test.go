package memutils_test

import (
	"math"
	"testing"

	"github.com/computebench/arsenal/memutils"
	"github.com/stretchr/testify/require"
)

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()
	require.True(t, stats.IsEmpty())
	require.Equal(t, math.MaxInt, stats.AllocationSizeMin)

	stats.AddAllocation(8192, 4097)
	stats.AddAllocation(4096, 1)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      2,
			AllocationCount: 2,
			BlockBytes:      12288,
			AllocationBytes: 4098,
		},
		TotalAllocations:  2,
		AllocationSizeMin: 1,
		AllocationSizeMax: 4097,
	}, stats)

	stats.RemoveAllocation(8192, 4097)
	stats.RemoveAllocation(4096, 1)
	require.True(t, stats.IsEmpty())
	require.Equal(t, 2, stats.TotalAllocations)

	var total memutils.DetailedStatistics
	total.Clear()
	total.AddDetailedStatistics(&stats)
	require.Equal(t, 1, total.AllocationSizeMin)
	require.Equal(t, 4097, total.AllocationSizeMax)
}
