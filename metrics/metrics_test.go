package metrics

import (
	"io"
	"testing"

	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/runtime/host"
	"github.com/computebench/arsenal/topology"
	"github.com/computebench/arsenal/usm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func readyResolver(t *testing.T, collector *Collector) *usm.Resolver {
	logger := slog.New(slog.NewJSONHandler(io.Discard))
	provider := topology.NewStaticProvider(topology.RootConfig{Name: "emulated"})

	runtime, err := host.New(logger, provider, host.CreateOptions{})
	require.NoError(t, err)

	resolver, err := usm.New(logger, provider, runtime, runtime, usm.CreateOptions{
		CallbackOptions: collector.Callbacks(),
	})
	require.NoError(t, err)

	return resolver
}

func TestCollectorCountsAllocations(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	resolver := readyResolver(t, collector)

	shared, err := resolver.Allocate(placement.Device, topology.Root|topology.Host, 1024)
	require.NoError(t, err)
	heap, err := resolver.Allocate(placement.PlainHeap4KAligned, topology.Host, 4096)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Allocations.WithLabelValues("Device", "Shared")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Allocations.WithLabelValues("non-USM4KBAligned", "none")))
	assert.Equal(t, float64(1024), testutil.ToFloat64(collector.LiveBytes.WithLabelValues("Device")))
	assert.Equal(t, float64(4096), testutil.ToFloat64(collector.LiveBytes.WithLabelValues("non-USM4KBAligned")))

	require.NoError(t, resolver.Free(shared))
	require.NoError(t, resolver.Free(heap))

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.Deallocations.WithLabelValues("Device", "Shared")))
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.LiveBytes.WithLabelValues("Device")))
	assert.Equal(t, float64(0), testutil.ToFloat64(collector.LiveBytes.WithLabelValues("non-USM4KBAligned")))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.AllocationSize))
}

func TestCollectorIgnoresFailedAllocations(t *testing.T) {
	collector := NewCollector(prometheus.NewRegistry())
	resolver := readyResolver(t, collector)

	_, err := resolver.Allocate(placement.Device, topology.Root|topology.Tile0, 1024)
	require.Error(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(collector.Allocations))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector(prometheus.NewRegistry())
		NewCollector(prometheus.NewRegistry())
	})

	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() {
		NewCollector(reg)
	})
}
