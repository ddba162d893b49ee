package usm_test

import (
	"fmt"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/memutils"
	"github.com/computebench/arsenal/placement"
	"github.com/computebench/arsenal/runtime/host"
	"github.com/computebench/arsenal/topology"
	"github.com/computebench/arsenal/usm"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func hostResolver(t *testing.T, options host.CreateOptions) (*host.Runtime, *usm.Resolver) {
	logger := slog.New(slog.NewJSONHandler(io.Discard))
	provider := topology.NewStaticProvider(topology.RootConfig{Name: "emulated", SubDevices: 2})

	runtime, err := host.New(logger, provider, options)
	require.NoError(t, err)

	resolver, err := usm.New(logger, provider, runtime, runtime, usm.CreateOptions{})
	require.NoError(t, err)

	return runtime, resolver
}

func TestRoundTrip(t *testing.T) {
	runtime, resolver := hostResolver(t, host.CreateOptions{})

	for _, p := range placement.All() {
		for _, selection := range topology.UsmSelections() {
			if !resolver.IsFeasible(p, selection) {
				continue
			}

			for _, size := range []int{1, 4096, 2*1024*1024 + 1} {
				t.Run(fmt.Sprintf("%s/%s/%d", p, selection, size), func(t *testing.T) {
					handle, err := resolver.Allocate(p, selection, size)
					require.NoError(t, err)
					require.Equal(t, size, handle.Size())
					require.Equal(t, placement.RequiresImport(p), handle.Imported())
					require.Equal(t, placement.RequiresImport(p), runtime.IsImported(handle.Address()))

					data, err := runtime.Bytes(handle.Address(), handle.Size())
					require.NoError(t, err)
					for i := range data {
						data[i] = byte(i)
					}

					require.NoError(t, resolver.Deallocate(p, handle))
				})
			}
		}
	}

	require.NoError(t, runtime.CheckLeaks())
	require.Equal(t, 0, runtime.OutstandingImports())
	require.NoError(t, runtime.Validate())
	require.NoError(t, runtime.Destroy())
}

func TestAlignmentGuarantees(t *testing.T) {
	runtime, resolver := hostResolver(t, host.CreateOptions{})

	testCases := map[string]struct {
		Placement  placement.Placement
		Alignment  uint
		Misaligned bool
	}{
		"PlainHeapMisaligned": {Placement: placement.PlainHeapMisaligned, Alignment: memutils.PageSize, Misaligned: true},
		"PlainHeap4KAligned":  {Placement: placement.PlainHeap4KAligned, Alignment: memutils.PageSize},
		"PlainHeap2MAligned":  {Placement: placement.PlainHeap2MAligned, Alignment: memutils.HugePageSize},
		"ImportedMisaligned":  {Placement: placement.ImportedMisaligned, Alignment: memutils.PageSize, Misaligned: true},
		"Imported4KAligned":   {Placement: placement.Imported4KAligned, Alignment: memutils.PageSize},
		"Imported2MAligned":   {Placement: placement.Imported2MAligned, Alignment: memutils.HugePageSize},
	}

	for testName, testCase := range testCases {
		t.Run(testName, func(t *testing.T) {
			for _, size := range []int{1, 4096, 2*1024*1024 + 1} {
				handle, err := resolver.Allocate(testCase.Placement, topology.Host, size)
				require.NoError(t, err)
				require.Equal(t, size, handle.Size())

				if testCase.Misaligned {
					require.Equal(t, usm.MisalignedOffset, handle.Offset())
					require.True(t, memutils.IsAligned(handle.Address()-uintptr(usm.MisalignedOffset), testCase.Alignment))
					require.False(t, memutils.IsAligned(handle.Address(), 8))
				} else {
					require.True(t, memutils.IsAligned(handle.Address(), testCase.Alignment))
				}

				data, err := runtime.Bytes(handle.Address(), size)
				require.NoError(t, err)
				data[size-1] = 0xFF

				require.NoError(t, resolver.Free(handle))
			}
		})
	}

	require.NoError(t, runtime.CheckLeaks())
}

func TestImportUnsupportedIsInfeasible(t *testing.T) {
	runtime, resolver := hostResolver(t, host.CreateOptions{DisableHostPointerImport: true})

	for _, p := range []placement.Placement{placement.ImportedMisaligned, placement.Imported4KAligned, placement.Imported2MAligned} {
		require.False(t, resolver.IsFeasible(p, topology.Host))

		_, err := resolver.Allocate(p, topology.Host, 64)
		require.True(t, errors.Is(err, usm.ErrImportFailure))
	}

	require.NoError(t, runtime.CheckLeaks())
}

func TestSharedUnsupported(t *testing.T) {
	_, resolver := hostResolver(t, host.CreateOptions{DisableSharedAllocations: true})

	require.False(t, resolver.IsFeasible(placement.Shared, topology.Root|topology.Host))
	require.True(t, resolver.IsFeasible(placement.Shared, topology.Root))
	require.True(t, resolver.IsFeasible(placement.Shared, topology.Host))

	_, err := resolver.Allocate(placement.Device, topology.Root|topology.Host, 64)
	require.True(t, errors.Is(err, host.ErrSharedUnsupported))
}

func TestFeasible(t *testing.T) {
	provider := topology.NewStaticProvider(topology.RootConfig{Name: "gpu0", SubDevices: 1})

	testCases := map[string]struct {
		Placement    placement.Placement
		Selection    topology.Selection
		Capabilities usm.Capabilities
		Provider     topology.Provider
		Expected     bool
	}{
		"DeviceOnRoot":           {Placement: placement.Device, Selection: topology.Root, Capabilities: fullCapabilities, Provider: provider, Expected: true},
		"SharedOnRootAndHost":    {Placement: placement.Shared, Selection: topology.Root | topology.Host, Capabilities: fullCapabilities, Provider: provider, Expected: true},
		"SharedWithoutSupport":   {Placement: placement.Shared, Selection: topology.Root | topology.Host, Provider: provider, Expected: false},
		"HostOnHost":             {Placement: placement.Host, Selection: topology.Host, Provider: provider, Expected: true},
		"Ambiguous":              {Placement: placement.Device, Selection: topology.Root | topology.Tile0, Capabilities: fullCapabilities, Provider: provider, Expected: false},
		"NoTarget":               {Placement: placement.Device, Selection: topology.None, Capabilities: fullCapabilities, Provider: provider, Expected: false},
		"MissingTile":            {Placement: placement.Device, Selection: topology.Tile1, Capabilities: fullCapabilities, Provider: provider, Expected: false},
		"MissingTileNoProvider":  {Placement: placement.Device, Selection: topology.Tile1, Capabilities: fullCapabilities, Expected: true},
		"HeapIgnoresSelection":   {Placement: placement.PlainHeap, Selection: topology.Root | topology.Tile0, Provider: provider, Expected: true},
		"ImportWithoutSupport":   {Placement: placement.Imported4KAligned, Selection: topology.Host, Provider: provider, Expected: false},
		"ImportWithSupport":      {Placement: placement.Imported4KAligned, Selection: topology.Host, Capabilities: fullCapabilities, Provider: provider, Expected: true},
		"UnknownPlacement":       {Placement: placement.Unknown, Selection: topology.Host, Capabilities: fullCapabilities, Provider: provider, Expected: false},
		"InvalidSelectionBits":   {Placement: placement.PlainHeap, Selection: topology.Selection(1 << 20), Provider: provider, Expected: false},
		"HostAndTileWithSupport": {Placement: placement.Host, Selection: topology.Tile0 | topology.Host, Capabilities: fullCapabilities, Provider: provider, Expected: true},
	}

	for testName, testCase := range testCases {
		t.Run(testName, func(t *testing.T) {
			require.Equal(t, testCase.Expected, usm.Feasible(testCase.Placement, testCase.Selection, testCase.Capabilities, testCase.Provider))
		})
	}
}

func TestFeasibleMatchesAllocate(t *testing.T) {
	runtime, resolver := hostResolver(t, host.CreateOptions{})

	invalid := topology.Selection(1 << 10)
	selections := append(topology.UsmSelections(),
		topology.Root|topology.Tile0, topology.None, topology.Tile3,
		topology.Host|invalid, topology.Root|invalid, invalid,
	)
	for _, p := range placement.All() {
		for _, selection := range selections {
			handle, err := resolver.Allocate(p, selection, 64)
			require.Equal(t, resolver.IsFeasible(p, selection), err == nil, "%s on %s: %v", p, selection, err)
			if err == nil {
				require.NoError(t, resolver.Free(handle))
			}
		}
	}

	require.NoError(t, runtime.CheckLeaks())
}
