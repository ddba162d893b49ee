package topology_test

import (
	"testing"

	"github.com/computebench/arsenal/topology"
	"github.com/stretchr/testify/require"
)

func TestSelectionHelpers(t *testing.T) {
	testCases := []struct {
		selection    topology.Selection
		computeCount int
		includesHost bool
		withoutHost  topology.Selection
	}{
		{topology.None, 0, false, topology.None},
		{topology.Host, 0, true, topology.None},
		{topology.Root, 1, false, topology.Root},
		{topology.Root | topology.Host, 1, true, topology.Root},
		{topology.Tile1 | topology.Host, 1, true, topology.Tile1},
		{topology.Root | topology.Tile0, 2, false, topology.Root | topology.Tile0},
		{topology.Tile0 | topology.Tile1 | topology.Tile2 | topology.Host, 3, true, topology.Tile0 | topology.Tile1 | topology.Tile2},
	}

	for _, testCase := range testCases {
		t.Run(testCase.selection.String(), func(t *testing.T) {
			require.Equal(t, testCase.computeCount, testCase.selection.ComputeDeviceCount())
			require.Equal(t, testCase.includesHost, testCase.selection.IncludesHost())
			require.Equal(t, testCase.withoutHost, testCase.selection.WithoutHost())
			require.False(t, testCase.selection.WithoutHost().IncludesHost())
		})
	}
}

func TestSelectionStringAndParse(t *testing.T) {
	require.Equal(t, "Root|Host", (topology.Root | topology.Host).String())
	require.Equal(t, "None", topology.None.String())

	selection, err := topology.ParseSelection("root, host")
	require.NoError(t, err)
	require.Equal(t, topology.Root|topology.Host, selection)

	selection, err = topology.ParseSelection("Tile0|Tile3")
	require.NoError(t, err)
	require.Equal(t, topology.Tile0|topology.Tile3, selection)

	selection, err = topology.ParseSelection("none")
	require.NoError(t, err)
	require.Equal(t, topology.None, selection)

	_, err = topology.ParseSelection("Tile9")
	require.Error(t, err)

	for _, s := range topology.UsmSelections() {
		parsed, err := topology.ParseSelection(s.String())
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	require.False(t, topology.Selection(1<<10).IsValid())
	_, err = topology.Selection(1 << 10).MarshalText()
	require.Error(t, err)
}

func TestSubDeviceIndex(t *testing.T) {
	index, ok := topology.Tile2.SubDeviceIndex()
	require.True(t, ok)
	require.Equal(t, 2, index)

	_, ok = topology.Root.SubDeviceIndex()
	require.False(t, ok)
	_, ok = (topology.Tile0 | topology.Tile1).SubDeviceIndex()
	require.False(t, ok)

	require.Equal(t, topology.Tile3, topology.TileSelection(3))
	require.Equal(t, topology.None, topology.TileSelection(4))
}

func TestUsmSelectionsNameAtMostOneDevice(t *testing.T) {
	for _, s := range topology.UsmSelections() {
		require.LessOrEqual(t, s.ComputeDeviceCount(), 1, s.String())
	}
}
