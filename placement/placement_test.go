package placement_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/memutils"
	"github.com/computebench/arsenal/placement"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseRoundTrip(t *testing.T) {
	for _, p := range placement.All() {
		parsed, err := placement.Parse(p.String())
		require.NoError(t, err)
		require.Equal(t, p, parsed)
	}

	parsed, err := placement.Parse("shared")
	require.NoError(t, err)
	require.Equal(t, placement.Shared, parsed)
}

func TestParseFailureYieldsUnknown(t *testing.T) {
	parsed, err := placement.Parse("non-USM-mapped")
	require.Error(t, err)
	require.True(t, errors.Is(err, placement.ErrUnknownPlacement))
	require.Equal(t, placement.Unknown, parsed)

	_, err = placement.Parse("Unknown")
	require.Error(t, err)
}

func TestPlacementYAML(t *testing.T) {
	var doc struct {
		Placements []placement.Placement `yaml:"placements"`
	}
	err := yaml.Unmarshal([]byte("placements: [Device, non-USM2MBAligned-imported]\n"), &doc)
	require.NoError(t, err)
	require.Equal(t, []placement.Placement{placement.Device, placement.Imported2MAligned}, doc.Placements)

	err = yaml.Unmarshal([]byte("placements: [Tile0]\n"), &doc)
	require.Error(t, err)

	_, err = placement.Unknown.MarshalText()
	require.Error(t, err)
}

func TestTraits(t *testing.T) {
	testCases := map[placement.Placement]placement.Traits{
		placement.Device:              {Family: placement.FamilyRuntime},
		placement.Host:                {Family: placement.FamilyRuntime},
		placement.Shared:              {Family: placement.FamilyRuntime},
		placement.PlainHeap:           {Family: placement.FamilyHeap},
		placement.PlainHeapMisaligned: {Family: placement.FamilyAligned, Alignment: memutils.PageSize, Misaligned: true},
		placement.PlainHeap4KAligned:  {Family: placement.FamilyAligned, Alignment: memutils.PageSize},
		placement.PlainHeap2MAligned:  {Family: placement.FamilyAligned, Alignment: memutils.HugePageSize},
		placement.ImportedMisaligned:  {Family: placement.FamilyAligned, NeedsImport: true, Alignment: memutils.PageSize, Misaligned: true},
		placement.Imported4KAligned:   {Family: placement.FamilyAligned, NeedsImport: true, Alignment: memutils.PageSize},
		placement.Imported2MAligned:   {Family: placement.FamilyAligned, NeedsImport: true, Alignment: memutils.HugePageSize},
	}
	require.Len(t, testCases, len(placement.All()))

	for p, expected := range testCases {
		traits, ok := placement.LookupTraits(p)
		require.True(t, ok, p.String())
		require.Equal(t, expected, traits, p.String())
		require.Equal(t, expected.NeedsImport, placement.RequiresImport(p))
		require.Equal(t, expected.Family == placement.FamilyRuntime, placement.IsRuntimeManaged(p))
	}

	_, ok := placement.LookupTraits(placement.Unknown)
	require.False(t, ok)
	require.Panics(t, func() { placement.MustTraits(placement.Unknown) })
	require.Panics(t, func() { placement.MustTraits(placement.Placement(99)) })
}

func TestRuntimePlacement(t *testing.T) {
	for _, r := range placement.RuntimeAll() {
		p := r.Placement()
		narrowed, ok := p.Runtime()
		require.True(t, ok)
		require.Equal(t, r, narrowed)
		require.Equal(t, p.String(), r.String())
	}

	_, ok := placement.PlainHeap.Runtime()
	require.False(t, ok)
	require.Panics(t, func() { placement.RuntimeUnknown.Placement() })
}

func TestSubsets(t *testing.T) {
	require.Len(t, placement.All(), 10)
	require.NotContains(t, placement.All(), placement.Unknown)
	require.NotContains(t, placement.Stable(), placement.PlainHeap)

	for _, p := range placement.NonRuntime() {
		require.False(t, placement.IsRuntimeManaged(p))
		require.False(t, placement.RequiresImport(p))
	}

	limited, ok := placement.Subset("limited")
	require.True(t, ok)
	require.Equal(t, []placement.Placement{placement.Device, placement.Host, placement.PlainHeap4KAligned}, limited)

	_, ok = placement.Subset("everything")
	require.False(t, ok)
}
