package topology

import (
	"math/bits"
	"strings"

	"github.com/cockroachdb/errors"
)

// Selection is a set of target locations: the root device, individual sub-devices (tiles) of the
// root device, and the host
type Selection int32

const (
	// Root is the root device as a whole
	Root Selection = 1 << iota
	// Tile0 is the first sub-device of the root device
	Tile0
	// Tile1 is the second sub-device of the root device
	Tile1
	// Tile2 is the third sub-device of the root device
	Tile2
	// Tile3 is the fourth sub-device of the root device
	Tile3
	// Host is the host processor and its memory
	Host

	// None selects no location at all
	None Selection = 0

	tileMask    = Tile0 | Tile1 | Tile2 | Tile3
	computeMask = Root | tileMask
	allMask     = computeMask | Host
)

var selectionNames = []struct {
	flag Selection
	name string
}{
	{Root, "Root"},
	{Tile0, "Tile0"},
	{Tile1, "Tile1"},
	{Tile2, "Tile2"},
	{Tile3, "Tile3"},
	{Host, "Host"},
}

func (s Selection) String() string {
	if s == None {
		return "None"
	}

	var parts []string
	for _, entry := range selectionNames {
		if s&entry.flag != 0 {
			parts = append(parts, entry.name)
		}
	}
	if s&^allMask != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "|")
}

// IsValid reports whether s only names known locations
func (s Selection) IsValid() bool {
	return s&^allMask == 0
}

// Has reports whether every location in other is also in s
func (s Selection) Has(other Selection) bool {
	return s&other == other
}

// IncludesHost reports whether the host is part of the selection
func (s Selection) IncludesHost() bool {
	return s&Host != 0
}

// WithoutHost returns the selection with the host removed
func (s Selection) WithoutHost() Selection {
	return s &^ Host
}

// ComputeDeviceCount is the number of non-host devices named by the selection
func (s Selection) ComputeDeviceCount() int {
	return bits.OnesCount32(uint32(s & computeMask))
}

// SubDeviceIndex returns the tile index named by a single-tile selection. The second return is
// false when the selection does not name exactly one tile and nothing else.
func (s Selection) SubDeviceIndex() (int, bool) {
	if s&^tileMask != 0 || bits.OnesCount32(uint32(s)) != 1 {
		return -1, false
	}
	return bits.TrailingZeros32(uint32(s)) - bits.TrailingZeros32(uint32(Tile0)), true
}

// TileSelection returns the selection naming the tile at index, or None when index is out of range
func TileSelection(index int) Selection {
	if index < 0 || index > 3 {
		return None
	}
	return Tile0 << index
}

// ParseSelection parses names joined by '|' or ',', such as "Root|Host". Names are case-insensitive
// and "None" parses to the empty selection.
func ParseSelection(text string) (Selection, error) {
	if strings.EqualFold(strings.TrimSpace(text), "none") {
		return None, nil
	}

	var result Selection
	for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(part)
		found := false
		for _, entry := range selectionNames {
			if strings.EqualFold(entry.name, part) {
				result |= entry.flag
				found = true
				break
			}
		}
		if !found {
			return None, errors.Newf("unknown device selection %q in %q", part, text)
		}
	}

	if result == None {
		return None, errors.Newf("empty device selection %q", text)
	}
	return result, nil
}

func (s Selection) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, errors.Newf("invalid device selection %d", int32(s))
	}
	return []byte(s.String()), nil
}

func (s *Selection) UnmarshalText(text []byte) error {
	parsed, err := ParseSelection(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UsmSelections lists the selections meaningful for a single runtime-managed allocation: at most one
// compute device, optionally with the host
func UsmSelections() []Selection {
	return []Selection{
		Host,
		Root,
		Root | Host,
		Tile0,
		Tile0 | Host,
		Tile1,
		Tile1 | Host,
	}
}

// ResourceSelections lists the selections a device-side resource such as a queue can be created on
func ResourceSelections() []Selection {
	return []Selection{Root, Tile0, Tile1, Tile2, Tile3}
}
