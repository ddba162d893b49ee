package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

const (
	// PageSize is the 4KiB alignment used for page-aligned host allocations
	PageSize uint = 4 * 1024
	// HugePageSize is the 2MiB alignment that matches typical huge page boundaries
	HugePageSize uint = 2 * 1024 * 1024
)

type Number interface {
	~int | ~uint | ~uintptr
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	return value & int(^(alignment - 1))
}

// IsAligned reports whether address is a multiple of alignment. alignment must be a power of two.
func IsAligned(address uintptr, alignment uint) bool {
	return address&uintptr(alignment-1) == 0
}
