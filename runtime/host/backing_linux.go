//go:build linux

package host

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// allocBacking maps length bytes of anonymous, zeroed memory
func allocBacking(length int) ([]byte, bool, error) {
	data, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, false, errors.Wrapf(err, "mmap of %d bytes failed", length)
	}

	return data, true, nil
}

func adviseHugePages(data []byte) error {
	return unix.Madvise(data, unix.MADV_HUGEPAGE)
}

func releaseBacking(data []byte, mapped bool) error {
	if !mapped {
		return nil
	}

	return errors.Wrap(unix.Munmap(data), "munmap failed")
}
