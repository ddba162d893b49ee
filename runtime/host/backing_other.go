//go:build !linux

package host

func allocBacking(length int) ([]byte, bool, error) {
	return make([]byte, length), false, nil
}

func adviseHugePages(data []byte) error {
	return nil
}

func releaseBacking(data []byte, mapped bool) error {
	return nil
}
