//go:build !debug_mem_utils

package memutils_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/computebench/arsenal/memutils"
	"github.com/stretchr/testify/require"
)

type validateFunc func() error

func (f validateFunc) Validate() error {
	return f()
}

func TestDebugChecksDisabled(t *testing.T) {
	require.NotPanics(t, func() { memutils.DebugCheckPow2(uint(3), "alignment") })
	require.NotPanics(t, func() {
		memutils.DebugValidate(validateFunc(func() error { return errors.New("corrupt") }))
	})
}
