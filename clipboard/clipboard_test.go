package clipboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(t *testing.T, isUnsupported bool, fn func(string) error) {
	t.Helper()
	origWrite, origUnsupported := writeAll, unsupported
	t.Cleanup(func() { writeAll, unsupported = origWrite, origUnsupported })
	writeAll = fn
	unsupported = func() bool { return isUnsupported }
}

func TestCopy(t *testing.T) {
	var got string
	stub(t, false, func(s string) error { got = s; return nil })

	require.NoError(t, Copy("/chunkloader set --minutes 60"))
	assert.Equal(t, "/chunkloader set --minutes 60", got)
}

func TestCopyUnsupported(t *testing.T) {
	called := false
	stub(t, true, func(string) error { called = true; return nil })

	assert.ErrorIs(t, Copy("x"), ErrUnavailable)
	assert.False(t, called)
}

func TestCopyWriteFailure(t *testing.T) {
	boom := errors.New("exit status 1")
	stub(t, false, func(string) error { return boom })

	assert.ErrorIs(t, Copy("x"), boom)
}
