package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WritesPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentdeck.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), strings.TrimSpace(string(data)))
	assert.Equal(t, path, l.Path())
}

func TestAcquire_SecondHolderRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentdeck.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	defer first.Release()

	_, err = Acquire(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another agentdeck instance")
}

func TestAcquire_ReleasedLockCanBeRetaken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentdeck.lock")

	first, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, first.Release())

	second, err := Acquire(path)
	require.NoError(t, err)
	defer second.Release()
}

func TestAcquire_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "agentdeck.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()
}

func TestAcquire_EmptyPath(t *testing.T) {
	_, err := Acquire("")
	require.Error(t, err)
}

func TestRelease_NilSafe(t *testing.T) {
	var l *PIDLock
	assert.NoError(t, l.Release())
}

func TestRelease_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentdeck.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	require.NoError(t, l.Release())
	assert.NoError(t, l.Release())
}
