package dispatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarker_RoundTrip(t *testing.T) {
	session := t.TempDir()

	require.NoError(t, WriteMarker(session, "task-1", StatusCompleted))

	got, ok := ReadMarker(session, "task-1")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got)
}

func TestMarker_OverwriteTakesLastToken(t *testing.T) {
	session := t.TempDir()

	require.NoError(t, WriteMarker(session, "task-1", StatusRunning))
	require.NoError(t, WriteMarker(session, "task-1", StatusCancelled))

	got, ok := ReadMarker(session, "task-1")
	require.True(t, ok)
	assert.Equal(t, StatusCancelled, got)
}

func TestMarker_MissingReadsAsAbsent(t *testing.T) {
	_, ok := ReadMarker(t.TempDir(), "task-1")
	assert.False(t, ok)
}

func TestMarker_InvalidTokenReadsAsAbsent(t *testing.T) {
	session := t.TempDir()
	path := MarkerPath(session, "task-1")
	require.NoError(t, os.WriteFile(path, []byte("segfault\n"), 0o644))

	_, ok := ReadMarker(session, "task-1")
	assert.False(t, ok)
}

func TestMarker_TrailingWhitespaceTolerated(t *testing.T) {
	session := t.TempDir()
	path := MarkerPath(session, "task-1")
	require.NoError(t, os.WriteFile(path, []byte("  failed \n\n"), 0o644))

	got, ok := ReadMarker(session, "task-1")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, got)
}

func TestMarker_WriteRejectsUnknownToken(t *testing.T) {
	err := WriteMarker(t.TempDir(), "task-1", Status("bogus"))
	require.Error(t, err)
}

func TestMarkerPath_DerivedFromTaskID(t *testing.T) {
	got := MarkerPath("/tmp/sessions/task-abc", "task-abc")
	assert.Equal(t, filepath.Join("/tmp/sessions/task-abc", "task-abc.status"), got)
}
