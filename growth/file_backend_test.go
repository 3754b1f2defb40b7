package growth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileBackendCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	_, err := NewFileBackend(path, false)
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestFileBackendNWAReflectsFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o644))
	b, err := NewFileBackend(path, false)
	require.NoError(t, err)

	nwa, err := b.NWA()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), nwa)
}

func TestFileBackendOpenSessionAppendsByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))
	b, err := NewFileBackend(path, false)
	require.NoError(t, err)

	session, err := b.OpenSession()
	require.NoError(t, err)
	_, err = session.Write([]byte("more"))
	require.NoError(t, err)
	require.NoError(t, session.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existingmore", string(data))
}

func TestFileBackendOpenSessionOverwritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))
	b, err := NewFileBackend(path, true)
	require.NoError(t, err)

	session, err := b.OpenSession()
	require.NoError(t, err)
	_, err = session.Write([]byte("new"))
	require.NoError(t, err)
	require.NoError(t, session.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFileBackendSessionsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	b, err := NewFileBackend(path, false)
	require.NoError(t, err)
	sessions, err := b.Sessions()
	require.NoError(t, err)
	assert.Nil(t, sessions)
}

func TestFileBackendEmulatedTOCRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	b, err := NewFileBackend(path, false)
	require.NoError(t, err)
	b.EnableEmulatedTOC()

	session, err := b.OpenSession()
	require.NoError(t, err)
	_, err = session.Write(make([]byte, blockSize*3))
	require.NoError(t, err)
	require.NoError(t, session.Close())

	sessions, err := b.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, uint32(0), sessions[0].StartLBA)
	assert.Equal(t, uint32(3), sessions[0].Blocks)

	b2, err := NewFileBackend(path, false)
	require.NoError(t, err)
	require.NoError(t, b2.LoadEmulatedTOC())
	reloaded, err := b2.Sessions()
	require.NoError(t, err)
	assert.Equal(t, sessions, reloaded)
}

func TestFileBackendCapacityReportsFromDiskusage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.iso")
	b, err := NewFileBackend(path, false)
	require.NoError(t, err)
	total, available, ok := b.Capacity()
	assert.True(t, ok)
	assert.Greater(t, total, int64(0))
	assert.GreaterOrEqual(t, available, int64(0))
}
