package isotree

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafOpenDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	leaf := &Leaf{Kind: SourceDisk, DiskPath: path}
	rc, err := leaf.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLeafOpenCutOut(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	leaf := &Leaf{Kind: SourceCutOut, DiskPath: path, Offset: 3, Size: 4}
	rc, err := leaf.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "3456", string(data))

	size, ok := leaf.Size()
	require.True(t, ok)
	assert.Equal(t, int64(4), size)
}

func TestLeafOpenExternalRequiresOpener(t *testing.T) {
	leaf := &Leaf{Kind: SourceExternal}
	_, err := leaf.Open()
	assert.Error(t, err)

	called := false
	leaf.ExternalOpen = func() (io.ReadCloser, error) {
		called = true
		return io.NopCloser(nil), nil
	}
	_, err = leaf.Open()
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStreamWrapUnwrapDepth(t *testing.T) {
	leaf := &Leaf{Kind: SourceDisk, DiskPath: "x"}
	s := NewLeafStream(leaf)
	assert.Equal(t, 0, s.Depth())

	wrapped := s.Wrap(TransformGzip, ".gz")
	assert.Equal(t, 1, wrapped.Depth())
	assert.Same(t, leaf, wrapped.LeafOf())

	back := wrapped.Unwrap()
	assert.Same(t, s, back)

	assert.Same(t, s, s.Unwrap())
}

func TestLeafImageSizeKnownButOpenNeedsReader(t *testing.T) {
	leaf := &Leaf{Kind: SourceImage, ImageSize: 2048}
	size, ok := leaf.Size()
	require.True(t, ok)
	assert.Equal(t, int64(2048), size)

	_, err := leaf.Open()
	assert.Error(t, err)
}
