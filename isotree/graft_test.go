package isotree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraftPlainFile(t *testing.T) {
	dir := t.TempDir()
	diskPath := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(diskPath, []byte("data"), 0o644))

	root := NewDirectory("")
	n, err := Graft(root, diskPath, "/f.txt", GraftOptions{})
	require.NoError(t, err)
	assert.Equal(t, KindFile, n.Kind)
	assert.Equal(t, SourceDisk, n.Content.LeafOf().Kind)
	assert.Equal(t, diskPath, n.Content.LeafOf().DiskPath)
}

func TestGraftCreatesIntermediateDirs(t *testing.T) {
	dir := t.TempDir()
	diskPath := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(diskPath, []byte("data"), 0o644))

	root := NewDirectory("")
	_, err := Graft(root, diskPath, "/a/b/f.txt", GraftOptions{})
	require.NoError(t, err)

	got, err := Resolve(root, "/a/b/f.txt")
	require.NoError(t, err)
	assert.Equal(t, KindFile, got.Kind)
}

func TestGraftDirRecursesUnlessNoDive(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "a.txt"), []byte("x"), 0o644))

	root := NewDirectory("")
	n, err := Graft(root, dir, "/tree", GraftOptions{})
	require.NoError(t, err)
	assert.Equal(t, KindDirectory, n.Kind)
	_, err = Resolve(root, "/tree/sub/a.txt")
	require.NoError(t, err)

	root2 := NewDirectory("")
	n2, err := Graft(root2, dir, "/tree", GraftOptions{NoDive: true})
	require.NoError(t, err)
	assert.Equal(t, 0, n2.Len())
}

func TestGraftMkdirOption(t *testing.T) {
	root := NewDirectory("")
	n, err := Graft(root, "", "/empty", GraftOptions{Mkdir: true})
	require.NoError(t, err)
	assert.Equal(t, KindDirectory, n.Kind)
}

func TestGraftSymlinkOption(t *testing.T) {
	root := NewDirectory("")
	n, err := Graft(root, "../target", "/link", GraftOptions{Symlink: true})
	require.NoError(t, err)
	assert.Equal(t, KindSymlink, n.Kind)
	assert.Equal(t, "../target", n.Target)
}

func TestGraftCutOutOption(t *testing.T) {
	dir := t.TempDir()
	diskPath := filepath.Join(dir, "f.bin")
	require.NoError(t, os.WriteFile(diskPath, []byte("0123456789"), 0o644))

	root := NewDirectory("")
	n, err := Graft(root, diskPath, "/cut", GraftOptions{CutOut: true, CutOutOffset: 2, CutOutSize: 3})
	require.NoError(t, err)
	leaf := n.Content.LeafOf()
	assert.Equal(t, SourceCutOut, leaf.Kind)
	assert.Equal(t, int64(2), leaf.Offset)
	assert.Equal(t, int64(3), leaf.Size)
}

func TestGraftExcludePattern(t *testing.T) {
	dir := t.TempDir()
	diskPath := filepath.Join(dir, "f.tmp")
	require.NoError(t, os.WriteFile(diskPath, []byte("x"), 0o644))

	root := NewDirectory("")
	_, err := Graft(root, diskPath, "/f.tmp", GraftOptions{ExcludePatterns: []string{"*.tmp"}})
	assert.Error(t, err)
}

func TestGraftSplitsLargeFileIntoParts(t *testing.T) {
	dir := t.TempDir()
	diskPath := filepath.Join(dir, "big.bin")
	data := make([]byte, 25)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(diskPath, data, 0o644))

	root := NewDirectory("")
	n, err := Graft(root, diskPath, "/big.bin", GraftOptions{SplitThreshold: 10})
	require.NoError(t, err)
	require.Equal(t, KindDirectory, n.Kind)
	assert.Equal(t, 3, n.Len())

	first, err := Resolve(root, "/big.bin/part_001_of_003_at_0_with_10_of_25")
	require.NoError(t, err)
	leaf := first.Content.LeafOf()
	assert.Equal(t, SourceCutOut, leaf.Kind)
	assert.Equal(t, int64(0), leaf.Offset)
	assert.Equal(t, int64(10), leaf.Size)

	last, err := Resolve(root, "/big.bin/part_003_of_003_at_20_with_5_of_25")
	require.NoError(t, err)
	assert.Equal(t, int64(5), last.Content.LeafOf().Size)
}

func TestGraftCreatesIntermediateDirsInheritDiskMtime(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	diskPath := filepath.Join(sub, "f.txt")
	require.NoError(t, os.WriteFile(diskPath, []byte("x"), 0o644))

	wantInfo, err := os.Stat(sub)
	require.NoError(t, err)

	root := NewDirectory("")
	_, err = Graft(root, diskPath, "/a/b/f.txt", GraftOptions{})
	require.NoError(t, err)

	b, err := Resolve(root, "/a/b")
	require.NoError(t, err)
	assert.Equal(t, wantInfo.ModTime().Unix(), b.MTime.Unix())

	a, err := Resolve(root, "/a")
	require.NoError(t, err)
	assert.True(t, a.MTime.IsZero())
}

func TestGraftHideFlagsApplied(t *testing.T) {
	dir := t.TempDir()
	diskPath := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(diskPath, []byte("x"), 0o644))

	root := NewDirectory("")
	n, err := Graft(root, diskPath, "/f.txt", GraftOptions{HideJoliet: true})
	require.NoError(t, err)
	assert.True(t, n.Hide&HideJoliet != 0)
	assert.False(t, n.Hide&HideISORockRidge != 0)
}
