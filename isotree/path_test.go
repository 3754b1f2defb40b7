package isotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T) *Node {
	t.Helper()
	root := NewDirectory("")
	a, err := root.AddChild("a", NewDirectory("a"), OverwriteNever)
	require.NoError(t, err)
	_, err = a.AddChild("b.txt", newNode("b.txt", KindFile), OverwriteNever)
	require.NoError(t, err)
	return root
}

func TestResolveFindsNestedFile(t *testing.T) {
	root := buildTree(t)
	n, err := Resolve(root, "/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, KindFile, n.Kind)
}

func TestResolveMissingReturnsNotFound(t *testing.T) {
	root := buildTree(t)
	_, err := Resolve(root, "/a/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveAboveRootErrors(t *testing.T) {
	root := buildTree(t)
	_, err := Resolve(root, "../escape")
	assert.ErrorIs(t, err, ErrAboveRoot)
}

func TestResolveNameTooLong(t *testing.T) {
	root := buildTree(t)
	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err := Resolve(root, string(long))
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestResolveParentSplitsLeaf(t *testing.T) {
	root := buildTree(t)
	dir, leaf, err := ResolveParent(root, "/a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "b.txt", leaf)
	assert.Equal(t, KindDirectory, dir.Kind)
	assert.NotNil(t, dir.Child("b.txt"))
}

func TestMkdirAllCreatesIntermediates(t *testing.T) {
	root := NewDirectory("")
	n, err := MkdirAll(root, "/x/y/z", "")
	require.NoError(t, err)
	assert.Equal(t, "z", n.Name)
	assert.Equal(t, KindDirectory, n.Kind)
	_, err = Resolve(root, "/x/y")
	require.NoError(t, err)
}

func TestMkdirAllRefusesThroughFile(t *testing.T) {
	root := buildTree(t)
	_, err := MkdirAll(root, "/a/b.txt/sub", "")
	assert.Error(t, err)
}

func TestDotAndDotDotCollapse(t *testing.T) {
	root := buildTree(t)
	n, err := Resolve(root, "/a/../a/./b.txt")
	require.NoError(t, err)
	assert.Equal(t, KindFile, n.Kind)
}
