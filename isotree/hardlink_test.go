package isotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildOrdersByDevInode(t *testing.T) {
	root := NewDirectory("")
	a := newNode("a", KindFile)
	a.SetFingerprint(2, 5)
	b := newNode("b", KindFile)
	b.SetFingerprint(1, 9)
	c := newNode("c", KindFile)
	c.SetFingerprint(1, 3)
	_, err := root.AddChild("a", a, OverwriteNever)
	require.NoError(t, err)
	_, err = root.AddChild("b", b, OverwriteNever)
	require.NoError(t, err)
	_, err = root.AddChild("c", c, OverwriteNever)
	require.NoError(t, err)

	idx := NewHardlinkIndex()
	idx.Invalidate()
	assert.True(t, idx.Dirty())
	idx.Rebuild(root)
	assert.False(t, idx.Dirty())

	assert.Equal(t, []*Node{c, b, a}, []*Node{idx.hln[0].node, idx.hln[1].node, idx.hln[2].node})
}

func TestSiblingsExcludesSelf(t *testing.T) {
	root := NewDirectory("")
	a := newNode("a", KindFile)
	a.SetFingerprint(1, 1)
	b := newNode("b", KindFile)
	b.SetFingerprint(1, 1)
	unrelated := newNode("u", KindFile)
	unrelated.SetFingerprint(2, 2)
	for _, n := range []*Node{a, b, unrelated} {
		_, err := root.AddChild(n.Name, n, OverwriteNever)
		require.NoError(t, err)
	}

	idx := NewHardlinkIndex()
	idx.Rebuild(root)

	sibs := idx.Siblings(a)
	require.Len(t, sibs, 1)
	assert.Same(t, b, sibs[0])
}

func TestSiblingsNodeWithoutFingerprint(t *testing.T) {
	idx := NewHardlinkIndex()
	n := newNode("n", KindFile)
	assert.Nil(t, idx.Siblings(n))
}

func TestMarkDiskMatchFlagsSiblingsForWiden(t *testing.T) {
	root := NewDirectory("")
	a := newNode("a", KindFile)
	a.SetFingerprint(1, 1)
	b := newNode("b", KindFile)
	b.SetFingerprint(1, 1)
	for _, n := range []*Node{a, b} {
		_, err := root.AddChild(n.Name, n, OverwriteNever)
		require.NoError(t, err)
	}

	idx := NewHardlinkIndex()
	idx.Rebuild(root)

	idx.MarkDiskMatch(a, 1, 1)
	assert.True(t, idx.NeedsWiden(b))
	assert.False(t, idx.NeedsWiden(a))

	idx.ClearWiden(b)
	assert.False(t, idx.NeedsWiden(b))
}

func TestRecordTargetKeepsFirstWrite(t *testing.T) {
	idx := NewHardlinkIndex()
	n := newNode("n", KindFile)
	idx.RecordTarget(n, "/first")
	idx.RecordTarget(n, "/second")

	target, ok := idx.Target(n)
	require.True(t, ok)
	assert.Equal(t, "/first", target)
}

func TestTargetMissing(t *testing.T) {
	idx := NewHardlinkIndex()
	_, ok := idx.Target(newNode("n", KindFile))
	assert.False(t, ok)
}
