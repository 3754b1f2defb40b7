package isotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWriteParams(t *testing.T) {
	p := DefaultWriteParams()
	assert.Equal(t, Level3, p.Compliance)
	assert.True(t, p.RockRidge)
	assert.True(t, p.Joliet)
	assert.Equal(t, int64(2048), p.Alignment)
}

func TestComputeLayoutPlacesDescriptorsFirst(t *testing.T) {
	v := NewVolume("V")
	l, err := ComputeLayout(v, DefaultWriteParams(), 16)
	require.NoError(t, err)
	require.NotEmpty(t, l.Extents)
	assert.Equal(t, "pvd", l.Extents[0].Kind)
	assert.Equal(t, int64(16), l.Extents[0].LBA)
	assert.Equal(t, "svd", l.Extents[1].Kind)
}

func TestComputeLayoutOmitsSVDWithoutJoliet(t *testing.T) {
	v := NewVolume("V")
	params := DefaultWriteParams()
	params.Joliet = false
	l, err := ComputeLayout(v, params, 0)
	require.NoError(t, err)
	for _, e := range l.Extents {
		assert.NotEqual(t, "svd", e.Kind)
	}
}

func TestComputeLayoutErrorsOnUnknownFileSize(t *testing.T) {
	v := NewVolume("V")
	n := newNode("f", KindFile)
	n.Content = NewLeafStream(&Leaf{Kind: SourceExternal})
	_, err := v.Root.AddChild("f", n, OverwriteNever)
	require.NoError(t, err)

	_, err = ComputeLayout(v, DefaultWriteParams(), 0)
	assert.Error(t, err)
}

func TestComputeLayoutPlacesFileExtentWithCorrectBlocks(t *testing.T) {
	v := NewVolume("V")
	n := newNode("f", KindFile)
	n.Content = NewLeafStream(&Leaf{Kind: SourceCutOut, Size: 5000})
	_, err := v.Root.AddChild("f", n, OverwriteNever)
	require.NoError(t, err)

	l, err := ComputeLayout(v, DefaultWriteParams(), 0)
	require.NoError(t, err)

	var found *Extent
	for i := range l.Extents {
		if l.Extents[i].Kind == "file" {
			found = &l.Extents[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, int64(3), found.Blocks) // ceil(5000/2048) == 3
}

func TestComputeLayoutIncludesBootCatalogWhenPresent(t *testing.T) {
	v := NewVolume("V")
	n := newNode("boot.img", KindFile)
	n.Content = NewLeafStream(&Leaf{Kind: SourceCutOut, Size: 512})
	_, err := v.Root.AddChild("boot.img", n, OverwriteNever)
	require.NoError(t, err)
	v.BootCatalog.Entries = append(v.BootCatalog.Entries, BootEntry{
		Spec: BootImageSpec{BootFile: "/boot.img"},
		Node: n,
	})

	l, err := ComputeLayout(v, DefaultWriteParams(), 0)
	require.NoError(t, err)
	hasCatalog := false
	for _, e := range l.Extents {
		if e.Kind == "boot-catalog" {
			hasCatalog = true
		}
	}
	assert.True(t, hasCatalog)
}

func TestComputeLayoutAppliesPadding(t *testing.T) {
	v := NewVolume("V")
	params := DefaultWriteParams()
	params.PaddingBytes = 4096
	l, err := ComputeLayout(v, params, 0)
	require.NoError(t, err)
	last := l.Extents[len(l.Extents)-1]
	assert.Equal(t, "padding", last.Kind)
	assert.Equal(t, int64(2), last.Blocks)
}

func TestComputeLayoutPropagatesValidateError(t *testing.T) {
	v := NewVolume("V")
	orphan := newNode("boot.img", KindFile)
	v.BootCatalog.Entries = append(v.BootCatalog.Entries, BootEntry{
		Spec: BootImageSpec{BootFile: "/boot.img"},
		Node: orphan,
	})
	_, err := ComputeLayout(v, DefaultWriteParams(), 0)
	assert.Error(t, err)
}
