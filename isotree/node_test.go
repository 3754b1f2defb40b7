package isotree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirectoryIsEmpty(t *testing.T) {
	d := NewDirectory("root")
	assert.Equal(t, KindDirectory, d.Kind)
	assert.Equal(t, 0, d.Len())
}

func TestNewSymlinkFields(t *testing.T) {
	s := NewSymlink("link", "../target")
	assert.Equal(t, KindSymlink, s.Kind)
	assert.Equal(t, "../target", s.Target)
}

func TestNewSpecialFields(t *testing.T) {
	s := NewSpecial("dev0", 8, 1)
	assert.Equal(t, KindSpecial, s.Kind)
	assert.Equal(t, uint32(8), s.DeviceMajor)
	assert.Equal(t, uint32(1), s.DeviceMinor)
}

func TestRetainReleaseOrphanDetection(t *testing.T) {
	n := NewDirectory("x")
	n.Retain()
	n.Retain()
	assert.False(t, n.Release())
	assert.True(t, n.Release())
}

func TestFingerprintRoundTrip(t *testing.T) {
	n := newNode("f", KindFile)
	_, _, ok := n.Fingerprint()
	assert.False(t, ok)

	n.SetFingerprint(42, 1001)
	dev, inode, ok := n.Fingerprint()
	require.True(t, ok)
	assert.Equal(t, uint64(42), dev)
	assert.Equal(t, uint64(1001), inode)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "directory", KindDirectory.String())
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "symlink", KindSymlink.String())
	assert.Equal(t, "special", KindSpecial.String())
	assert.Equal(t, "boot-catalog", KindBootCatalog.String())
}
