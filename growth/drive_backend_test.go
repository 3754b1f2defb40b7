package growth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isoburn/isoburn/drive"
	"github.com/isoburn/isoburn/transport"
)

func TestDriveBackendCapacityAlwaysUnknown(t *testing.T) {
	d := drive.New(transport.NewDummy(), "/dev/test0")
	b := NewDriveBackend(d)
	total, available, ok := b.Capacity()
	assert.False(t, ok)
	assert.Equal(t, int64(0), total)
	assert.Equal(t, int64(0), available)
}

func TestDriveBackendSessionsFallsBackToSingleExtent(t *testing.T) {
	d := drive.New(transport.NewDummy(), "/dev/test0")
	b := NewDriveBackend(d)
	sessions, err := b.Sessions()
	assert.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestDriveBackendEmulatedTOCStartsEmpty(t *testing.T) {
	d := drive.New(transport.NewDummy(), "/dev/test0")
	b := NewDriveBackend(d)
	b.EnableEmulatedTOC()
	sessions, err := b.Sessions()
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}
