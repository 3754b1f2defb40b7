package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfileListExtractsFeature0000(t *testing.T) {
	data := make([]byte, 0, 8+4+8)
	data = append(data, 0, 0, 0, 0) // data length, unused here
	data = append(data, 0, 0, 0x00, 0x10) // reserved, current profile 0x0010
	data = append(data, 0x00, 0x00, 0x00, 0x08) // feature 0x0000, additional length 8
	data = append(data, 0x00, 0x08, 0x00, 0x00) // profile 0x0008
	data = append(data, 0x00, 0x10, 0x00, 0x00) // profile 0x0010

	profiles, current, ok := decodeProfileList(data)
	require.True(t, ok)
	assert.Equal(t, uint16(0x0010), current)
	assert.Equal(t, []uint16{0x0008, 0x0010}, profiles)
}

func TestDecodeProfileListTooShort(t *testing.T) {
	_, _, ok := decodeProfileList([]byte{1, 2, 3})
	assert.False(t, ok)
}

func TestDecodeProfileListNoFeature0000(t *testing.T) {
	data := make([]byte, 0, 8+4)
	data = append(data, 0, 0, 0, 0, 0, 0, 0x00, 0x08)
	data = append(data, 0x01, 0x00, 0x00, 0x00) // some other feature, zero-length
	_, _, ok := decodeProfileList(data)
	assert.False(t, ok)
}

func TestDecodeMaxWriteSpeedPicksLargest(t *testing.T) {
	data := make([]byte, 8)
	desc1 := make([]byte, 16)
	desc1[12], desc1[13], desc1[14], desc1[15] = 0, 0, 0x10, 0x00 // 4096
	desc2 := make([]byte, 16)
	desc2[12], desc2[13], desc2[14], desc2[15] = 0, 0, 0x20, 0x00 // 8192
	data = append(data, desc1...)
	data = append(data, desc2...)

	kbs, ok := decodeMaxWriteSpeed(data)
	require.True(t, ok)
	assert.Equal(t, 8192, kbs)
}

func TestDecodeMaxWriteSpeedTooShort(t *testing.T) {
	_, ok := decodeMaxWriteSpeed([]byte{1, 2, 3})
	assert.False(t, ok)
}
