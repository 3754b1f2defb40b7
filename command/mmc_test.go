package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/isoburn/isoburn/transport"
)

func TestRead10CDBFields(t *testing.T) {
	cmd := Read10(0x1234, 4)
	assert.Equal(t, byte(opRead10), cmd.Opcode[0])
	assert.Equal(t, []byte{0x00, 0x00, 0x12, 0x34}, cmd.Opcode[2:6])
	assert.Equal(t, []byte{0x00, 0x04}, cmd.Opcode[7:9])
	assert.Len(t, cmd.Data, 4*2048)
}

func TestWrite10BlockCountFromDataLen(t *testing.T) {
	data := make([]byte, 2048*3)
	cmd := Write10(10, data)
	assert.Equal(t, []byte{0x00, 0x03}, cmd.Opcode[7:9])
	assert.Equal(t, transport.WriteTimeout, cmd.Timeout)
}

func TestReadCapacityDecode(t *testing.T) {
	data := make([]byte, 8)
	putUint32(data[0:4], 1000)
	putUint32(data[4:8], 2048)
	lba, bs := DecodeReadCapacity(data)
	assert.Equal(t, uint32(1000), lba)
	assert.Equal(t, uint32(2048), bs)
}

func TestReadTOCFormatByte(t *testing.T) {
	cmd := ReadTOC(TOCFormatATIP, 32)
	assert.Equal(t, byte(0x04), cmd.Opcode[2])
}

func TestBlankKindAndImmediateBits(t *testing.T) {
	cmd := Blank(BlankSession, 3, true)
	assert.Equal(t, byte(0x16), cmd.Opcode[1])
}

func TestCloseTrackSessionSelector(t *testing.T) {
	track := CloseTrackSession(false, 2)
	session := CloseTrackSession(true, 0)
	assert.Equal(t, byte(0x01), track.Opcode[1])
	assert.Equal(t, byte(0x02), session.Opcode[1])
}
