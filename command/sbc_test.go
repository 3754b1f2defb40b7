package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartStopUnitVariants(t *testing.T) {
	assert.Equal(t, byte(0x00), StopUnit().Opcode[4])
	assert.Equal(t, byte(0x01), StartUnit().Opcode[4])
	assert.Equal(t, byte(0x03), LoadMedium().Opcode[4])
	assert.Equal(t, byte(0x02), EjectMedium().Opcode[4])
}

func TestStartStopUnitImmediateBit(t *testing.T) {
	cmd := StartStopUnit(true, false, true)
	assert.Equal(t, byte(0x01), cmd.Opcode[1])
}
