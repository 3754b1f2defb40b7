package command

import "github.com/isoburn/isoburn/transport"

// opStartStopUnit is the SBC START STOP UNIT opcode.
const opStartStopUnit = 0x1B

// StartStopUnit builds a START STOP UNIT CDB. load selects LoEj/Start per
// SBC-3: start=false,loadEject=false stops the medium; start=true spins it
// up; loadEject=true closes the tray (start must also be true to load,
// false to eject).
func StartStopUnit(start, loadEject, immediate bool) *transport.Command {
	var byte1, byte4 byte
	if immediate {
		byte1 = 0x01
	}
	if loadEject {
		byte4 |= 0x02
	}
	if start {
		byte4 |= 0x01
	}
	cdb := []byte{opStartStopUnit, byte1, 0, 0, byte4, 0}
	return transport.NewCommand(cdb, transport.NoTransfer)
}

// StopUnit spins the medium down without ejecting.
func StopUnit() *transport.Command { return StartStopUnit(false, false, false) }

// StartUnit spins the medium up without touching the tray.
func StartUnit() *transport.Command { return StartStopUnit(true, false, false) }

// LoadMedium closes the tray and starts the medium.
func LoadMedium() *transport.Command { return StartStopUnit(true, true, false) }

// EjectMedium opens the tray.
func EjectMedium() *transport.Command { return StartStopUnit(false, true, false) }
