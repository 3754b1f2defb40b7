package command

import "github.com/isoburn/isoburn/transport"

// SPC CDB opcodes, per SPC-3 and libburn's spc.c static CDB templates.
const (
	opTestUnitReady   = 0x00
	opRequestSense    = 0x03
	opInquiry         = 0x12
	opModeSelect6     = 0x15
	opModeSense6      = 0x1A
	opPreventAllow    = 0x1E
	opModeSense10     = 0x5A
	opModeSelect10    = 0x55
)

// TestUnitReady builds the six-byte TEST UNIT READY CDB, grounded on
// spc.c's SPC_TEST_UNIT_READY template ({0x00,0,0,0,0,0}).
func TestUnitReady() *transport.Command {
	return transport.NewCommand([]byte{opTestUnitReady, 0, 0, 0, 0, 0}, transport.NoTransfer)
}

// RequestSense builds an 18-byte REQUEST SENSE CDB, grounded on
// SPC_REQUEST_SENSE.
func RequestSense() *transport.Command {
	cmd := transport.NewCommand([]byte{opRequestSense, 0, 0, 0, 18, 0}, transport.FromDevice)
	cmd.Data = make([]byte, 18)
	return cmd
}

// InquiryData is the subset of standard INQUIRY data this library exposes,
// grounded on spc.c's struct burn_scsi_inquiry_data layout (vendor at byte
// 8, product at byte 16, revision at byte 32).
type InquiryData struct {
	Vendor   string
	Product  string
	Revision string
}

// Inquiry builds a 36-byte standard INQUIRY CDB.
func Inquiry() *transport.Command {
	cmd := transport.NewCommand([]byte{opInquiry, 0, 0, 0, 36, 0}, transport.FromDevice)
	cmd.Data = make([]byte, 36)
	return cmd
}

// DecodeInquiry extracts vendor/product/revision from a 36-byte INQUIRY
// reply buffer.
func DecodeInquiry(data []byte) InquiryData {
	var id InquiryData
	if len(data) >= 16 {
		id.Vendor = trimField(data[8:16])
	}
	if len(data) >= 32 {
		id.Product = trimField(data[16:32])
	}
	if len(data) >= 36 {
		id.Revision = trimField(data[32:36])
	}
	return id
}

func trimField(b []byte) string {
	end := len(b)
	for end > 0 && (b[end-1] == ' ' || b[end-1] == 0) {
		end--
	}
	return string(b[:end])
}

// PreventMediumRemoval builds the PREVENT ALLOW MEDIUM REMOVAL CDB with the
// prevent bit set, grounded on SPC_PREVENT.
func PreventMediumRemoval() *transport.Command {
	return transport.NewCommand([]byte{opPreventAllow, 0, 0, 0, 1, 0}, transport.NoTransfer)
}

// AllowMediumRemoval builds the same CDB with the prevent bit cleared,
// grounded on SPC_ALLOW.
func AllowMediumRemoval() *transport.Command {
	return transport.NewCommand([]byte{opPreventAllow, 0, 0, 0, 0, 0}, transport.NoTransfer)
}

// ModeSense10 builds a MODE SENSE(10) CDB requesting pageCode from the
// current page control (pc=0), grounded on SPC_MODE_SENSE's ten-byte
// template ({0x5a,0,0,0,0,0,0,16,0,0}).
func ModeSense10(pageCode byte, allocLen uint16) *transport.Command {
	cdb := []byte{
		opModeSense10, 0, pageCode, 0, 0, 0, 0,
		byte(allocLen >> 8), byte(allocLen), 0,
	}
	cmd := transport.NewCommand(cdb, transport.FromDevice)
	cmd.Data = make([]byte, allocLen)
	return cmd
}

// ModeSelect10 builds a MODE SELECT(10) CDB carrying page as its parameter
// list, grounded on SPC_MODE_SELECT's template ({0x55,16,...}) with the
// page-format bit (byte 1 bit 4) set.
func ModeSelect10(page []byte) *transport.Command {
	length := uint16(len(page))
	cdb := []byte{
		opModeSelect10, 0x10, 0, 0, 0, 0, 0,
		byte(length >> 8), byte(length), 0,
	}
	cmd := transport.NewCommand(cdb, transport.ToDevice)
	cmd.Data = page
	return cmd
}
