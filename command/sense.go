// Package command assembles SPC/SBC/MMC CDBs, hands them to a
// transport.Adapter, classifies the outcome from returned sense data and
// retries with bounded backoff, grounded on libburn's spc.c/mmc.c command
// layer and on rclone's backend retry conventions for the pacing side.
package command

import "fmt"

// Category is the outcome of classifying one completed command.
type Category int

const (
	// GoOn means the command succeeded or recovered without incident.
	GoOn Category = iota
	// Retry means the condition is transient and the caller should
	// reissue the command after backing off.
	Retry
	// Fail means the command failed in a way retrying will not fix.
	Fail
	// MediumNotPresent means the drive reports no media loaded; not an
	// error for probing paths, but callers attempting to read/write
	// should treat it as an empty-drive condition.
	MediumNotPresent
)

func (c Category) String() string {
	switch c {
	case GoOn:
		return "GO_ON"
	case Retry:
		return "RETRY"
	case Fail:
		return "FAIL"
	case MediumNotPresent:
		return "MEDIUM_NOT_PRESENT"
	default:
		return "UNKNOWN"
	}
}

// Sense is the decoded (key, asc, ascq) triple extracted from a raw SCSI
// sense buffer, in either SPC-3 fixed (0x70/0x71) or descriptor (0x72/0x73)
// format.
type Sense struct {
	Key  byte
	ASC  byte
	ASCQ byte
}

// DecodeSense extracts (key, asc, ascq) from a raw sense buffer, following
// spc_decode_sense: fixed format keeps key at byte 2, asc at byte 12, ascq
// at byte 13; descriptor format keeps them at bytes 1, 2, 3. A short buffer
// yields zero for any field it cannot reach, matching the original's
// senselen-gated reads.
func DecodeSense(sense []byte) Sense {
	var s Sense
	if len(sense) == 0 {
		return s
	}
	format := sense[0] & 0x7f
	if format == 0x72 || format == 0x73 {
		if len(sense) > 1 {
			s.Key = sense[1] & 0x0f
		}
		if len(sense) > 2 {
			s.ASC = sense[2]
		}
		if len(sense) > 3 {
			s.ASCQ = sense[3]
		}
		return s
	}
	if len(sense) > 2 {
		s.Key = sense[2] & 0x0f
	}
	if len(sense) > 12 {
		s.ASC = sense[12]
	}
	if len(sense) > 13 {
		s.ASCQ = sense[13]
	}
	return s
}

// ascqRange is one row of the classification table: asc, and an inclusive
// ascq range (Lo==Hi for a single value, Hi==0xff for "any").
type ascqRange struct {
	key      byte
	asc      byte
	ascqLo   byte
	ascqHi   byte
	category Category
	template string
}

// senseTable is the static (key, asc, ascq) -> (category, message) table
// this calls for in place of a nest of conditionals. Ordered most
// specific first; the first matching row wins.
var senseTable = []ascqRange{
	{0x02, 0x3A, 0x00, 0xff, MediumNotPresent, "medium not present"},
	{0x02, 0x04, 0x00, 0xff, Retry, "logical unit not ready, cause %s"},
	{0x06, 0x28, 0x00, 0x00, Retry, "not ready to ready transition, medium may have changed"},
	{0x06, 0x29, 0x00, 0xff, Retry, "power on, reset, or bus device reset occurred"},
	{0x02, 0x00, 0x00, 0x00, Retry, "no seek complete"},
	{0x02, 0x08, 0x00, 0xff, Retry, "logical unit communication failure"},
	{0x02, 0x0C, 0x00, 0x00, Retry, "write error"},
	{0x05, 0x24, 0x00, 0x00, Fail, "invalid field in CDB"},
	{0x05, 0x20, 0x00, 0x00, Fail, "invalid command operation code"},
	{0x05, 0x21, 0x00, 0x00, Fail, "logical block address out of range"},
	{0x05, 0x26, 0x00, 0x00, Fail, "invalid field in parameter list"},
	{0x07, 0x27, 0x00, 0x00, Fail, "write protected"},
	{0x03, 0x0C, 0x00, 0xff, Fail, "write error, track fixation failure"},
	{0x03, 0x73, 0x00, 0xff, Fail, "power calibration area error"},
	{0x03, 0x72, 0x00, 0xff, Fail, "session fixation error"},
	{0x04, 0x44, 0x00, 0x00, Fail, "internal target failure"},
}

// Classify maps a decoded Sense to a Category. key == 0 is GO_ON (no
// error); key == 1 is a recovered error, also GO_ON. Unknown
// (key, asc, ascq) combinations fall through to Fail with a generic
// message rather than panicking on an unrecognized sense condition.
func Classify(s Sense) (Category, string) {
	if s.Key == 0x00 || s.Key == 0x01 {
		return GoOn, "no error"
	}
	for _, row := range senseTable {
		if row.key != s.Key || row.asc != s.ASC {
			continue
		}
		if s.ASCQ < row.ascqLo || (row.ascqHi != 0xff && s.ASCQ > row.ascqHi) {
			continue
		}
		return row.category, row.template
	}
	return Fail, fmt.Sprintf("unrecognised sense key=0x%02x asc=0x%02x ascq=0x%02x", s.Key, s.ASC, s.ASCQ)
}

// SenseError wraps a Sense and its classification as a Go error, so callers
// can type-assert it back out of an ordinary error return to inspect the
// underlying sense key/asc/ascq.
type SenseError struct {
	Sense    Sense
	Category Category
	Message  string
}

func (e *SenseError) Error() string {
	return fmt.Sprintf("%s: %s (key=0x%02x asc=0x%02x ascq=0x%02x)",
		e.Category, e.Message, e.Sense.Key, e.Sense.ASC, e.Sense.ASCQ)
}

// NewSenseError builds a SenseError from a raw sense buffer.
func NewSenseError(sense []byte) *SenseError {
	s := DecodeSense(sense)
	cat, msg := Classify(s)
	return &SenseError{Sense: s, Category: cat, Message: msg}
}
