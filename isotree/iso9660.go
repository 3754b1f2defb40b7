package isotree

import (
	"time"
)

// Numeric field encodings are named after their ECMA-119 §7 section
// numbers: 7.1.1 (single byte), 7.2.1/7.2.2 (16-bit LE/BE), 7.2.3
// (16-bit both-endian), 7.3.1/7.3.2 (32-bit LE/BE), 7.3.3 (32-bit
// both-endian).

func put721(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func put722(b []byte, v uint16) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
}

// put723 writes v as both little-endian and big-endian 16-bit words (4
// bytes total), the "both-endian" convention ECMA-119 uses throughout so
// a reader on either byte order can parse the volume.
func put723(b []byte, v uint16) {
	put721(b[0:2], v)
	put722(b[2:4], v)
}

func put731(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func put732(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func put733(b []byte, v uint32) {
	put731(b[0:4], v)
	put732(b[4:8], v)
}

func get721(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func get722(b []byte) uint16 { return uint16(b[1]) | uint16(b[0])<<8 }
func get731(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func get732(b []byte) uint32 {
	return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
}

// get733 trusts the little-endian half and ignores the redundant
// big-endian half, the common reader shortcut since both halves must
// agree by construction.
func get733(b []byte) uint32 { return get731(b[0:4]) }

// padASCII returns s truncated or space-padded to exactly n bytes, the
// a-/d-character field convention ECMA-119 uses for identifiers.
func padASCII(s string, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	copy(b, s)
	if len(s) > n {
		copy(b, s[:n])
	}
	return b
}

// zeroDecDateTime is the "not specified" encoding of a PVD date-time
// field: sixteen ASCII '0' digits followed by a zero GMT offset.
var zeroDecDateTime = func() [17]byte {
	var b [17]byte
	for i := 0; i < 16; i++ {
		b[i] = '0'
	}
	return b
}()

// encodeVolumeDateTime renders t as a PVD/SVD date-time field (8.4.26.1):
// 16 ASCII digits (year, month, day, hour, minute, second, centisecond)
// plus a signed GMT-offset byte in 15-minute units.
func encodeVolumeDateTime(t time.Time) [17]byte {
	if t.IsZero() {
		return zeroDecDateTime
	}
	var b [17]byte
	u := t.UTC()
	writeDigits(b[0:4], u.Year(), 4)
	writeDigits(b[4:6], int(u.Month()), 2)
	writeDigits(b[6:8], u.Day(), 2)
	writeDigits(b[8:10], u.Hour(), 2)
	writeDigits(b[10:12], u.Minute(), 2)
	writeDigits(b[12:14], u.Second(), 2)
	writeDigits(b[14:16], u.Nanosecond()/10000000, 2)
	b[16] = 0
	return b
}

func writeDigits(b []byte, v, width int) {
	for i := width - 1; i >= 0; i-- {
		b[i] = byte('0' + v%10)
		v /= 10
	}
}

// encodeRecordDateTime renders t as a directory-record date-time field
// (9.1.5): year-since-1900, month, day, hour, minute, second, and a
// signed GMT-offset byte in 15-minute units, all as raw binary bytes
// (not ASCII digits, unlike the volume descriptor field).
func encodeRecordDateTime(t time.Time) [7]byte {
	if t.IsZero() {
		return [7]byte{}
	}
	u := t.UTC()
	year := u.Year() - 1900
	if year < 0 {
		year = 0
	}
	if year > 255 {
		year = 255
	}
	return [7]byte{
		byte(year), byte(u.Month()), byte(u.Day()),
		byte(u.Hour()), byte(u.Minute()), byte(u.Second()), 0,
	}
}

func decodeRecordDateTime(b []byte) time.Time {
	if len(b) < 7 {
		return time.Time{}
	}
	return time.Date(1900+int(b[0]), time.Month(b[1]), int(b[2]), int(b[3]), int(b[4]), int(b[5]), 0, time.UTC)
}

// identSelf and identParent are the one-byte file identifiers ISO 9660
// reserves for the "." and ".." directory records.
const (
	identSelf   = 0x00
	identParent = 0x01
)
