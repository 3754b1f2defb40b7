package drive

import "github.com/isoburn/isoburn/command"

// Capabilities is the result of a probe pass "probe
// issues INQUIRY, MODE_SENSE 2Ah, GET_CONFIGURATION, GET_PERFORMANCE in
// that order; failures reduce capability sets but never refuse the drive
// unless INQUIRY fails entirely."
type Capabilities struct {
	Inquiry command.InquiryData

	HasModePage bool
	ModePage2A  command.Capabilities

	HasProfiles  bool
	Profiles     []uint16
	ActiveProfile uint16

	HasPerformance bool
	MaxWriteKBs    int
}

// decodeProfileList extracts the feature-0000h profile list from a GET
// CONFIGURATION reply: an 8-byte header (4-byte data length, 2 reserved, 2
// byte current profile), followed by one or more 4-byte feature
// descriptors. Only the mandatory Profile List feature (number 0x0000) is
// decoded; others are skipped.
func decodeProfileList(data []byte) (profiles []uint16, current uint16, ok bool) {
	if len(data) < 8 {
		return nil, 0, false
	}
	current = uint16(data[6])<<8 | uint16(data[7])
	pos := 8
	for pos+4 <= len(data) {
		featureCode := uint16(data[pos])<<8 | uint16(data[pos+1])
		additionalLen := int(data[pos+3])
		body := data[pos+4:]
		if featureCode == 0x0000 {
			for i := 0; i+4 <= additionalLen && i+4 <= len(body); i += 4 {
				profiles = append(profiles, uint16(body[i])<<8|uint16(body[i+1]))
			}
			return profiles, current, true
		}
		pos += 4 + additionalLen
	}
	return nil, current, len(profiles) > 0
}

// decodeMaxWriteSpeed extracts the fastest write-speed descriptor's speed
// (KB/s) from a GET PERFORMANCE (write-speed type) reply: an 8-byte
// header, then 16-byte descriptors each carrying (reserved, end LBA,
// read speed, write speed) as big-endian uint32s.
func decodeMaxWriteSpeed(data []byte) (kbs int, ok bool) {
	if len(data) < 8 {
		return 0, false
	}
	best := 0
	for pos := 8; pos+16 <= len(data); pos += 16 {
		speed := int(data[pos+12])<<24 | int(data[pos+13])<<16 | int(data[pos+14])<<8 | int(data[pos+15])
		if speed > best {
			best = speed
		}
	}
	return best, best > 0
}
