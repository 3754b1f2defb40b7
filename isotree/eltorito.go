package isotree

import "fmt"

const catalogEntrySize = 32

// EncodeBootCatalog renders cat as one El Torito boot catalog sector: a
// Validation Entry, an Initial/Default Entry for the first attached image,
// then one Section Header + Section Entry pair per additional image. Each
// boot image's starting LBA is resolved from layout, since ComputeLayout
// has already assigned its "file" extent.
func EncodeBootCatalog(cat *BootCatalog, layout *Layout) ([]byte, error) {
	if len(cat.Entries) == 0 {
		return nil, fmt.Errorf("isotree: boot catalog has no entries")
	}
	b := make([]byte, blockSize)
	off := 0

	first := cat.Entries[0]
	copy(b[off:off+catalogEntrySize], encodeValidationEntry(first.Spec.Platform, first.Spec.IDString))
	off += catalogEntrySize

	entryBytes, err := encodeBootEntry(first, layout)
	if err != nil {
		return nil, err
	}
	copy(b[off:off+catalogEntrySize], entryBytes)
	off += catalogEntrySize

	for i := 1; i < len(cat.Entries); i++ {
		e := cat.Entries[i]
		headerID := byte(0x90)
		if i == len(cat.Entries)-1 {
			headerID = 0x91
		}
		header := make([]byte, catalogEntrySize)
		header[0] = headerID
		header[1] = byte(e.Spec.Platform)
		put721(header[2:4], 1)
		copy(header[4:32], padOrTrim(e.Spec.IDString, 28))
		copy(b[off:off+catalogEntrySize], header)
		off += catalogEntrySize

		entryBytes, err := encodeBootEntry(e, layout)
		if err != nil {
			return nil, err
		}
		copy(b[off:off+catalogEntrySize], entryBytes)
		off += catalogEntrySize
	}

	return b, nil
}

func encodeValidationEntry(platform BootPlatform, id string) []byte {
	b := make([]byte, catalogEntrySize)
	b[0] = 0x01
	b[1] = byte(platform)
	copy(b[4:28], padOrTrim(id, 24))
	b[30], b[31] = 0x55, 0xAA

	var sum uint16
	for i := 0; i < catalogEntrySize; i += 2 {
		if i == 28 {
			continue // checksum field itself
		}
		sum += uint16(b[i]) | uint16(b[i+1])<<8
	}
	checksum := -sum
	b[28] = byte(checksum)
	b[29] = byte(checksum >> 8)
	return b
}

func encodeBootEntry(e BootEntry, layout *Layout) ([]byte, error) {
	b := make([]byte, catalogEntrySize)
	if e.Spec.Emulation != EmulationNone || e.Spec.Platform != BootPlatformEFI {
		b[0] = 0x88
	}
	switch e.Spec.Emulation {
	case EmulationNone:
		b[1] = 0
	case Emulation1200K:
		b[1] = 1
	case Emulation1440K:
		b[1] = 2
	case Emulation2880K:
		b[1] = 3
	case EmulationHardDisk:
		b[1] = 4
	}
	put721(b[2:4], 0x7C0) // conventional boot load segment
	b[4] = 0
	loadSize := e.Spec.LoadSize
	if loadSize == 0 {
		loadSize = 4 // 4 virtual 512-byte sectors == one 2048-byte sector
	}
	put721(b[6:8], loadSize)

	lba, _, err := layout.Locate(e.Node, false)
	if err != nil {
		return nil, fmt.Errorf("isotree: locating boot image %q: %w", e.Spec.BootFile, err)
	}
	put731(b[8:12], uint32(lba))
	copy(b[12:32], e.Spec.SelectionCriteria)
	return b, nil
}
