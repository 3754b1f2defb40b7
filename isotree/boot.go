package isotree

import "fmt"

// BootPlatform identifies the El Torito platform id byte a boot entry
// targets.
type BootPlatform byte

const (
	BootPlatformX86 BootPlatform = 0x00
	BootPlatformPPC BootPlatform = 0x01
	BootPlatformMac BootPlatform = 0x02
	BootPlatformEFI BootPlatform = 0xEF
)

// BootEmulation selects the El Torito floppy/hard-disk emulation mode a
// boot image is loaded under.
type BootEmulation int

const (
	EmulationNone BootEmulation = iota
	Emulation1200K
	Emulation1440K
	Emulation2880K
	EmulationHardDisk
)

// BootImageSpec is the input to AttachBootImage.
type BootImageSpec struct {
	Platform  BootPlatform
	Emulation BootEmulation
	BootFile  string // path within the image tree of the boot image file
	LoadSize  uint16 // sectors to load, 512 bytes each

	// IDString is copied into the catalog entry's 28-byte id field,
	// truncated/padded to fit.
	IDString string
	// SelectionCriteria is copied into the entry's 20-byte selection
	// criteria field, truncated/padded to fit.
	SelectionCriteria []byte

	// PatchIsolinux requests that the first 56 bytes of BootFile's content
	// be rewritten at write time with the boot image's LBA and size, per
	// the "patch isolinux" flag.
	PatchIsolinux bool
	// NoEmulEFI marks an EFI entry as "no emulation" (Emulation must be
	// EmulationNone).
	NoEmulEFI bool
}

// BootEntry is one resolved El Torito catalog entry: the BootImageSpec
// plus the tree node its BootFile resolved to, so write.go can locate its
// eventual LBA.
type BootEntry struct {
	Spec BootImageSpec
	Node *Node
}

// BootCatalog collects the El Torito entries attached to a Volume. The
// first attached entry becomes the catalog's default/initial entry;
// platform id 0x00's first entry is the validation entry other tools
// expect.
type BootCatalog struct {
	CatalogPath string // image path of the synthesized catalog file
	Entries     []BootEntry
}

// AttachBootImage appends one El Torito entry to cat, resolving spec's
// BootFile against root.
func (cat *BootCatalog) AttachBootImage(root *Node, spec BootImageSpec) (*BootEntry, error) {
	if spec.NoEmulEFI && spec.Emulation != EmulationNone {
		return nil, fmt.Errorf("isotree: no-emul EFI entries cannot set an emulation mode")
	}
	n, err := Resolve(root, spec.BootFile)
	if err != nil {
		return nil, fmt.Errorf("isotree: boot file %q: %w", spec.BootFile, err)
	}
	if n.Kind != KindFile {
		return nil, fmt.Errorf("isotree: boot file %q is not a regular file", spec.BootFile)
	}
	spec.IDString = padOrTrim(spec.IDString, 28)
	if len(spec.SelectionCriteria) != 20 {
		sc := make([]byte, 20)
		copy(sc, spec.SelectionCriteria)
		spec.SelectionCriteria = sc
	}
	entry := BootEntry{Spec: spec, Node: n}
	cat.Entries = append(cat.Entries, entry)
	return &cat.Entries[len(cat.Entries)-1], nil
}

func padOrTrim(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	b := make([]byte, n)
	copy(b, s)
	return string(b)
}

// SystemAreaKind names the overlay format written into the image's first
// 32 KiB system area.
type SystemAreaKind int

const (
	SystemAreaNone SystemAreaKind = iota
	SystemAreaMBR
	SystemAreaAPM
	SystemAreaGPT
	SystemAreaGrub2Sparc
	SystemAreaMIPSBig
	SystemAreaMIPSLittle
)

// SystemAreaPartition describes one appended-partition entry coordinated
// with an MBR/APM/GPT overlay.
type SystemAreaPartition struct {
	TypeCode byte
	Offset   int64 // byte offset within the image
	Size     int64 // byte length
}

// SystemArea holds the options governing the image's system-area overlay.
// Partition coordinates are only checked against the final image size once
// that size is known, by Validate.
type SystemArea struct {
	Kind       SystemAreaKind
	Partitions []SystemAreaPartition
}

// Validate checks sa's partitions against imageSize, rejecting any
// partition whose offset/size falls outside the image.
func (sa *SystemArea) Validate(imageSize int64) error {
	for i, p := range sa.Partitions {
		if p.Offset < 0 || p.Size < 0 || p.Offset+p.Size > imageSize {
			return fmt.Errorf("isotree: system area partition %d (offset %d size %d) exceeds image size %d",
				i, p.Offset, p.Size, imageSize)
		}
	}
	return nil
}
