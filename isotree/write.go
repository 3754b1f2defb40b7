package isotree

import "fmt"

// ComplianceLevel is the ISO 9660 Interchange Level.
type ComplianceLevel int

const (
	Level1 ComplianceLevel = 1
	Level2 ComplianceLevel = 2
	Level3 ComplianceLevel = 3
)

// RelaxFlags loosens individual ISO 9660 Interchange Level restrictions
// (name length, case, path depth) independent of the active ComplianceLevel.
type RelaxFlags uint32

const (
	RelaxAllowLowercase RelaxFlags = 1 << iota
	RelaxAllowDeepPaths
	RelaxAllowLongPaths
	RelaxAllow30CharNames
	RelaxOmitVersionNumbers
)

// WriteParams collects the write-time parameters of one session emission.
type WriteParams struct {
	Compliance ComplianceLevel

	RockRidge    bool
	Joliet       bool
	ISO9660_1999 bool
	HFSPlus      bool
	FAT          bool
	AAIP         bool
	MD5Tags      bool

	PartitionOffset    int64
	VolumeUUIDOverride *[16]byte

	Relax RelaxFlags

	PaddingBytes    int64
	Alignment       int64
	StreamRecording bool
	DVDBlockSize    int
}

// DefaultWriteParams returns the conservative defaults: Level 3, Rock
// Ridge and Joliet on, everything else off.
func DefaultWriteParams() WriteParams {
	return WriteParams{
		Compliance:   Level3,
		RockRidge:    true,
		Joliet:       true,
		Alignment:    2048,
		DVDBlockSize: 2048,
	}
}

// Extent is one allocated region of the output stream: a descriptor, a path
// table, a directory's records, or a file's content.
type Extent struct {
	Kind string // "pvd", "svd", "path-table-l", "path-table-m", "dir", "file", "boot-catalog", "padding"
	Tree string // "primary" or "joliet" for "dir"/path-table extents; "" otherwise
	Node *Node  // nil for volume-level extents
	LBA  int64  // sector number, 2048 bytes/sector
	Blocks int64
	Length int64 // exact byte length (directories are block-rounded; files are not)
}

// Layout is the computed linear byte layout for one session: where every
// descriptor, path table, directory record, and file extent lands before
// any bytes are written.
type Layout struct {
	Params  WriteParams
	Extents []Extent
	Blocks  int64 // total session length in 2048-byte blocks

	// hardlinkOwner maps a file node sharing a disk (dev, inode)
	// fingerprint with an earlier-placed node onto that node: both
	// directory records end up pointing at one shared "file" extent,
	// the image-level hardlink.
	hardlinkOwner map[*Node]*Node
}

const blockSize = 2048

// ComputeLayout walks v's tree and assigns every descriptor, path table,
// directory, boot catalog and file-content region a contiguous run of
// sectors starting at startLBA (the volume's Next-Writable-Address),
// honoring ISO 9660's descriptor sequencing: PVD, SVD (if Joliet), path
// tables (primary, then Joliet if enabled), directory extents (primary
// tree, then Joliet tree), boot catalog, file content, padding.
func ComputeLayout(v *Volume, params WriteParams, startLBA int64) (*Layout, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	l := &Layout{Params: params, hardlinkOwner: make(map[*Node]*Node)}
	cur := startLBA

	place := func(kind, tree string, n *Node, length int64) {
		blocks := blocksFor(length)
		l.Extents = append(l.Extents, Extent{Kind: kind, Tree: tree, Node: n, LBA: cur, Blocks: blocks, Length: length})
		cur += blocks
	}

	place("pvd", "", nil, blockSize)
	if params.Joliet {
		place("svd", "", nil, blockSize)
	}

	dirOrder := orderDirectoriesForPathTable(v.Root)

	primaryPTSize, err := pathTableByteSize(dirOrder, false, params)
	if err != nil {
		return nil, err
	}
	place("path-table-l", "primary", nil, primaryPTSize)
	place("path-table-m", "primary", nil, primaryPTSize)

	if params.Joliet {
		jolietPTSize, err := pathTableByteSize(dirOrder, true, params)
		if err != nil {
			return nil, err
		}
		place("path-table-l", "joliet", nil, jolietPTSize)
		place("path-table-m", "joliet", nil, jolietPTSize)
	}

	for _, dir := range dirOrder {
		size, err := directoryExtentSize(dir, false, params)
		if err != nil {
			return nil, err
		}
		place("dir", "primary", dir, size)
	}
	if params.Joliet {
		for _, dir := range dirOrder {
			size, err := directoryExtentSize(dir, true, params)
			if err != nil {
				return nil, err
			}
			place("dir", "joliet", dir, size)
		}
	}

	if len(v.BootCatalog.Entries) > 0 {
		place("boot-catalog", "", nil, blockSize)
	}

	fingerprintOwner := make(map[[2]uint64]*Node)
	var fileErr error
	v.Root.Walk(func(_ string, n *Node) {
		if fileErr != nil || n.Kind != KindFile || n.Content == nil {
			return
		}
		if dev, inode, ok := n.Fingerprint(); ok {
			key := [2]uint64{dev, inode}
			if owner, seen := fingerprintOwner[key]; seen {
				l.hardlinkOwner[n] = owner
				return
			}
			fingerprintOwner[key] = n
		}
		size, ok := n.Content.LeafOf().Size()
		if !ok {
			fileErr = fmt.Errorf("isotree: cannot determine size of %q for layout", n.Name)
			return
		}
		place("file", "", n, size)
	})
	if fileErr != nil {
		return nil, fileErr
	}

	if params.PaddingBytes > 0 {
		place("padding", "", nil, params.PaddingBytes)
	}

	l.Blocks = cur - startLBA
	return l, nil
}

// ContentOwner returns the node whose "file" extent actually carries n's
// content: n itself, unless n is a hardlink sibling sharing a disk
// (dev, inode) fingerprint with an earlier-placed node.
func (l *Layout) ContentOwner(n *Node) *Node {
	if owner, ok := l.hardlinkOwner[n]; ok {
		return owner
	}
	return n
}

// Locate resolves the (LBA, byte length) of n's extent: its "dir" extent
// in the requested tree if n is a directory, or its ("file") content
// extent — the hardlink owner's extent, if n shares a fingerprint with an
// earlier node — otherwise. Symlinks and special files have no extent and
// resolve to (0, 0). It implements childLocator for encode.go's
// directory/path-table builders.
func (l *Layout) Locate(n *Node, joliet bool) (int64, int64, error) {
	if n.Kind == KindSymlink || n.Kind == KindSpecial {
		return 0, 0, nil
	}
	owner := l.ContentOwner(n)
	wantTree := ""
	if n.Kind == KindDirectory {
		wantTree = "primary"
		if joliet {
			wantTree = "joliet"
		}
	}
	for _, e := range l.Extents {
		if e.Node == owner && e.Tree == wantTree && (e.Kind == "dir" || e.Kind == "file") {
			return e.LBA, e.Length, nil
		}
	}
	return 0, 0, fmt.Errorf("isotree: layout has no extent for %q", n.Name)
}

// Find returns the single extent of the given kind/tree not tied to a
// node (pvd, svd, path tables, boot catalog, padding).
func (l *Layout) Find(kind, tree string) (Extent, bool) {
	for _, e := range l.Extents {
		if e.Kind == kind && e.Tree == tree {
			return e, true
		}
	}
	return Extent{}, false
}

func blocksFor(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return (size + blockSize - 1) / blockSize
}
