package isotree

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// jolietEscapeSequence is the UCS-2 Level 3 escape sequence ("%/E") stored
// at offset 88 of a Joliet Supplementary Volume Descriptor, identifying the
// character set subsequent string fields are encoded in.
var jolietEscapeSequence = [3]byte{0x25, 0x2F, 0x45}

var jolietCodec = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// jolietIdentifier renders name as UTF-16BE for a Joliet directory record,
// even-padding is handled by the caller (dirRecordBytes), not here.
func jolietIdentifier(name string) ([]byte, error) {
	enc := jolietCodec.NewEncoder()
	b, err := enc.Bytes([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("isotree: joliet-encoding %q: %w", name, err)
	}
	return b, nil
}

// primaryIdentifier renders n's name as an ISO 9660 d-character/d1-character
// file identifier: uppercased, invalid characters mapped to '_', truncated
// to fit the active compliance level, with a "." separator and ";1" version
// suffix appended to regular files (RockRidge's NM entry carries the real
// name, so this identifier only has to be a valid, collision-resistant
// placeholder).
func primaryIdentifier(n *Node, params WriteParams) []byte {
	isDir := n.Kind == KindDirectory
	var sb strings.Builder
	for _, r := range strings.ToUpper(n.Name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		case r == '.' && params.Relax&RelaxAllow30CharNames == 0:
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	s := sb.String()
	if s == "" {
		s = "_"
	}

	maxLen := 30
	if params.Compliance == Level1 {
		maxLen = 12 // 8.3
	} else if params.Relax&RelaxAllowLongPaths != 0 {
		maxLen = 64
	}

	suffix := ""
	if !isDir {
		if params.Relax&RelaxOmitVersionNumbers == 0 {
			suffix = ";1"
		}
		if !strings.Contains(s, ".") {
			s += "."
		}
	}
	if len(s)+len(suffix) > maxLen {
		s = s[:maxLen-len(suffix)]
	}
	return []byte(s + suffix)
}

// dirRecordBytes encodes one 9.1 Directory Record: fixed 33-byte header,
// the identifier, an even-padding byte when the identifier length is even,
// and the trailing system-use area. The record's own total length is
// rounded up to an even number of bytes, as ECMA-119 requires.
func dirRecordBytes(ident []byte, extent, length uint32, dt time.Time, isDir bool, suArea []byte) []byte {
	identLen := len(ident)
	pad := 0
	if identLen%2 == 0 {
		pad = 1
	}
	total := 33 + identLen + pad + len(suArea)
	if total%2 != 0 {
		total++
	}
	b := make([]byte, total)
	b[0] = byte(total)
	put733(b[2:10], extent)
	put733(b[10:18], length)
	rdt := encodeRecordDateTime(dt)
	copy(b[18:25], rdt[:])
	if isDir {
		b[25] = 0x02
	}
	put723(b[28:32], 1)
	b[32] = byte(identLen)
	copy(b[33:33+identLen], ident)
	off := 33 + identLen + pad
	copy(b[off:off+len(suArea)], suArea)
	return b
}

// recordLen reports the byte length dirRecordBytes would produce for the
// given identifier/system-use-area sizes, without building the record —
// used by directoryExtentSize to size a directory extent before any LBA in
// it is known (record length never depends on the extent/length field
// values, only on their fixed widths).
func recordLen(identLen, suLen int) int {
	pad := 0
	if identLen%2 == 0 {
		pad = 1
	}
	total := 33 + identLen + pad + suLen
	if total%2 != 0 {
		total++
	}
	return total
}

// directoryExtentSize returns the byte length of dir's encoded directory
// extent (the "." and ".." records plus one record per child), for either
// the primary/Rock-Ridge tree or the Joliet tree.
func directoryExtentSize(dir *Node, joliet bool, params WriteParams) (int64, error) {
	size := recordLen(1, 0) + recordLen(1, 0) // "." and ".."
	for _, name := range dir.Names() {
		child := dir.Child(name)
		if child.Hide&HideISORockRidge != 0 && !joliet {
			continue
		}
		if child.Hide&HideJoliet != 0 && joliet {
			continue
		}
		var identLen, suLen int
		if joliet {
			ident, err := jolietIdentifier(child.Name)
			if err != nil {
				return 0, err
			}
			identLen = len(ident)
		} else {
			identLen = len(primaryIdentifier(child, params))
			if params.RockRidge {
				suLen = len(buildSystemUse(child))
			}
		}
		size += recordLen(identLen, suLen)
	}
	if rem := size % blockSize; rem != 0 {
		size += blockSize - rem
	}
	return int64(size), nil
}

// pathTableByteSize returns the byte length of one of dirs' L/M path
// tables (both tables are always the same length), computable without any
// directory's LBA since path-table record length depends only on
// identifier length.
func pathTableByteSize(dirs []*Node, joliet bool, params WriteParams) (int64, error) {
	var size int
	for _, d := range dirs {
		var identLen int
		if d.Parent == nil {
			identLen = 1
		} else if joliet {
			ident, err := jolietIdentifier(d.Name)
			if err != nil {
				return 0, err
			}
			identLen = len(ident)
		} else {
			identLen = len(primaryIdentifier(d, params))
		}
		size += 8 + identLen + identLen%2
	}
	return int64(size), nil
}

// childLocator resolves the LBA and byte length a directory record for n
// should carry; file extents and sub-directory extents are looked up by the
// caller from the already-computed Layout.
type childLocator func(n *Node, joliet bool) (lba int64, length int64, err error)

// buildDirectoryExtent encodes dir's full directory extent (rounded up to a
// whole number of sectors, zero-padded), given its own and its parent's
// already-assigned (LBA, length) and a locator for resolving each child's
// extent.
func buildDirectoryExtent(dir *Node, selfLBA, selfLen, parentLBA, parentLen int64, joliet bool, params WriteParams, locate childLocator) ([]byte, error) {
	var out []byte
	out = append(out, dirRecordBytes([]byte{identSelf}, uint32(selfLBA), uint32(selfLen), dir.MTime, true, nil)...)
	out = append(out, dirRecordBytes([]byte{identParent}, uint32(parentLBA), uint32(parentLen), dir.MTime, true, nil)...)

	for _, name := range dir.Names() {
		child := dir.Child(name)
		if child.Hide&HideISORockRidge != 0 && !joliet {
			continue
		}
		if child.Hide&HideJoliet != 0 && joliet {
			continue
		}
		lba, length, err := locate(child, joliet)
		if err != nil {
			return nil, err
		}
		var ident []byte
		var su []byte
		if joliet {
			ident, err = jolietIdentifier(child.Name)
			if err != nil {
				return nil, err
			}
		} else {
			ident = primaryIdentifier(child, params)
			if params.RockRidge {
				su = buildSystemUse(child)
			}
		}
		out = append(out, dirRecordBytes(ident, uint32(lba), uint32(length), child.MTime, child.Kind == KindDirectory, su)...)
	}

	if pad := int64(len(out)) % blockSize; pad != 0 {
		out = append(out, make([]byte, blockSize-pad)...)
	}
	return out, nil
}

// volumeDescriptorFields holds the values every volume descriptor
// (primary or supplementary) shares; only the character encoding of the
// string fields and the escape-sequence/type byte differ between them.
type volumeDescriptorFields struct {
	descType       byte
	systemID       []byte
	volumeID       []byte
	volumeSetID    []byte
	publisher      []byte
	preparer       []byte
	application    []byte
	copyright      []byte
	abstract       []byte
	biblio         []byte
	escapeSequence []byte

	volumeSpaceSize  uint32
	pathTableSize    uint32
	lPathTableLBA    uint32
	mPathTableLBA    uint32
	rootRecord       []byte
	creation, modification, expiration, effective time.Time
}

func encodeVolumeDescriptor(f volumeDescriptorFields) []byte {
	b := make([]byte, blockSize)
	b[0] = f.descType
	copy(b[1:6], "CD001")
	b[6] = 1

	copy(b[8:40], padASCII(string(f.systemID), 32))
	copy(b[40:72], padASCII(string(f.volumeID), 32))
	put733(b[80:88], f.volumeSpaceSize)
	copy(b[88:120], f.escapeSequence)
	put723(b[120:124], 1)
	put723(b[124:128], 1)
	put723(b[128:132], blockSize)
	put733(b[132:140], f.pathTableSize)
	put731(b[140:144], f.lPathTableLBA)
	put732(b[148:152], f.mPathTableLBA)
	copy(b[156:190], f.rootRecord)
	copy(b[190:318], padASCII(string(f.volumeSetID), 128))
	copy(b[318:446], padASCII(string(f.publisher), 128))
	copy(b[446:574], padASCII(string(f.preparer), 128))
	copy(b[574:702], padASCII(string(f.application), 128))
	copy(b[702:739], padASCII(string(f.copyright), 37))
	copy(b[739:776], padASCII(string(f.abstract), 37))
	copy(b[776:813], padASCII(string(f.biblio), 37))
	copy(b[813:830], encodeVolumeDateTime(f.creation)[:])
	copy(b[830:847], encodeVolumeDateTime(f.modification)[:])
	copy(b[847:864], encodeVolumeDateTime(f.expiration)[:])
	copy(b[864:881], encodeVolumeDateTime(f.effective)[:])
	b[881] = 1
	return b
}

// EncodePVD renders v's Primary Volume Descriptor, given the already-
// computed extents a caller's Layout assigned for the root directory and
// both path tables.
func EncodePVD(v *Volume, params WriteParams, totalBlocks, pathTableSize, lPathLBA, mPathLBA, rootLBA, rootLen int64) []byte {
	root := dirRecordBytes([]byte{identSelf}, uint32(rootLBA), uint32(rootLen), v.ModificationTime, true, nil)
	return encodeVolumeDescriptor(volumeDescriptorFields{
		descType:        1,
		systemID:        []byte(params.systemID()),
		volumeID:        []byte(v.VolumeID),
		publisher:       []byte(v.Publisher),
		preparer:        []byte(v.Preparer),
		application:     []byte(v.ApplicationID),
		copyright:       []byte(v.CopyrightFile),
		abstract:        []byte(v.AbstractFile),
		biblio:          []byte(v.BiblioFile),
		volumeSpaceSize: uint32(totalBlocks),
		pathTableSize:   uint32(pathTableSize),
		lPathTableLBA:   uint32(lPathLBA),
		mPathTableLBA:   uint32(mPathLBA),
		rootRecord:      root,
		creation:        v.CreationTime,
		modification:    v.ModificationTime,
		expiration:       v.ExpirationTime,
		effective:        v.EffectiveTime,
	})
}

// EncodeSVD renders v's Joliet Supplementary Volume Descriptor. String
// fields are UTF-16BE (per the UCS-2 escape sequence). The sector is
// assembled field by field here; encodeVolumeDescriptor is not used.
func EncodeSVD(v *Volume, params WriteParams, totalBlocks, pathTableSize, lPathLBA, mPathLBA, rootLBA, rootLen int64) ([]byte, error) {
	enc := jolietCodec.NewEncoder()
	toUTF16 := func(s string) []byte {
		out, err := enc.Bytes([]byte(s))
		if err != nil {
			return nil
		}
		return out
	}
	root := dirRecordBytes([]byte{identSelf}, uint32(rootLBA), uint32(rootLen), v.ModificationTime, true, nil)
	b := make([]byte, blockSize)
	b[0] = 2
	copy(b[1:6], "CD001")
	b[6] = 1
	copy(b[8:40], padUTF16(toUTF16(params.systemID()), 32))
	copy(b[40:72], padUTF16(toUTF16(v.VolumeID), 32))
	put733(b[80:88], uint32(totalBlocks))
	copy(b[88:91], jolietEscapeSequence[:])
	put723(b[120:124], 1)
	put723(b[124:128], 1)
	put723(b[128:132], blockSize)
	put733(b[132:140], uint32(pathTableSize))
	put731(b[140:144], uint32(lPathLBA))
	put732(b[148:152], uint32(mPathLBA))
	copy(b[156:190], root)
	copy(b[318:446], padUTF16(toUTF16(v.Publisher), 128))
	copy(b[446:574], padUTF16(toUTF16(v.Preparer), 128))
	copy(b[574:702], padUTF16(toUTF16(v.ApplicationID), 128))
	copy(b[813:830], encodeVolumeDateTime(v.CreationTime)[:])
	copy(b[830:847], encodeVolumeDateTime(v.ModificationTime)[:])
	copy(b[847:864], encodeVolumeDateTime(v.ExpirationTime)[:])
	copy(b[864:881], encodeVolumeDateTime(v.EffectiveTime)[:])
	b[881] = 1
	return b, nil
}

func padUTF16(b []byte, n int) []byte {
	out := make([]byte, n)
	for i := 0; i+1 < n; i += 2 {
		out[i], out[i+1] = 0, ' '
	}
	copy(out, b)
	return out
}

func (p WriteParams) systemID() string {
	return "LINUX"
}

// pathTableDir is one resolved directory entry in path-table order: index
// 1 is always the root, and every directory's parent index is guaranteed
// to precede it (ECMA-119 9.4's ordering requirement).
type pathTableDir struct {
	node        *Node
	parentIndex int
	lba, length int64
}

// orderDirectoriesForPathTable walks v's tree breadth-first, assigning
// path-table indices in the order ECMA-119 requires: root first, then each
// level sorted by parent index and, within a parent, by name.
func orderDirectoriesForPathTable(root *Node) []*Node {
	var order []*Node
	order = append(order, root)
	queue := []*Node{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]
		var children []*Node
		for _, name := range dir.Names() {
			child := dir.Child(name)
			if child.Kind == KindDirectory {
				children = append(children, child)
			}
		}
		sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
		order = append(order, children...)
		queue = append(queue, children...)
	}
	return order
}

// buildPathTables encodes both the L (little-endian) and M (big-endian)
// path tables for dirs, whose LBA/length fields have already been resolved
// by the caller via locate.
func buildPathTables(root *Node, joliet bool, params WriteParams, locate childLocator) (lTable, mTable []byte, err error) {
	order := orderDirectoriesForPathTable(root)
	indexOf := make(map[*Node]int, len(order))
	for i, d := range order {
		indexOf[d] = i + 1
	}

	for _, d := range order {
		lba, _, lerr := locate(d, joliet)
		if lerr != nil {
			return nil, nil, lerr
		}
		var ident []byte
		if d == root {
			ident = []byte{0}
		} else if joliet {
			ident, err = jolietIdentifier(d.Name)
			if err != nil {
				return nil, nil, err
			}
		} else {
			ident = primaryIdentifier(d, params)
		}
		parent := 1
		if d.Parent != nil {
			if pidx, ok := indexOf[d.Parent]; ok {
				parent = pidx
			}
		}

		identLen := len(ident)
		pad := identLen % 2

		lrec := make([]byte, 8+identLen+pad)
		lrec[0] = byte(identLen)
		put731(lrec[2:6], uint32(lba))
		put721(lrec[6:8], uint16(parent))
		copy(lrec[8:8+identLen], ident)
		lTable = append(lTable, lrec...)

		mrec := make([]byte, 8+identLen+pad)
		mrec[0] = byte(identLen)
		put732(mrec[2:6], uint32(lba))
		put722(mrec[6:8], uint16(parent))
		copy(mrec[8:8+identLen], ident)
		mTable = append(mTable, mrec...)
	}
	return lTable, mTable, nil
}

// BuildPathTables encodes v's L and M path tables for the requested tree,
// resolving each directory's extent via layout (already fully computed by
// ComputeLayout).
func BuildPathTables(v *Volume, joliet bool, params WriteParams, layout *Layout) (lTable, mTable []byte, err error) {
	return buildPathTables(v.Root, joliet, params, layout.Locate)
}

// BuildDirectoryExtent encodes dir's full directory extent for the
// requested tree, resolving dir's own and its children's extents (and its
// parent's, or itself at the root) via layout.
func BuildDirectoryExtent(dir *Node, joliet bool, params WriteParams, layout *Layout) ([]byte, error) {
	selfLBA, selfLen, err := layout.Locate(dir, joliet)
	if err != nil {
		return nil, err
	}
	parent := dir.Parent
	if parent == nil {
		parent = dir
	}
	parentLBA, parentLen, err := layout.Locate(parent, joliet)
	if err != nil {
		return nil, err
	}
	return buildDirectoryExtent(dir, selfLBA, selfLen, parentLBA, parentLen, joliet, params, layout.Locate)
}
