package isotree

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// LoadVolume reconstructs an *isotree.Volume from an ISO 9660 image of the
// given size, read through r. It parses the Primary Volume Descriptor and
// recursively walks directory records, restoring Rock Ridge POSIX
// attributes, real names, symlink targets and device numbers wherever a
// directory record carries a system-use area. File leaves are backed
// directly by r via SourceImage, so their content is never copied into
// memory during the load.
func LoadVolume(r io.ReaderAt, size int64) (*Volume, error) {
	pvd := make([]byte, blockSize)
	if _, err := r.ReadAt(pvd, 16*blockSize); err != nil {
		return nil, fmt.Errorf("isotree: reading primary volume descriptor: %w", err)
	}
	if string(pvd[1:6]) != "CD001" || pvd[0] != 1 {
		return nil, fmt.Errorf("isotree: sector 16 is not a primary volume descriptor")
	}

	v := NewVolume(trimASCII(string(pvd[40:72])))
	v.SystemID = trimASCII(string(pvd[8:40]))
	v.Publisher = trimASCII(string(pvd[318:446]))
	v.Preparer = trimASCII(string(pvd[446:574]))
	v.ApplicationID = trimASCII(string(pvd[574:702]))
	v.CopyrightFile = trimASCII(string(pvd[702:739]))
	v.AbstractFile = trimASCII(string(pvd[739:776]))
	v.BiblioFile = trimASCII(string(pvd[776:813]))
	v.CreationTime = decodeVolumeDateTime(pvd[813:830])
	v.ModificationTime = decodeVolumeDateTime(pvd[830:847])
	v.ExpirationTime = decodeVolumeDateTime(pvd[847:864])
	v.EffectiveTime = decodeVolumeDateTime(pvd[864:881])

	rootRec := pvd[156:190]
	rootLBA := int64(get733(rootRec[2:10]))
	rootLen := int64(get733(rootRec[10:18]))
	if rootLBA <= 0 || rootLen <= 0 || rootLBA*blockSize+rootLen > size {
		return nil, fmt.Errorf("isotree: root directory record (lba=%d len=%d) exceeds image size %d", rootLBA, rootLen, size)
	}

	root, err := loadDirectory(r, rootLBA, rootLen, size)
	if err != nil {
		return nil, err
	}
	root.Name = ""
	v.Root = root
	v.Hardlinks = NewHardlinkIndex()
	v.Hardlinks.Rebuild(v.Root)
	return v, nil
}

// decodeVolumeDateTime parses a PVD/SVD date-time field (8.4.26.1): 16
// ASCII digits, all-zero meaning "not specified".
func decodeVolumeDateTime(b []byte) time.Time {
	if len(b) < 16 || string(b[:16]) == "0000000000000000" {
		return time.Time{}
	}
	digit := func(i int) int {
		if b[i] < '0' || b[i] > '9' {
			return 0
		}
		return int(b[i] - '0')
	}
	read := func(from, n int) int {
		v := 0
		for i := 0; i < n; i++ {
			v = v*10 + digit(from+i)
		}
		return v
	}
	year, month, day := read(0, 4), read(4, 2), read(6, 2)
	hour, min, sec := read(8, 2), read(10, 2), read(12, 2)
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

func trimASCII(s string) string { return strings.TrimRight(s, " \x00") }

// loadDirectory reads the directory extent at (lba, length) and recursively
// resolves every child, building a live *Node subtree.
func loadDirectory(r io.ReaderAt, lba, length, imageSize int64) (*Node, error) {
	if lba*blockSize+length > imageSize {
		return nil, fmt.Errorf("isotree: directory extent (lba=%d len=%d) exceeds image size %d", lba, length, imageSize)
	}
	data := make([]byte, length)
	if _, err := r.ReadAt(data, lba*blockSize); err != nil {
		return nil, fmt.Errorf("isotree: reading directory extent at lba %d: %w", lba, err)
	}

	dir := newNode("", KindDirectory)
	i := 0
	first := true
	for i < len(data) {
		recLen := int(data[i])
		if recLen == 0 {
			// Zero-length filler pads out to the next sector boundary.
			next := ((i / blockSize) + 1) * blockSize
			if next <= i {
				break
			}
			i = next
			continue
		}
		if i+recLen > len(data) {
			break
		}
		rec := data[i : i+recLen]
		i += recLen

		identLen := int(rec[32])
		if 33+identLen > len(rec) {
			continue
		}
		ident := rec[33 : 33+identLen]

		if first {
			// "." record: carries the directory's own recording time.
			dir.MTime = decodeRecordDateTime(rec[18:25])
			first = false
		}
		if identLen == 1 && (ident[0] == identSelf || ident[0] == identParent) {
			continue
		}

		extent := int64(get733(rec[2:10]))
		dataLen := int64(get733(rec[10:18]))
		flags := rec[25]
		suOff := 33 + identLen
		if identLen%2 == 0 {
			suOff++
		}
		var su []byte
		if suOff < len(rec) {
			su = rec[suOff:]
		}

		isDir := flags&0x02 != 0
		name := stripVersionSuffix(string(ident))
		entries := suspEntries(su)
		_, hasSL := entries["SL"]
		_, hasPN := entries["PN"]

		var child *Node
		switch {
		case isDir:
			sub, err := loadDirectory(r, extent, dataLen, imageSize)
			if err != nil {
				return nil, err
			}
			child = sub
		case hasSL:
			child = newNode(name, KindSymlink)
		case hasPN:
			child = newNode(name, KindSpecial)
		default:
			child = newNode(name, KindFile)
			child.Content = NewLeafStream(&Leaf{
				Kind:      SourceImage,
				ImageLBA:  extent,
				ImageSize: dataLen,
				Image:     r,
			})
		}
		child.Name = name
		child.MTime = decodeRecordDateTime(rec[18:25])
		if len(su) > 0 {
			if err := applySystemUse(child, su); err != nil {
				return nil, err
			}
		}
		child.Parent = dir
		dir.children[child.Name] = child
	}
	return dir, nil
}

// stripVersionSuffix removes the ";N" version number ISO 9660 appends to
// file identifiers, which Rock Ridge's NM entry (applied afterward, if
// present) supersedes anyway.
func stripVersionSuffix(s string) string {
	if idx := strings.LastIndexByte(s, ';'); idx >= 0 {
		return s[:idx]
	}
	return s
}
