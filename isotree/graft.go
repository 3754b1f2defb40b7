package isotree

import (
	"fmt"
	"os"
	"path/filepath"
)

// GraftOptions mirrors the option table.
type GraftOptions struct {
	Mkdir       bool
	Symlink     bool
	CutOutOffset, CutOutSize int64
	CutOut      bool

	HideISORockRidge, HideJoliet, HideHFSPlus bool
	NoDive      bool

	Overwrite OverwritePolicy

	// FollowSymlinks controls whether a symlink encountered while
	// recursing a disk directory is followed (copied as its target's
	// content) or carried over as an ISO symlink node.
	FollowSymlinks bool

	// ExcludePatterns, when non-empty, names disk_path shell patterns
	// that graft refuses to import.
	ExcludePatterns []string

	// SplitThreshold, when positive, caps the size of any single file
	// extent graftFromDisk emits: a regular file larger than this is
	// grafted as a directory of part_NNN_of_MMM_at_BYTES_with_LEN_of_TOTAL
	// cut-out children instead of one whole-file leaf.
	SplitThreshold int64
}

func hideFlags(o GraftOptions) HideFlags {
	var h HideFlags
	if o.HideISORockRidge {
		h |= HideISORockRidge
	}
	if o.HideJoliet {
		h |= HideJoliet
	}
	if o.HideHFSPlus {
		h |= HideHFSPlus
	}
	return h
}

func excluded(diskPath string, patterns []string) bool {
	base := filepath.Base(diskPath)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

// Graft implements the core insertion primitive: it walks or
// creates imgPath's intermediate directories under root, then creates the
// leaf described by diskPath/opts.
func Graft(root *Node, diskPath, imgPath string, opts GraftOptions) (*Node, error) {
	if excluded(diskPath, opts.ExcludePatterns) {
		return nil, fmt.Errorf("isotree: %q matches an exclusion pattern", diskPath)
	}

	parent, name, err := ResolveParent(root, imgPath)
	if err != nil {
		diskHint := ""
		if !opts.Mkdir && !opts.Symlink && !opts.CutOut {
			diskHint = filepath.Dir(diskPath)
		}
		if _, isDirErr := MkdirAll(root, filepath.Dir(imgPath), diskHint); isDirErr == nil {
			parent, name, err = ResolveParent(root, imgPath)
		}
		if err != nil {
			return nil, err
		}
	}

	switch {
	case opts.Mkdir:
		return graftLeaf(parent, name, NewDirectory(name), opts)
	case opts.Symlink:
		return graftLeaf(parent, name, NewSymlink(name, diskPath), opts)
	case opts.CutOut:
		leaf := &Leaf{Kind: SourceCutOut, DiskPath: diskPath, Offset: opts.CutOutOffset, Size: opts.CutOutSize}
		n := newNode(name, KindFile)
		n.Content = NewLeafStream(leaf)
		return graftLeaf(parent, name, n, opts)
	default:
		return graftFromDisk(parent, name, diskPath, opts)
	}
}

// graftFromDisk stats diskPath and creates either a directory (recursing,
// unless NoDive), a symlink, a special file, or a regular file leaf.
func graftFromDisk(parent *Node, name, diskPath string, opts GraftOptions) (*Node, error) {
	var fi os.FileInfo
	var err error
	if opts.FollowSymlinks {
		fi, err = os.Stat(diskPath)
	} else {
		fi, err = os.Lstat(diskPath)
	}
	if err != nil {
		return nil, fmt.Errorf("isotree: stat %q: %w", diskPath, err)
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(diskPath)
		if err != nil {
			return nil, err
		}
		n := transferProps(NewSymlink(name, target), fi, diskPath)
		if err := captureDiskMetadata(n, diskPath, opts); err != nil {
			return nil, err
		}
		return graftLeaf(parent, name, n, opts)

	case fi.IsDir():
		n := transferProps(NewDirectory(name), fi, diskPath)
		if err := captureDiskMetadata(n, diskPath, opts); err != nil {
			return nil, err
		}
		dirNode, err := graftLeaf(parent, name, n, opts)
		if err != nil || dirNode == nil {
			return dirNode, err
		}
		if opts.NoDive {
			return dirNode, nil
		}
		entries, err := os.ReadDir(diskPath)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if _, err := graftFromDisk(dirNode, e.Name(), filepath.Join(diskPath, e.Name()), opts); err != nil {
				return nil, err
			}
		}
		return dirNode, nil

	case fi.Mode()&os.ModeDevice != 0 || fi.Mode()&os.ModeCharDevice != 0:
		major, minor := deviceNumbers(fi)
		n := transferProps(NewSpecial(name, major, minor), fi, diskPath)
		if err := captureDiskMetadata(n, diskPath, opts); err != nil {
			return nil, err
		}
		return graftLeaf(parent, name, n, opts)

	default:
		if opts.SplitThreshold > 0 && fi.Size() > opts.SplitThreshold {
			return splitFileIntoParts(parent, name, fi, diskPath, opts)
		}
		n := newNode(name, KindFile)
		n.Content = NewLeafStream(&Leaf{Kind: SourceDisk, DiskPath: diskPath})
		transferProps(n, fi, diskPath)
		if dev, inode, ok := deviceInode(fi); ok {
			n.SetFingerprint(dev, inode)
		}
		if err := captureDiskMetadata(n, diskPath, opts); err != nil {
			return nil, err
		}
		return graftLeaf(parent, name, n, opts)
	}
}

// captureDiskMetadata pulls diskPath's extended attributes and POSIX ACLs
// (when the platform exposes them) onto n, alongside the mode/time
// properties transferProps already copied.
func captureDiskMetadata(n *Node, diskPath string, opts GraftOptions) error {
	if err := ReadXattr(n, diskPath, opts.FollowSymlinks); err != nil {
		return err
	}
	return ReadACL(n, diskPath, opts.FollowSymlinks)
}

// splitFileIntoParts grafts a disk file larger than opts.SplitThreshold as
// a directory of fixed-size cut-out children, each a SourceCutOut window
// onto diskPath, named part_NNN_of_MMM_at_BYTES_with_LEN_of_TOTAL so the
// part's offset, length, and the whole file's size are recoverable from
// the name alone.
func splitFileIntoParts(parent *Node, name string, fi os.FileInfo, diskPath string, opts GraftOptions) (*Node, error) {
	total := fi.Size()
	partSize := opts.SplitThreshold
	count := int((total + partSize - 1) / partSize)
	if count == 0 {
		count = 1
	}

	dirNode := transferProps(NewDirectory(name), fi, diskPath)
	added, err := graftLeaf(parent, name, dirNode, opts)
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		offset := int64(i) * partSize
		length := partSize
		if offset+length > total {
			length = total - offset
		}
		partName := fmt.Sprintf("part_%03d_of_%03d_at_%d_with_%d_of_%d", i+1, count, offset, length, total)
		part := newNode(partName, KindFile)
		part.Content = NewLeafStream(&Leaf{Kind: SourceCutOut, DiskPath: diskPath, Offset: offset, Size: length})
		part.Mode = uint32(fi.Mode().Perm())
		part.MTime = fi.ModTime()
		if _, err := graftLeaf(added, partName, part, opts); err != nil {
			return nil, err
		}
	}
	return added, nil
}

func graftLeaf(parent *Node, name string, n *Node, opts GraftOptions) (*Node, error) {
	n.Hide = hideFlags(opts)
	added, err := parent.AddChild(name, n, opts.Overwrite)
	if err != nil {
		return nil, err
	}
	return added, nil
}

// transferProps copies mode, mtime, and (via applyPlatformStat) the
// platform-specific uid/gid/atime/ctime/device-number fields from fi onto
// n.
func transferProps(n *Node, fi os.FileInfo, diskPath string) *Node {
	n.Mode = uint32(fi.Mode().Perm())
	n.MTime = fi.ModTime()
	applyPlatformStat(n, fi)
	return n
}
