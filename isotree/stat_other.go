//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !solaris

package isotree

import "os"

// No portable Stat_t fields exist for devices/atime/ctime/fingerprints on
// these platforms, so Graft falls back to fi.ModTime() (set by the caller)
// for the times and leaves device numbers and disk-inode fingerprints
// unset.

func applyPlatformStat(n *Node, fi os.FileInfo) {}

func deviceNumbers(fi os.FileInfo) (major, minor uint32) { return 0, 0 }

func deviceInode(fi os.FileInfo) (dev, inode uint64, ok bool) { return 0, 0, false }
