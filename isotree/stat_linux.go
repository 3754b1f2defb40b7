//go:build linux

package isotree

import (
	"os"
	"syscall"
	"time"
)

// applyPlatformStat/deviceNumbers/deviceInode extract the fields Graft
// transfers onto a node from a raw Stat_t: atime/ctime from
// stat.Atim/stat.Ctim, and device/inode numbers from the Linux Stat_t's
// Rdev/Dev/Ino fields.

func applyPlatformStat(n *Node, fi os.FileInfo) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	n.UID = st.Uid
	n.GID = st.Gid
	n.ATime = time.Unix(st.Atim.Unix())
	n.CTime = time.Unix(st.Ctim.Unix())
}

func deviceNumbers(fi os.FileInfo) (major, minor uint32) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	rdev := uint64(st.Rdev)
	return uint32((rdev >> 8) & 0xfff), uint32(rdev&0xff | (rdev>>12)&0xfff00)
}

func deviceInode(fi os.FileInfo) (dev, inode uint64, ok bool) {
	st, sok := fi.Sys().(*syscall.Stat_t)
	if !sok {
		return 0, 0, false
	}
	return uint64(st.Dev), st.Ino, true
}
