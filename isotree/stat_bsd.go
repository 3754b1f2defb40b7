//go:build darwin || freebsd || netbsd

package isotree

import (
	"os"
	"syscall"
	"time"
)

// applyPlatformStat reads Atimespec/Ctimespec on these BSD-family Stat_t
// layouts (distinct from openbsd/solaris's Atim/Ctim, handled in
// stat_unix.go).

func applyPlatformStat(n *Node, fi os.FileInfo) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	n.UID = st.Uid
	n.GID = st.Gid
	n.ATime = time.Unix(st.Atimespec.Unix())
	n.CTime = time.Unix(st.Ctimespec.Unix())
}

func deviceNumbers(fi os.FileInfo) (major, minor uint32) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	rdev := uint64(st.Rdev)
	return uint32((rdev >> 8) & 0xfff), uint32(rdev & 0xff)
}

func deviceInode(fi os.FileInfo) (dev, inode uint64, ok bool) {
	st, sok := fi.Sys().(*syscall.Stat_t)
	if !sok {
		return 0, 0, false
	}
	return uint64(st.Dev), uint64(st.Ino), true
}
