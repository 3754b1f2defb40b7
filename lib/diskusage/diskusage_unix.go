//go:build linux || darwin || freebsd || solaris
// +build linux darwin freebsd solaris

package diskusage

import "golang.org/x/sys/unix"

// New returns the disk usage for the filesystem containing path.
func New(path string) (Info, error) {
	var statfs unix.Statfs_t
	err := unix.Statfs(path, &statfs)
	if err != nil {
		return Info{}, err
	}
	bsize := uint64(statfs.Bsize) // nolint: unconvert
	return Info{
		Total:     statfs.Blocks * bsize,
		Free:      statfs.Bfree * bsize,
		Available: statfs.Bavail * bsize,
	}, nil
}
