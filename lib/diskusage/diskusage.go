// Package diskusage reports free/available/total space on a filesystem,
// grounded on rclone's lib/diskusage: growth uses it to size a file-backed
// growth bridge against the host filesystem's remaining capacity before
// emitting a session.
package diskusage

import "errors"

// Info holds a snapshot of filesystem space, all in bytes.
type Info struct {
	Free      uint64
	Available uint64
	Total     uint64
}

// ErrUnsupported is returned by New on platforms with no statfs-equivalent
// wired up.
var ErrUnsupported = errors.New("diskusage: not supported on this platform")
