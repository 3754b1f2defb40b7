//go:build freebsd

package transport

import "errors"

// errNotImplemented is returned by every I/O method of the stubbed
// platform adapters. Non-goals scope out a full camlib(3) CAM pass-through
// implementation; this stub exists so the package still builds and
// Enumerate/IDString are usable on these GOOS values, per sg-freebsd.c's
// camlib-based pass-through (CAM_DIR_IN/CAM_DIR_OUT, cam_getccb/cam_send_ccb)
// which a full port would wrap.
var errNotImplemented = errors.New("transport: freebsd CAM adapter not implemented")

type freebsdHandle struct{ address string }

func (h *freebsdHandle) Address() string { return h.address }

// FreeBSD is a documented-but-stubbed adapter for camlib(3) CAM
// pass-through, grounded on sg-freebsd.c/sg-freebsd-port.c. Enumerate
// reports no devices, and Grab, Release and Issue return errNotImplemented.
type FreeBSD struct{}

// NewFreeBSD creates a FreeBSD adapter stub.
func NewFreeBSD() *FreeBSD { return &FreeBSD{} }

func (f *FreeBSD) IDString() string                  { return "freebsd-cam" }
func (f *FreeBSD) Initialize() error                 { return nil }
func (f *FreeBSD) Shutdown() error                   { return nil }
func (f *FreeBSD) Enumerate() ([]string, error)      { return nil, nil }
func (f *FreeBSD) Grab(address string, exclusive bool) (DriveHandle, error) {
	return nil, errNotImplemented
}
func (f *FreeBSD) Release(h DriveHandle) error       { return errNotImplemented }
func (f *FreeBSD) Issue(h DriveHandle, cmd *Command) error {
	return errNotImplemented
}
func (f *FreeBSD) DisposeDrive(h DriveHandle) error { return nil }

var _ Adapter = (*FreeBSD)(nil)
