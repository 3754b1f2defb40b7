//go:build libcdio

package transport

import "errors"

// This file only builds under the "libcdio" tag: a real implementation
// would cgo-bind GNU libcdio's cdio_read_toc/mmc_run_cmd, and pulling in a
// C library by default would contradict the rest of this module's pure-Go
// posture. Grounded on sg-libcdio.c.
var errLibcdioNotImplemented = errors.New("transport: libcdio adapter not implemented")

type libcdioHandle struct{ address string }

func (h *libcdioHandle) Address() string { return h.address }

// Libcdio is a documented-but-stubbed adapter for GNU libcdio's mmc_run_cmd
// pass-through, for X/Open systems with no native SG_IO/CAM/uscsi binding.
type Libcdio struct{}

// NewLibcdio creates a Libcdio adapter stub.
func NewLibcdio() *Libcdio { return &Libcdio{} }

func (l *Libcdio) IDString() string             { return "libcdio" }
func (l *Libcdio) Initialize() error            { return nil }
func (l *Libcdio) Shutdown() error              { return nil }
func (l *Libcdio) Enumerate() ([]string, error) { return nil, nil }
func (l *Libcdio) Grab(address string, exclusive bool) (DriveHandle, error) {
	return nil, errLibcdioNotImplemented
}
func (l *Libcdio) Release(h DriveHandle) error { return errLibcdioNotImplemented }
func (l *Libcdio) Issue(h DriveHandle, cmd *Command) error {
	return errLibcdioNotImplemented
}
func (l *Libcdio) DisposeDrive(h DriveHandle) error { return nil }

var _ Adapter = (*Libcdio)(nil)
