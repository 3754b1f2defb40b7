//go:build solaris

package transport

import "errors"

var errSolarisNotImplemented = errors.New("transport: solaris uscsi adapter not implemented")

type solarisHandle struct{ address string }

func (h *solarisHandle) Address() string { return h.address }

// Solaris is a documented-but-stubbed adapter for the uscsi(7I) ioctl
// pass-through, grounded on sg-solaris.c. A full port would fill in
// struct uscsi_cmd (uscsi_cdb/uscsi_bufaddr/uscsi_buflen/uscsi_rqbuf) and
// issue USCSICMD via ioctl(2) against /dev/rdsk nodes.
type Solaris struct{}

// NewSolaris creates a Solaris adapter stub.
func NewSolaris() *Solaris { return &Solaris{} }

func (s *Solaris) IDString() string             { return "solaris-uscsi" }
func (s *Solaris) Initialize() error            { return nil }
func (s *Solaris) Shutdown() error              { return nil }
func (s *Solaris) Enumerate() ([]string, error) { return nil, nil }
func (s *Solaris) Grab(address string, exclusive bool) (DriveHandle, error) {
	return nil, errSolarisNotImplemented
}
func (s *Solaris) Release(h DriveHandle) error { return errSolarisNotImplemented }
func (s *Solaris) Issue(h DriveHandle, cmd *Command) error {
	return errSolarisNotImplemented
}
func (s *Solaris) DisposeDrive(h DriveHandle) error { return nil }

var _ Adapter = (*Solaris)(nil)
