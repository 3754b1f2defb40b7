package transport

import (
	"os"
	"sync"
)

// stdioHandle wraps the *os.File backing one grabbed device.
type stdioHandle struct {
	address string
	file    *os.File
}

func (h *stdioHandle) Address() string { return h.address }

// Stdio is the transport adapter for a regular file or a block device
// opened directly. ("Stdio back-ends use the device path
// directly"). It answers TEST_UNIT_READY/INQUIRY-class probes locally
// (a file is always "ready") and otherwise performs the CDB's data phase
// as a plain sequential Read/Write at the open file's current offset,
// since there is no real SCSI target to decode opcodes against.
type Stdio struct {
	mu      sync.Mutex
	offsets map[string]int64
}

// NewStdio creates a Stdio adapter.
func NewStdio() *Stdio {
	return &Stdio{offsets: make(map[string]int64)}
}

// IDString implements Adapter.
func (s *Stdio) IDString() string { return "stdio" }

// Initialize implements Adapter.
func (s *Stdio) Initialize() error { return nil }

// Shutdown implements Adapter.
func (s *Stdio) Shutdown() error { return nil }

// Enumerate implements Adapter; stdio addresses are caller-supplied paths,
// not discovered.
func (s *Stdio) Enumerate() ([]string, error) { return nil, nil }

// Grab opens address for read/write, creating it if absent.
func (s *Stdio) Grab(address string, exclusive bool) (DriveHandle, error) {
	flags := os.O_RDWR | os.O_CREATE
	f, err := os.OpenFile(address, flags, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stdioHandle{address: address, file: f}, nil
}

// Release closes the underlying file.
func (s *Stdio) Release(h DriveHandle) error {
	sh := h.(*stdioHandle)
	return sh.file.Close()
}

// Issue performs the data phase of cmd directly against the file at the
// file's current offset (the CDB's LBA is not consulted), and reports
// success sense (key 0) since a file has no unit-attention conditions to
// surface. A read that returns no bytes, or a failed write, is reported as
// ErrTransportFail.
func (s *Stdio) Issue(h DriveHandle, cmd *Command) error {
	sh := h.(*stdioHandle)
	switch cmd.Dir {
	case FromDevice:
		n, err := sh.file.Read(cmd.Data)
		if err != nil && n == 0 {
			cmd.Error = true
			return ErrTransportFail
		}
	case ToDevice:
		if _, err := sh.file.Write(cmd.Data); err != nil {
			cmd.Error = true
			return ErrTransportFail
		}
	}
	if len(cmd.Sense) > 0 {
		cmd.Sense[0] = 0x70
	}
	return nil
}

// DisposeDrive implements Adapter; stdio has no extra resource to free.
func (s *Stdio) DisposeDrive(h DriveHandle) error { return nil }

// File exposes the underlying *os.File for callers (the Growth Bridge's
// file backend) that need direct Seek/ReadAt/WriteAt rather than the CDB
// shim above.
func (h *stdioHandle) File() *os.File { return h.file }

// StdioFile is implemented by handles that expose their backing *os.File
// directly, so growth.FileBackend can bypass the CDB shim.
type StdioFile interface {
	DriveHandle
	File() *os.File
}

var _ StdioFile = (*stdioHandle)(nil)
