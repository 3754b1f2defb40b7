package growth

import (
	"bytes"
	"fmt"
	"io"

	"github.com/isoburn/isoburn/drive"
)

// DriveBackend targets a DLE-managed optical drive.: "the
// target is a DLE-managed optical drive. NWA is obtained from the last
// READ_TRACK_INFORMATION; writes are streamed via WRITE(10)."
type DriveBackend struct {
	Drive *drive.Drive

	emulatedTOC *emulatedTOC
}

// NewDriveBackend wraps an already-probed, KnownMedia drive.
func NewDriveBackend(d *drive.Drive) *DriveBackend { return &DriveBackend{Drive: d} }

// NWA re-reads the drive's track information and reports its NWA.
func (b *DriveBackend) NWA() (uint32, error) {
	if err := b.Drive.ReadTOC(); err != nil {
		return 0, fmt.Errorf("growth: refresh NWA: %w", err)
	}
	if b.emulatedTOC != nil && len(b.emulatedTOC.sessions) > 0 {
		return b.emulatedTOC.nwa(), nil
	}
	return b.Drive.NWA, nil
}

// Capacity is not derivable from the drive handle alone (it depends on
// media capacity from READ CAPACITY, already folded into layout planning
// upstream); DriveBackend reports unknown.
func (b *DriveBackend) Capacity() (total, available int64, ok bool) { return 0, 0, false }

// EnableEmulatedTOC turns on marker-block emulation for media without
// hardware multi-session, matching FileBackend's knob.
func (b *DriveBackend) EnableEmulatedTOC() {
	if b.emulatedTOC == nil {
		b.emulatedTOC = newEmulatedTOC()
	}
}

type driveSessionWriter struct {
	backend  *DriveBackend
	buf      bytes.Buffer
	startLBA uint32
}

// OpenSession buffers the caller's writes, then streams them to the drive
// as WRITE(10) bursts on Close — ComputeLayout has already sized the
// session, so a single burst pass at Close time satisfies the // streaming contract without requiring OpenSession's caller to know the
// total length up front.
func (b *DriveBackend) OpenSession() (io.WriteCloser, error) {
	start, err := b.NWA()
	if err != nil {
		return nil, err
	}
	return &driveSessionWriter{backend: b, startLBA: start}, nil
}

func (w *driveSessionWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *driveSessionWriter) Close() error {
	data := w.buf.Bytes()
	blocks := uint32((len(data) + blockSize - 1) / blockSize)
	if err := w.backend.Drive.WriteTrack(bytes.NewReader(data), blocks); err != nil {
		return err
	}
	if w.backend.emulatedTOC != nil {
		w.backend.emulatedTOC.appendSession(Session{StartLBA: w.startLBA, Blocks: blocks})
	}
	return nil
}

// Sessions reports the emulated session list when enabled; otherwise it
// falls back to a single session read from READ_TRACK_INFORMATION's
// reported extent, since hardware multi-session drives track this
// themselves and GB need not duplicate it.
func (b *DriveBackend) Sessions() ([]Session, error) {
	if b.emulatedTOC != nil {
		return b.emulatedTOC.sessions, nil
	}
	return []Session{{StartLBA: 0, Blocks: b.Drive.NWA}}, nil
}

var _ Backend = (*DriveBackend)(nil)
