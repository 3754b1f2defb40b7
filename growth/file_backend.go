package growth

import (
	"fmt"
	"io"
	"os"

	"github.com/isoburn/isoburn/lib/diskusage"
)

const blockSize = 2048

// FileBackend targets a regular file or a block device.:
// "the target is a regular file or a block device. 'NWA' is the file's
// current end; writes are appended or overwritten according to an
// explicit flag; capacity is probed via statvfs / BLKGETSIZE /
// DIOCGMEDIASIZE depending on platform." Capacity probing here uses
// statvfs (via lib/diskusage) on the containing filesystem, the portable
// subset of that platform list; raw block-device size ioctls are not
// wired because FileBackend's File is always opened as a regular os.File.
type FileBackend struct {
	Path      string
	Overwrite bool // when true, OpenSession truncates rather than appends

	emulatedTOC *emulatedTOC
}

// NewFileBackend opens (creating if absent) path as a growth target.
func NewFileBackend(path string, overwrite bool) (*FileBackend, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return &FileBackend{Path: path, Overwrite: overwrite}, nil
}

// NWA reports the current end of the file in 2048-byte blocks, or, if a
// reconstructed emulated TOC is loaded, the block after its last session.
func (b *FileBackend) NWA() (uint32, error) {
	if b.emulatedTOC != nil {
		return b.emulatedTOC.nwa(), nil
	}
	fi, err := os.Stat(b.Path)
	if err != nil {
		return 0, err
	}
	return uint32((fi.Size() + blockSize - 1) / blockSize), nil
}

// Capacity reports free space on the filesystem containing Path, via
// statvfs.
func (b *FileBackend) Capacity() (total, available int64, ok bool) {
	info, err := diskusage.New(b.Path)
	if err != nil {
		return 0, 0, false
	}
	return int64(info.Total), int64(info.Available), true
}

type fileSessionWriter struct {
	f         *os.File
	backend   *FileBackend
	startLBA  uint32
	written   int64
}

// OpenSession opens Path for append (or truncation, if Overwrite), the
// file-backend write path.
func (b *FileBackend) OpenSession() (io.WriteCloser, error) {
	flags := os.O_RDWR | os.O_CREATE
	if b.Overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(b.Path, flags, 0o644)
	if err != nil {
		return nil, err
	}
	start, err := b.NWA()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileSessionWriter{f: f, backend: b, startLBA: start}, nil
}

func (w *fileSessionWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *fileSessionWriter) Close() error {
	blocks := uint32((w.written + blockSize - 1) / blockSize)
	if w.backend.emulatedTOC != nil {
		w.backend.emulatedTOC.appendSession(Session{StartLBA: w.startLBA, Blocks: blocks})
		if err := writeMarkerBlock(w.f, w.backend.emulatedTOC); err != nil {
			w.f.Close()
			return err
		}
	}
	return w.f.Close()
}

// Sessions reports the sessions GB has discovered in this file, per
// the marker-block emulated TOC. If no markers have been
// loaded (LoadEmulatedTOC was never called and the file is treated as a
// single anonymous session), Sessions reports one session spanning the
// whole current length.
func (b *FileBackend) Sessions() ([]Session, error) {
	if b.emulatedTOC != nil {
		return b.emulatedTOC.sessions, nil
	}
	fi, err := os.Stat(b.Path)
	if err != nil {
		return nil, err
	}
	if fi.Size() == 0 {
		return nil, nil
	}
	return []Session{{StartLBA: 0, Blocks: uint32((fi.Size() + blockSize - 1) / blockSize)}}, nil
}

// EnableEmulatedTOC turns on marker-block TOC emulation for subsequent
// OpenSession calls, for overwriteable media with no hardware
// multi-session support.
func (b *FileBackend) EnableEmulatedTOC() {
	if b.emulatedTOC == nil {
		b.emulatedTOC = newEmulatedTOC()
	}
}

// LoadEmulatedTOC scans Path for libisoburn-convention marker blocks and
// reconstructs the session list.: "On subsequent open, GB
// scans for those markers and reconstructs session-list + leadout
// positions so the ITE can read previous sessions as if the medium were
// sequential."
func (b *FileBackend) LoadEmulatedTOC() error {
	f, err := os.Open(b.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	toc, err := scanMarkerBlocks(f)
	if err != nil {
		return fmt.Errorf("growth: scan emulated TOC in %q: %w", b.Path, err)
	}
	b.emulatedTOC = toc
	return nil
}

var _ Backend = (*FileBackend)(nil)
