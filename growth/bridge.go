// Package growth implements the Growth Bridge (GB): abstracting the write
// target (a plain file/block device, or a DLE-managed optical drive) behind
// a single append-at-NWA interface, and emulating a table of contents on
// overwriteable media that has none of its own.
package growth

import "io"

// Backend is the write-target abstraction GB exposes to the ISO Tree
// Engine: "abstract the write target,".
type Backend interface {
	// NWA reports the next-writable-address, in 2048-byte blocks.
	NWA() (uint32, error)

	// OpenSession returns a writer that appends one session starting at
	// NWA; closing it finalizes the session (syncs cache / flushes to
	// disk as appropriate to the backend).
	OpenSession() (io.WriteCloser, error)

	// Capacity reports the backend's total and available space in
	// bytes, when known.
	Capacity() (total, available int64, ok bool)

	// Sessions lists the sessions GB has discovered on this backend, in
	// append order.
	Sessions() ([]Session, error)
}

// Session is one previously-written, or about to be written, image
// session: its starting LBA and length in blocks.
type Session struct {
	StartLBA uint32
	Blocks   uint32
}

// Bridge wraps a Backend with the session bookkeeping ITE needs: the
// marker-based emulated TOC (toc.go) layers on top of whichever Backend is
// in use.
type Bridge struct {
	Backend Backend
}

// New wraps backend in a Bridge.
func New(backend Backend) *Bridge { return &Bridge{Backend: backend} }

// NWA is a passthrough to Backend.NWA, the address the next OpenSession
// call will begin writing at.
func (b *Bridge) NWA() (uint32, error) { return b.Backend.NWA() }
