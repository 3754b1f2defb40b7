package isotree

import (
	"fmt"
	"io"
	"os"
)

// SourceKind is the leaf of a content stream chain.: "disk"
// (OS file), "image" (extent in loaded ISO), "cout" (cut-out extent of a
// disk file with offset+size), or an external input.
type SourceKind int

const (
	SourceDisk SourceKind = iota
	SourceImage
	SourceCutOut
	SourceExternal
)

// Leaf is the terminal source of a Stream chain.
type Leaf struct {
	Kind SourceKind

	// DiskPath is valid for SourceDisk and SourceCutOut.
	DiskPath string
	// Offset/Size are valid for SourceCutOut: a window onto DiskPath.
	Offset, Size int64

	// ImageLBA/ImageSize are valid for SourceImage: an extent already
	// present in a loaded ISO volume. Image is the section reader LoadVolume
	// opened the volume from; Open reads ImageSize bytes starting at
	// ImageLBA*blockSize from it.
	ImageLBA, ImageSize int64
	Image               io.ReaderAt

	// ExternalOpen is valid for SourceExternal: a caller-supplied opener
	// for content not backed by a plain disk file (e.g. the El Torito
	// catalog's synthesized bytes).
	ExternalOpen func() (io.ReadCloser, error)
}

// Open returns a reader positioned at the start of the leaf's content.
func (l *Leaf) Open() (io.ReadCloser, error) {
	switch l.Kind {
	case SourceDisk:
		return os.Open(l.DiskPath)
	case SourceCutOut:
		f, err := os.Open(l.DiskPath)
		if err != nil {
			return nil, err
		}
		if _, err := f.Seek(l.Offset, io.SeekStart); err != nil {
			f.Close()
			return nil, err
		}
		return &limitedReadCloser{io.LimitReader(f, l.Size), f}, nil
	case SourceExternal:
		if l.ExternalOpen == nil {
			return nil, fmt.Errorf("isotree: external leaf has no opener")
		}
		return l.ExternalOpen()
	case SourceImage:
		if l.Image == nil {
			return nil, fmt.Errorf("isotree: SourceImage leaf requires a loaded volume reader")
		}
		sr := io.NewSectionReader(l.Image, l.ImageLBA*blockSize, l.ImageSize)
		return io.NopCloser(sr), nil
	default:
		return nil, fmt.Errorf("isotree: unknown leaf kind %d", l.Kind)
	}
}

// Size reports the leaf's content length without opening it, when known.
func (l *Leaf) Size() (int64, bool) {
	switch l.Kind {
	case SourceCutOut:
		return l.Size, true
	case SourceImage:
		return l.ImageSize, true
	case SourceDisk:
		fi, err := os.Stat(l.DiskPath)
		if err != nil {
			return 0, false
		}
		return fi.Size(), true
	default:
		return 0, false
	}
}

type limitedReadCloser struct {
	io.Reader
	c io.Closer
}

func (l *limitedReadCloser) Close() error { return l.c.Close() }

// TransformKind names a built-in stream transformer.
type TransformKind int

const (
	TransformNone TransformKind = iota
	TransformGzip
	TransformGunzip
	TransformZisofsEncode
	TransformZisofsDecode
	TransformExternal
)

// Stream is one node in a content stream chain: either the terminal Leaf,
// or a Transform wrapping an inner Stream "File-specific:
// a content stream chain. ... In front of the leaf may sit zero or more
// transformer streams."
type Stream struct {
	Transform TransformKind
	External  *ExternalFilter // valid when Transform == TransformExternal
	Inner     *Stream         // nil at the leaf
	Leaf      *Leaf           // valid only at the leaf (Inner == nil)

	// Suffix is appended to the node name for an encoding transform and
	// stripped for the matching decoding transform, so setFilter/
	// removeFilter can keep the visible name in sync.
	Suffix string
}

// NewLeafStream wraps leaf as a zero-transform stream, the tail of any
// chain.
func NewLeafStream(leaf *Leaf) *Stream { return &Stream{Leaf: leaf} }

// Wrap pushes a new transform in front of s, returning the new head.
func (s *Stream) Wrap(kind TransformKind, suffix string) *Stream {
	return &Stream{Transform: kind, Inner: s, Suffix: suffix}
}

// Unwrap pops the outermost transform, returning the inner stream (or s
// itself if s is already the leaf) removeFilter.
func (s *Stream) Unwrap() *Stream {
	if s.Inner == nil {
		return s
	}
	return s.Inner
}

// Depth counts the transform layers above the leaf.
func (s *Stream) Depth() int {
	depth := 0
	for cur := s; cur.Inner != nil; cur = cur.Inner {
		depth++
	}
	return depth
}

// LeafOf walks to the terminal Leaf of a chain.
func (s *Stream) LeafOf() *Leaf {
	cur := s
	for cur.Inner != nil {
		cur = cur.Inner
	}
	return cur.Leaf
}
