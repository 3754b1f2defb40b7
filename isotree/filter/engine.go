// Package filter applies the transform chain described by an isotree.Stream
// to real bytes: built-in gzip/zisofs codecs and external filter programs.
package filter

import (
	"fmt"
	"io"

	"github.com/isoburn/isoburn/isotree"
)

// Open returns a reader that yields s's fully-transformed content: it opens
// the terminal Leaf and wraps it with one io.Reader per Stream layer,
// outermost last "Each stream exposes (open, read,
// close, size, type-tag)".
func Open(s *isotree.Stream) (io.ReadCloser, error) {
	var layers []*isotree.Stream
	for cur := s; cur != nil; cur = cur.Inner {
		layers = append(layers, cur)
		if cur.Inner == nil {
			break
		}
	}
	// layers is now [outermost ... leaf]; walk back-to-front so we open the
	// leaf first and wrap outward.
	leaf := layers[len(layers)-1]
	rc, err := leaf.Leaf.Open()
	if err != nil {
		return nil, err
	}
	for i := len(layers) - 2; i >= 0; i-- {
		rc, err = wrap(layers[i].Transform, rc, layers[i].External)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

func wrap(kind isotree.TransformKind, inner io.ReadCloser, ext *isotree.ExternalFilter) (io.ReadCloser, error) {
	switch kind {
	case isotree.TransformNone:
		return inner, nil
	case isotree.TransformGzip:
		return gzipEncode(inner)
	case isotree.TransformGunzip:
		return gzipDecode(inner)
	case isotree.TransformZisofsEncode:
		return zisofsEncode(inner)
	case isotree.TransformZisofsDecode:
		return zisofsDecode(inner)
	case isotree.TransformExternal:
		if ext == nil {
			return nil, fmt.Errorf("isotree/filter: external transform with no filter registered")
		}
		return externalRun(ext, inner)
	default:
		return nil, fmt.Errorf("isotree/filter: unknown transform kind %d", kind)
	}
}
