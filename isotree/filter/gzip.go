package filter

import (
	"io"

	"github.com/buengese/sgzip"
)

// gzipEncode streams inner through sgzip's seekable-block gzip writer,
// via a pipe and a copy goroutine so the caller can read compressed
// output without buffering it all in memory first.
func gzipEncode(inner io.ReadCloser) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	go func() {
		defer inner.Close()
		w, err := sgzip.NewWriterLevel(pw, sgzip.DefaultCompression)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(w, inner); err != nil {
			w.Close()
			pw.CloseWithError(err)
			return
		}
		if err := w.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()
	return pr, nil
}

// gzipDecode streams inner through sgzip's reader, grounded on
// gzipModeHandler.openGetReadCloser's sgzip.NewReader(cr) call.
func gzipDecode(inner io.ReadCloser) (io.ReadCloser, error) {
	r, err := sgzip.NewReader(inner)
	if err != nil {
		inner.Close()
		return nil, err
	}
	return &readCloserPair{Reader: r, closer: inner}, nil
}

type readCloserPair struct {
	io.Reader
	closer io.Closer
}

func (r *readCloserPair) Close() error { return r.closer.Close() }
