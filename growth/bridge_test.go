package growth

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	nwa      uint32
	nwaErr   error
	sessions []Session
}

func (f *fakeBackend) NWA() (uint32, error)     { return f.nwa, f.nwaErr }
func (f *fakeBackend) OpenSession() (io.WriteCloser, error) {
	return nil, nil
}
func (f *fakeBackend) Capacity() (int64, int64, bool) { return 0, 0, false }
func (f *fakeBackend) Sessions() ([]Session, error)   { return f.sessions, nil }

var _ Backend = (*fakeBackend)(nil)

func TestBridgeNWADelegatesToBackend(t *testing.T) {
	b := New(&fakeBackend{nwa: 42})
	nwa, err := b.NWA()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), nwa)
}

func TestBridgeNWAPropagatesError(t *testing.T) {
	wantErr := assert.AnError
	b := New(&fakeBackend{nwaErr: wantErr})
	_, err := b.NWA()
	assert.ErrorIs(t, err, wantErr)
}
