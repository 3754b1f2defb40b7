package growth

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMarkerBlockParseRoundTrip(t *testing.T) {
	toc := newEmulatedTOC()
	toc.appendSession(Session{StartLBA: 16, Blocks: 100})
	toc.appendSession(Session{StartLBA: 117, Blocks: 50})

	var buf bytes.Buffer
	require.NoError(t, writeMarkerBlock(&buf, toc))
	assert.Equal(t, blockSize, buf.Len())

	sessions, ok := parseMarkerBlock(buf.Bytes())
	require.True(t, ok)
	assert.Equal(t, toc.sessions, sessions)
}

func TestParseMarkerBlockRejectsBadMagic(t *testing.T) {
	block := make([]byte, blockSize)
	_, ok := parseMarkerBlock(block)
	assert.False(t, ok)
}

func TestParseMarkerBlockRejectsCorruptCheckFields(t *testing.T) {
	toc := newEmulatedTOC()
	toc.appendSession(Session{StartLBA: 5, Blocks: 5})
	var buf bytes.Buffer
	require.NoError(t, writeMarkerBlock(&buf, toc))
	corrupted := buf.Bytes()
	corrupted[16] ^= 0xFF // flip a byte in the StartLBA field

	_, ok := parseMarkerBlock(corrupted)
	assert.False(t, ok)
}

func TestScanMarkerBlocksKeepsHighestOffsetMarker(t *testing.T) {
	first := newEmulatedTOC()
	first.appendSession(Session{StartLBA: 16, Blocks: 10})
	second := newEmulatedTOC()
	second.appendSession(Session{StartLBA: 16, Blocks: 10})
	second.appendSession(Session{StartLBA: 27, Blocks: 20})

	var buf bytes.Buffer
	require.NoError(t, writeMarkerBlock(&buf, first))
	require.NoError(t, writeMarkerBlock(&buf, second))

	toc, err := scanMarkerBlocks(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, second.sessions, toc.sessions)
}

func TestEmulatedTOCNWAReservesMarkerBlock(t *testing.T) {
	toc := newEmulatedTOC()
	assert.Equal(t, uint32(0), toc.nwa())
	toc.appendSession(Session{StartLBA: 16, Blocks: 100})
	assert.Equal(t, uint32(117), toc.nwa())
}
