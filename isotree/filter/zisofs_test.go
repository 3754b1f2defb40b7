package filter

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZisofsEncodeDecodeRoundTrip(t *testing.T) {
	original := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 2000)

	encoded, err := zisofsEncode(io.NopCloser(strings.NewReader(original)))
	require.NoError(t, err)
	encodedBytes, err := io.ReadAll(encoded)
	require.NoError(t, err)
	require.NoError(t, encoded.Close())

	assert.True(t, bytes.HasPrefix(encodedBytes, zisofsMagic[:]))
	assert.Less(t, len(encodedBytes), len(original))

	decoded, err := zisofsDecode(io.NopCloser(bytes.NewReader(encodedBytes)))
	require.NoError(t, err)
	decodedBytes, err := io.ReadAll(decoded)
	require.NoError(t, err)
	require.NoError(t, decoded.Close())

	assert.Equal(t, original, string(decodedBytes))
}

func TestZisofsEncodeEmptyInput(t *testing.T) {
	encoded, err := zisofsEncode(io.NopCloser(strings.NewReader("")))
	require.NoError(t, err)
	encodedBytes, err := io.ReadAll(encoded)
	require.NoError(t, err)

	decoded, err := zisofsDecode(io.NopCloser(bytes.NewReader(encodedBytes)))
	require.NoError(t, err)
	decodedBytes, err := io.ReadAll(decoded)
	require.NoError(t, err)
	assert.Empty(t, decodedBytes)
}

func TestZisofsDecodeRejectsBadMagic(t *testing.T) {
	_, err := zisofsDecode(io.NopCloser(bytes.NewReader(make([]byte, 32))))
	assert.Error(t, err)
}

func TestZisofsDecodeRejectsShortInput(t *testing.T) {
	_, err := zisofsDecode(io.NopCloser(bytes.NewReader([]byte{1, 2, 3})))
	assert.Error(t, err)
}

func TestZisofsEncodeMultiBlockBoundary(t *testing.T) {
	blockSize := 1 << zisofsBlockSizeLog2
	original := bytes.Repeat([]byte{0x42}, blockSize*3+17)

	encoded, err := zisofsEncode(io.NopCloser(bytes.NewReader(original)))
	require.NoError(t, err)
	encodedBytes, err := io.ReadAll(encoded)
	require.NoError(t, err)

	decoded, err := zisofsDecode(io.NopCloser(bytes.NewReader(encodedBytes)))
	require.NoError(t, err)
	decodedBytes, err := io.ReadAll(decoded)
	require.NoError(t, err)
	assert.Equal(t, original, decodedBytes)
}
