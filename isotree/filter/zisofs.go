package filter

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// zisofs is ISO 9660's transparent per-file compression format: a 16-byte
// header (10-byte magic, 4-byte little-endian uncompressed size, header
// size in 4-byte units, block size as a power of two) followed by a
// block-pointer table and independently DEFLATE-compressed fixed-size
// blocks, so any block can be decompressed without its neighbors. The
// header-size byte counts the pointer table as well. Blocks are compressed
// with klauspost/compress/flate; sgzip is not used by this codec.
var zisofsMagic = [10]byte{0x37, 0xE4, 0x30, 0x81, 0x0A, 0x11, 0xFF, 0x80, 0x01, 0x00}

const zisofsBlockSizeLog2 = 15 // 32 KiB blocks, libisofs's default

// zisofsEncode reads inner fully, compressing it block-by-block into the
// zisofs on-disk format.
func zisofsEncode(inner io.ReadCloser) (io.ReadCloser, error) {
	defer inner.Close()
	data, err := io.ReadAll(inner)
	if err != nil {
		return nil, err
	}
	blockSize := 1 << zisofsBlockSizeLog2
	numBlocks := (len(data) + blockSize - 1) / blockSize
	if len(data) == 0 {
		numBlocks = 0
	}

	headerSize := 16 + 4*(numBlocks+1)
	headerSize = (headerSize + 3) &^ 3 // round up to 4-byte units

	var blocks bytes.Buffer
	pointers := make([]uint32, numBlocks+1)
	for i := 0; i < numBlocks; i++ {
		start := i * blockSize
		end := start + blockSize
		if end > len(data) {
			end = len(data)
		}
		pointers[i] = uint32(headerSize + blocks.Len())
		w, err := flate.NewWriter(&blocks, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data[start:end]); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	pointers[numBlocks] = uint32(headerSize + blocks.Len())

	var out bytes.Buffer
	out.Write(zisofsMagic[:])
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(data)))
	out.Write(sizeBuf[:])
	out.WriteByte(byte(headerSize / 4))
	out.WriteByte(zisofsBlockSizeLog2)
	for _, p := range pointers {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], p)
		out.Write(b[:])
	}
	for out.Len() < headerSize {
		out.WriteByte(0)
	}
	out.Write(blocks.Bytes())

	return io.NopCloser(bytes.NewReader(out.Bytes())), nil
}

// zisofsDecode reads a zisofs-encoded stream fully and yields the
// decompressed content in order.
func zisofsDecode(inner io.ReadCloser) (io.ReadCloser, error) {
	defer inner.Close()
	data, err := io.ReadAll(inner)
	if err != nil {
		return nil, err
	}
	if len(data) < 16 || !bytes.Equal(data[:10], zisofsMagic[:]) {
		return nil, fmt.Errorf("isotree/filter: not a zisofs stream")
	}
	uncompressedSize := binary.LittleEndian.Uint32(data[10:14])
	headerSize := int(data[14]) * 4
	blockSizeLog2 := data[15]
	blockSize := 1 << blockSizeLog2

	if headerSize < 16 || headerSize > len(data) {
		return nil, fmt.Errorf("isotree/filter: corrupt zisofs header")
	}
	numPointers := (headerSize - 16) / 4
	if numPointers < 1 {
		return nil, fmt.Errorf("isotree/filter: corrupt zisofs pointer table")
	}
	pointers := make([]uint32, numPointers)
	for i := range pointers {
		off := 16 + i*4
		pointers[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}

	var out bytes.Buffer
	out.Grow(int(uncompressedSize))
	for i := 0; i+1 < len(pointers); i++ {
		start, end := pointers[i], pointers[i+1]
		if int(end) > len(data) || start > end {
			return nil, fmt.Errorf("isotree/filter: corrupt zisofs block pointer")
		}
		if start == end {
			out.Write(make([]byte, blockSize))
			continue
		}
		r := flate.NewReader(bytes.NewReader(data[start:end]))
		if _, err := io.Copy(&out, r); err != nil {
			r.Close()
			return nil, err
		}
		r.Close()
	}
	result := out.Bytes()
	if uint32(len(result)) > uncompressedSize {
		result = result[:uncompressedSize]
	}
	return io.NopCloser(bytes.NewReader(result)), nil
}
