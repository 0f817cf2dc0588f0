package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Errors
var (
	ErrBlockLengthMismatch = errors.New("block length mismatch")
	ErrInvalidBlockSize    = errors.New("invalid block size")
	ErrFileTooShort        = errors.New("file too short for block table")
)

// EntrySize is the encoded size of one BlockInfo.
const EntrySize = 8

// BlockInfo describes one stored block.
type BlockInfo struct {
	Compressed   uint32
	Uncompressed uint32
}

// Raw reports whether the block is stored without compression.
func (b BlockInfo) Raw() bool {
	return b.Compressed == b.Uncompressed
}

// Table is the ordered list of blocks of a payload.
type Table []BlockInfo

// StoredSize returns the total number of stored (compressed) bytes.
func (t Table) StoredSize() int64 {
	var n int64
	for _, b := range t {
		n += int64(b.Compressed)
	}
	return n
}

// UncompressedSize returns the payload length described by t.
func (t Table) UncompressedSize() int64 {
	var n int64
	for _, b := range t {
		n += int64(b.Uncompressed)
	}
	return n
}

// Offset returns the position of block i within the stored region.
func (t Table) Offset(i int) int64 {
	var off int64
	for _, b := range t[:i] {
		off += int64(b.Compressed)
	}
	return off
}

// Encode writes the table as little-endian uint32 pairs.
func (t Table) Encode() []byte {
	out := make([]byte, len(t)*EntrySize)
	for i, b := range t {
		binary.LittleEndian.PutUint32(out[i*EntrySize:], b.Compressed)
		binary.LittleEndian.PutUint32(out[i*EntrySize+4:], b.Uncompressed)
	}
	return out
}

// DecodeTable parses count entries from buf.
func DecodeTable(buf []byte, count int) (Table, error) {
	if count < 0 {
		return nil, fmt.Errorf("negative block count %d", count)
	}
	if len(buf) < count*EntrySize {
		return nil, fmt.Errorf("%w: table needs %d bytes, have %d", ErrFileTooShort, count*EntrySize, len(buf))
	}
	t := make(Table, count)
	for i := range t {
		t[i].Compressed = binary.LittleEndian.Uint32(buf[i*EntrySize:])
		t[i].Uncompressed = binary.LittleEndian.Uint32(buf[i*EntrySize+4:])
	}
	return t, nil
}

// Validate checks that t describes a payload of payloadLen bytes cut into
// blocks of blockSize (the last block may be shorter).
func (t Table) Validate(payloadLen int64, blockSize int) error {
	if got := t.UncompressedSize(); got != payloadLen {
		return fmt.Errorf("%w: table covers %d bytes, payload is %d", ErrBlockLengthMismatch, got, payloadLen)
	}
	for i, b := range t {
		if int64(b.Uncompressed) > int64(blockSize) {
			return fmt.Errorf("%w: block %d holds %d bytes, block size is %d", ErrBlockLengthMismatch, i, b.Uncompressed, blockSize)
		}
		if i < len(t)-1 && int(b.Uncompressed) != blockSize {
			return fmt.Errorf("%w: inner block %d holds %d bytes, block size is %d", ErrBlockLengthMismatch, i, b.Uncompressed, blockSize)
		}
	}
	return nil
}

// Split cuts the concatenated stored blocks in region by the table.
// The returned slices alias region.
func Split(region []byte, t Table) ([][]byte, error) {
	need := t.StoredSize()
	if int64(len(region)) < need {
		return nil, fmt.Errorf("%w: blocks need %d bytes, have %d", ErrFileTooShort, need, len(region))
	}
	blocks := make([][]byte, len(t))
	var off int64
	for i, b := range t {
		end := off + int64(b.Compressed)
		blocks[i] = region[off:end:end]
		off = end
	}
	return blocks, nil
}

// CheckBlockSize validates a block size in bytes.
func CheckBlockSize(size int) error {
	if size <= 0 || size > math.MaxInt32 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, size)
	}
	return nil
}

// BlockCount returns the number of blocks needed for n bytes.
func BlockCount(n, blockSize int) int {
	if n == 0 {
		return 0
	}
	return (n + blockSize - 1) / blockSize
}
