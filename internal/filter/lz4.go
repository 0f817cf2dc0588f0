package filter

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

// LZ4Filter compresses blocks in the raw LZ4 block format (no frame header).
type LZ4Filter struct {
	level int
}

func newLZ4(level int) *LZ4Filter {
	return &LZ4Filter{level: level}
}

// ID returns LZ4.
func (f *LZ4Filter) ID() Compressor { return LZ4 }

// Encode returns the compressed block. When LZ4 cannot shrink the input the
// input is returned unchanged (as a copy).
func (f *LZ4Filter) Encode(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))

	var n int
	var err error
	if f.level == 0 {
		n, err = lz4.CompressBlock(src, dst, nil)
	} else {
		n, err = lz4.CompressBlockHC(src, dst, lz4Levels[f.level], nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out, nil
	}
	return dst[:n], nil
}

// Decode expands a raw LZ4 block into dst.
func (f *LZ4Filter) Decode(src, dst []byte) (int, error) {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: lz4: %v", ErrCorruptBlock, err)
	}
	return n, nil
}
