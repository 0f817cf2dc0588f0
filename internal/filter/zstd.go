package filter

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// ZstdFilter compresses each block into one self-contained zstd frame.
// EncodeAll and DecodeAll are safe to call from several goroutines, so one
// filter serves all blocks of a payload.
type ZstdFilter struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// minDecoderMemory is the encoder's default window. Frames written by this
// package never need more than that to decode.
const minDecoderMemory = 8 << 20

// newZstd creates a zstd filter. A positive maxBlock caps how much memory the
// decoder may allocate for one frame.
func newZstd(level, maxBlock int) (*ZstdFilter, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	var dopts []zstd.DOption
	if maxBlock > 0 {
		dopts = append(dopts, zstd.WithDecoderMaxMemory(uint64(max(maxBlock, minDecoderMemory))))
	}
	dec, err := zstd.NewReader(nil, dopts...)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &ZstdFilter{enc: enc, dec: dec}, nil
}

// ID returns Zstd.
func (f *ZstdFilter) ID() Compressor { return Zstd }

// Encode compresses src into one zstd frame.
func (f *ZstdFilter) Encode(src []byte) ([]byte, error) {
	return f.enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}

// Decode writes into dst without growing it. dst must have cap == len.
func (f *ZstdFilter) Decode(src, dst []byte) (int, error) {
	out, err := f.dec.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, fmt.Errorf("%w: zstd: %v", ErrCorruptBlock, err)
	}
	if len(out) <= len(dst) && len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return len(out), nil
}

// Close releases the encoder and decoder goroutines.
func (f *ZstdFilter) Close() {
	f.enc.Close()
	f.dec.Close()
}
