// Package filter implements the per-block codecs used in the MRCZ payload.
//
// A payload is cut into fixed-size blocks and each block passes through a
// [Pipeline] on its own: an optional byte [Shuffle] followed by one
// compressor. Decoding runs the same stages in reverse order.
//
// # Compressors
//
// Compressor ids follow the blosc numbering that MRCZ files carry in the
// header mode field:
//
//   - none (0): blocks are stored as-is.
//   - lz4 (2): LZ4 block format via github.com/pierrec/lz4/v4. Level 0 uses
//     the fast compressor; levels 1 to 9 select the high-compression
//     search depth.
//   - zstd (6): Zstandard frames via github.com/klauspost/compress/zstd,
//     levels 1 to 22 mapped onto the encoder's speed presets.
//
// # Raw blocks
//
// When a compressor cannot shrink a block the pipeline keeps the original
// bytes instead. Such a block is recognised on decode because its stored
// length equals its uncompressed length, and it is copied through without
// touching the compressor or the shuffle stage.
//
// # Key Types
//
//   - [Filter]: interface implemented by every compressor
//   - [Compressor]: compressor id as written in the header
//   - [Pipeline]: shuffle plus compressor for one block
//   - [Shuffle]: byte shuffle/unshuffle
package filter
