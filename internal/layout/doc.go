// Package layout splits a payload into fixed-size blocks, runs every block
// through a filter pipeline and keeps the block table that locates each
// stored block in the file.
//
// # Block Table
//
// The table is a sequence of (compressed, uncompressed) uint32 pairs in
// block order. Stored blocks are concatenated in the same order, so the
// offset of block i is the sum of the compressed lengths before it and any
// single block can be located without decoding the others.
//
// A block whose compressed length equals its uncompressed length is a raw
// copy of the input.
//
// # Parallelism
//
// [Compress] and [Decompress] run one task per block on a bounded
// errgroup. Each task writes only to its own slot (the i-th output slice on
// compression, the i-th disjoint window of the output buffer on
// decompression), so results are assembled by index and never need
// reordering.
//
// # Key Types
//
//   - [Table]: the block table
//   - [BlockInfo]: one table entry
//   - [Options]: block size, compressor, level, threads, shuffle width
package layout
