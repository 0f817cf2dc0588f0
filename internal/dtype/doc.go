// Package dtype maps MRC mode codes to Go element types.
//
// The MRC format identifies the on-disk element encoding with a small integer
// "mode" stored in the header. This package owns that table and every
// conversion between Go slices and the little-endian payload bytes:
//
//	Kind       | Go slice      | Mode | Bits
//	-----------|---------------|------|-----
//	Int8       | []int8        | 0    | 8
//	Int16      | []int16       | 1    | 16
//	Float32    | []float32     | 2    | 32
//	Complex64  | []complex64   | 4    | 64
//	Uint16     | []uint16      | 6    | 16
//	Uint4      | []uint8       | 101  | 4
//
// # Packed 4-bit samples
//
// Uint4 stores two samples per byte, the first sample of each pair in the low
// nibble. Rows along the fastest axis are packed independently, so a row with
// an odd length ends in a half-used byte whose high nibble is zero. Buffer
// sizes must therefore come from [PayloadSize] rather than from a per-element
// byte count; [PackUint4] and [UnpackUint4] are the only functions that deal
// with nibble order.
//
// # Casting
//
// [Cast] converts between element kinds only when every value survives the
// conversion exactly. Anything else fails with [ErrUnsupportedCast].
package dtype
