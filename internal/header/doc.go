// Package header reads and writes the fixed 1024-byte MRC2014 header and
// the extended region that follows it in an MRCZ file.
//
// # Fixed Header
//
// All fields are little-endian. Offsets in bytes:
//
//	  0  nx, ny, nz            3 x int32 (x is the innermost axis)
//	 12  mode                  int32, element mode + 1000 * compressor id
//	 16  nxstart..nzstart      3 x int32
//	 28  mx, my, mz            3 x int32
//	 40  cella x, y, z         3 x float32, pixel size * dimension
//	 52  cellb                 3 x float32, 90 degrees
//	 64  mapc, mapr, maps      3 x int32, 1 2 3
//	 76  dmin, dmax, dmean     3 x float32
//	 88  ispg                  int32
//	 92  nsymbt                int32, extended region length
//	 96  block size            int32
//	100  block count           int32
//	104  exttyp                4 bytes, "JSON" or zero
//	108  nversion              int32, 20140
//	112  compression level     int32
//	116  flags                 uint32, bit 0 shuffle, bit 1 checksum
//	120  metadata length       uint32
//	124  payload checksum      uint32, lookup3 of the uncompressed payload
//	128  voltage, C3, gain     3 x float32
//	140  pixel unit            16 bytes, UTF-8, zero padded
//	156  reserved              40 bytes
//	196  origin                3 x float32
//	208  map                   "MAP "
//	212  machine stamp         0x44 0x44 0x00 0x00
//	216  rms                   float32
//	220  nlabl                 int32
//	224  labels                10 x 80 bytes
//
// # Extended Region
//
// nsymbt bytes directly after the fixed header: the block table
// (block count x 8 bytes) followed by the metadata JSON. A file written by
// another MRC tool may carry a foreign extended header instead; it is
// skipped when there is neither a block table nor JSON metadata.
package header
