package binary

import (
	"encoding/binary"
	"math/bits"
)

// Lookup3Checksum returns Bob Jenkins' lookup3 hashlittle of data with a
// zero seed. MRCZ files store it over the uncompressed payload.
func Lookup3Checksum(data []byte) uint32 {
	return hashlittle(data, 0)
}

// VerifyLookup3 reports whether data hashes to expected.
func VerifyLookup3(data []byte, expected uint32) bool {
	return hashlittle(data, 0) == expected
}

func hashlittle(data []byte, seed uint32) uint32 {
	le := binary.LittleEndian
	a := 0xdeadbeef + uint32(len(data)) + seed
	b, c := a, a

	// At least one byte is always left for the final round.
	for ; len(data) > 12; data = data[12:] {
		a += le.Uint32(data)
		b += le.Uint32(data[4:])
		c += le.Uint32(data[8:])
		a, b, c = mix(a, b, c)
	}
	if len(data) == 0 {
		return c
	}

	// Zero padding adds nothing, which matches the byte-wise tail switch.
	var tail [12]byte
	copy(tail[:], data)
	a += le.Uint32(tail[0:])
	b += le.Uint32(tail[4:])
	c += le.Uint32(tail[8:])
	return final(a, b, c)
}

func mix(a, b, c uint32) (uint32, uint32, uint32) {
	a -= c
	a ^= bits.RotateLeft32(c, 4)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 6)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 8)
	b += a
	a -= c
	a ^= bits.RotateLeft32(c, 16)
	c += b
	b -= a
	b ^= bits.RotateLeft32(a, 19)
	a += c
	c -= b
	c ^= bits.RotateLeft32(b, 4)
	b += a
	return a, b, c
}

func final(a, b, c uint32) uint32 {
	c = (c ^ b) - bits.RotateLeft32(b, 14)
	a = (a ^ c) - bits.RotateLeft32(c, 11)
	b = (b ^ a) - bits.RotateLeft32(a, 25)
	c = (c ^ b) - bits.RotateLeft32(b, 16)
	a = (a ^ c) - bits.RotateLeft32(c, 4)
	b = (b ^ a) - bits.RotateLeft32(a, 14)
	c = (c ^ b) - bits.RotateLeft32(b, 24)
	return c
}
