package dtype

import "fmt"

func packedRowBytes(rowLen int) int {
	return (rowLen + 1) / 2
}

// PackUint4 packs 4-bit samples two per byte, first sample in the low nibble.
// Each row of rowLen samples starts on a fresh byte.
func PackUint4(vals []uint8, rowLen int) ([]byte, error) {
	if rowLen <= 0 || len(vals)%rowLen != 0 {
		return nil, fmt.Errorf("%w: %d samples do not divide into rows of %d", ErrPayloadSize, len(vals), rowLen)
	}
	rows := len(vals) / rowLen
	rowBytes := packedRowBytes(rowLen)
	out := make([]byte, rows*rowBytes)

	for r := 0; r < rows; r++ {
		row := vals[r*rowLen : (r+1)*rowLen]
		dst := out[r*rowBytes : (r+1)*rowBytes]
		for i, v := range row {
			if v > 0x0F {
				return nil, fmt.Errorf("%w: uint4 sample %d at index %d", ErrOutOfRange, v, r*rowLen+i)
			}
			if i%2 == 0 {
				dst[i/2] = v
			} else {
				dst[i/2] |= v << 4
			}
		}
	}
	return out, nil
}

// UnpackUint4 expands packed rows back to one sample per byte.
func UnpackUint4(raw []byte, count, rowLen int) ([]uint8, error) {
	if rowLen <= 0 || count%rowLen != 0 {
		return nil, fmt.Errorf("%w: %d samples do not divide into rows of %d", ErrPayloadSize, count, rowLen)
	}
	rows := count / rowLen
	rowBytes := packedRowBytes(rowLen)
	if len(raw) != rows*rowBytes {
		return nil, fmt.Errorf("%w: have %d packed bytes, need %d", ErrPayloadSize, len(raw), rows*rowBytes)
	}

	out := make([]uint8, count)
	for r := 0; r < rows; r++ {
		src := raw[r*rowBytes : (r+1)*rowBytes]
		dst := out[r*rowLen : (r+1)*rowLen]
		for i := range dst {
			b := src[i/2]
			if i%2 == 0 {
				dst[i] = b & 0x0F
			} else {
				dst[i] = b >> 4
			}
		}
	}
	return out, nil
}
