package dtype

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode converts a Go slice of kind k to little-endian payload bytes.
// The slice must already be of the native type for k; use Cast first
// when it is not.
func Encode(k Kind, data any, dims [3]int) ([]byte, error) {
	native, err := KindOfData(data)
	if err != nil {
		return nil, err
	}
	if native != k {
		return nil, fmt.Errorf("%w: %T cannot be encoded as %v without a cast", ErrUnsupportedCast, data, k)
	}
	if n := Len(data); n != Count(dims) {
		return nil, fmt.Errorf("%w: %d elements for dimensions %v", ErrPayloadSize, n, dims)
	}

	le := binary.LittleEndian
	switch d := data.(type) {
	case []int8:
		out := make([]byte, len(d))
		for i, v := range d {
			out[i] = byte(v)
		}
		return out, nil
	case []int16:
		out := make([]byte, 2*len(d))
		for i, v := range d {
			le.PutUint16(out[2*i:], uint16(v))
		}
		return out, nil
	case []uint16:
		out := make([]byte, 2*len(d))
		for i, v := range d {
			le.PutUint16(out[2*i:], v)
		}
		return out, nil
	case []float32:
		out := make([]byte, 4*len(d))
		for i, v := range d {
			le.PutUint32(out[4*i:], math.Float32bits(v))
		}
		return out, nil
	case []complex64:
		out := make([]byte, 8*len(d))
		for i, v := range d {
			le.PutUint32(out[8*i:], math.Float32bits(real(v)))
			le.PutUint32(out[8*i+4:], math.Float32bits(imag(v)))
		}
		return out, nil
	case []uint8:
		return PackUint4(d, dims[2])
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, data)
}

// Decode converts payload bytes of kind k back to a freshly allocated Go
// slice. The returned slice never aliases raw.
func Decode(k Kind, raw []byte, dims [3]int) (any, error) {
	if want := PayloadSize(k, dims); len(raw) != want {
		return nil, fmt.Errorf("%w: have %d bytes, need %d for %v %v", ErrPayloadSize, len(raw), want, k, dims)
	}
	n := Count(dims)

	le := binary.LittleEndian
	switch k {
	case Int8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(raw[i])
		}
		return out, nil
	case Int16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(le.Uint16(raw[2*i:]))
		}
		return out, nil
	case Uint16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = le.Uint16(raw[2*i:])
		}
		return out, nil
	case Float32:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(raw[4*i:]))
		}
		return out, nil
	case Complex64:
		out := make([]complex64, n)
		for i := range out {
			re := math.Float32frombits(le.Uint32(raw[8*i:]))
			im := math.Float32frombits(le.Uint32(raw[8*i+4:]))
			out[i] = complex(re, im)
		}
		return out, nil
	case Uint4:
		return UnpackUint4(raw, n, dims[2])
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, k)
}
