package dtype

import (
	"fmt"
	"math"
)

// Cast converts data to the native slice type of target. A cast succeeds
// only when every element is represented exactly by the target kind.
// When data is already of kind target it is returned unchanged.
func Cast(data any, target Kind) (any, error) {
	native, err := KindOfData(data)
	if err != nil {
		return nil, err
	}
	if native == target {
		return data, nil
	}
	if _, ok := kindModes[target]; !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, target)
	}

	vals := toComplex(data)
	switch target {
	case Int8:
		out := make([]int8, len(vals))
		for i, v := range vals {
			n, ok := exactInt(v, math.MinInt8, math.MaxInt8)
			if !ok {
				return nil, castError(native, target, i, v)
			}
			out[i] = int8(n)
		}
		return out, nil
	case Int16:
		out := make([]int16, len(vals))
		for i, v := range vals {
			n, ok := exactInt(v, math.MinInt16, math.MaxInt16)
			if !ok {
				return nil, castError(native, target, i, v)
			}
			out[i] = int16(n)
		}
		return out, nil
	case Uint16:
		out := make([]uint16, len(vals))
		for i, v := range vals {
			n, ok := exactInt(v, 0, math.MaxUint16)
			if !ok {
				return nil, castError(native, target, i, v)
			}
			out[i] = uint16(n)
		}
		return out, nil
	case Uint4:
		out := make([]uint8, len(vals))
		for i, v := range vals {
			n, ok := exactInt(v, 0, 0x0F)
			if !ok {
				return nil, castError(native, target, i, v)
			}
			out[i] = uint8(n)
		}
		return out, nil
	case Float32:
		out := make([]float32, len(vals))
		for i, v := range vals {
			if imag(v) != 0 || !exactFloat32(real(v)) {
				return nil, castError(native, target, i, v)
			}
			out[i] = float32(real(v))
		}
		return out, nil
	case Complex64:
		out := make([]complex64, len(vals))
		for i, v := range vals {
			if !exactFloat32(real(v)) || !exactFloat32(imag(v)) {
				return nil, castError(native, target, i, v)
			}
			out[i] = complex64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, target)
}

func castError(from, to Kind, idx int, v complex128) error {
	if imag(v) == 0 {
		return fmt.Errorf("%w: %v -> %v: element %d (%g) is not representable", ErrUnsupportedCast, from, to, idx, real(v))
	}
	return fmt.Errorf("%w: %v -> %v: element %d (%g) is not representable", ErrUnsupportedCast, from, to, idx, v)
}

func exactInt(v complex128, lo, hi float64) (int64, bool) {
	re := real(v)
	if imag(v) != 0 || re != math.Trunc(re) || re < lo || re > hi {
		return 0, false
	}
	return int64(re), true
}

func exactFloat32(f float64) bool {
	return math.IsNaN(f) || float64(float32(f)) == f
}

func toComplex(data any) []complex128 {
	var out []complex128
	switch d := data.(type) {
	case []int8:
		out = make([]complex128, len(d))
		for i, v := range d {
			out[i] = complex(float64(v), 0)
		}
	case []int16:
		out = make([]complex128, len(d))
		for i, v := range d {
			out[i] = complex(float64(v), 0)
		}
	case []uint16:
		out = make([]complex128, len(d))
		for i, v := range d {
			out[i] = complex(float64(v), 0)
		}
	case []uint8:
		out = make([]complex128, len(d))
		for i, v := range d {
			out[i] = complex(float64(v), 0)
		}
	case []float32:
		out = make([]complex128, len(d))
		for i, v := range d {
			out[i] = complex(float64(v), 0)
		}
	case []complex64:
		out = make([]complex128, len(d))
		for i, v := range d {
			out[i] = complex128(v)
		}
	}
	return out
}
