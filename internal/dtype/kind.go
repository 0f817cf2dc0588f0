package dtype

import (
	"errors"
	"fmt"
	"strings"
)

// Errors
var (
	ErrUnsupportedType = errors.New("unsupported element type")
	ErrOutOfRange      = errors.New("value out of range")
	ErrUnsupportedCast = errors.New("unsupported cast")
	ErrUnknownMode     = errors.New("unknown mode code")
	ErrPayloadSize     = errors.New("payload size does not match dimensions")
)

// Kind identifies an in-memory element representation.
type Kind uint8

const (
	Invalid Kind = iota
	Int8
	Int16
	Float32
	Complex64
	Uint16
	Uint4
)

// Mode is the element code stored in the MRC header.
type Mode int32

const (
	ModeInt8      Mode = 0
	ModeInt16     Mode = 1
	ModeFloat32   Mode = 2
	ModeComplex64 Mode = 4
	ModeUint16    Mode = 6
	ModeUint4     Mode = 101
)

var kindModes = map[Kind]Mode{
	Int8:      ModeInt8,
	Int16:     ModeInt16,
	Float32:   ModeFloat32,
	Complex64: ModeComplex64,
	Uint16:    ModeUint16,
	Uint4:     ModeUint4,
}

var modeKinds = map[Mode]Kind{
	ModeInt8:      Int8,
	ModeInt16:     Int16,
	ModeFloat32:   Float32,
	ModeComplex64: Complex64,
	ModeUint16:    Uint16,
	ModeUint4:     Uint4,
}

var kindNames = map[Kind]string{
	Int8:      "int8",
	Int16:     "int16",
	Float32:   "float32",
	Complex64: "complex64",
	Uint16:    "uint16",
	Uint4:     "uint4",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses a kind name as produced by Kind.String.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// ModeOf returns the header mode code for k.
func ModeOf(k Kind) (Mode, error) {
	m, ok := kindModes[k]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnsupportedType, k)
	}
	return m, nil
}

// KindOf returns the element kind for a header mode code.
func KindOf(m Mode) (Kind, error) {
	k, ok := modeKinds[m]
	if !ok {
		return Invalid, fmt.Errorf("%w: %d", ErrUnknownMode, m)
	}
	return k, nil
}

// BitsPerElement returns the storage width of one element.
func (k Kind) BitsPerElement() int {
	switch k {
	case Uint4:
		return 4
	case Int8:
		return 8
	case Int16, Uint16:
		return 16
	case Float32:
		return 32
	case Complex64:
		return 64
	default:
		return 0
	}
}

// BytesPerElement returns the storage width in bytes; 0.5 for Uint4.
func (k Kind) BytesPerElement() float64 {
	return float64(k.BitsPerElement()) / 8
}

// ElemSize returns the width of the unit that byte shuffling groups on.
// Packed kinds report 1 because their bytes are never split.
func (k Kind) ElemSize() int {
	switch k {
	case Uint4, Int8:
		return 1
	case Complex64:
		// Real and imaginary parts shuffle as separate float32 lanes.
		return 4
	default:
		return k.BitsPerElement() / 8
	}
}

// Count returns the number of elements described by dims.
func Count(dims [3]int) int {
	return dims[0] * dims[1] * dims[2]
}

// PayloadSize returns the number of payload bytes for dims ([z, y, x]).
func PayloadSize(k Kind, dims [3]int) int {
	if k == Uint4 {
		return dims[0] * dims[1] * packedRowBytes(dims[2])
	}
	return Count(dims) * k.BitsPerElement() / 8
}

// KindOfData returns the native kind of a Go slice.
func KindOfData(data any) (Kind, error) {
	switch data.(type) {
	case []int8:
		return Int8, nil
	case []int16:
		return Int16, nil
	case []float32:
		return Float32, nil
	case []complex64:
		return Complex64, nil
	case []uint16:
		return Uint16, nil
	case []uint8:
		return Uint4, nil
	default:
		return Invalid, fmt.Errorf("%w: %T", ErrUnsupportedType, data)
	}
}

// Len returns the number of elements in a supported Go slice, or -1.
func Len(data any) int {
	switch d := data.(type) {
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []float32:
		return len(d)
	case []complex64:
		return len(d)
	case []uint16:
		return len(d)
	case []uint8:
		return len(d)
	default:
		return -1
	}
}
