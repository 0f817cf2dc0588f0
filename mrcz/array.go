package mrcz

import (
	"fmt"

	"github.com/robert-malhotra/go-mrcz/internal/dtype"
)

// Kind identifies the element type of an Array.
type Kind = dtype.Kind

const (
	Int8      = dtype.Int8
	Int16     = dtype.Int16
	Float32   = dtype.Float32
	Complex64 = dtype.Complex64
	Uint16    = dtype.Uint16
	// Uint4 values are held one per byte in a []uint8 and must be 0..15.
	Uint4 = dtype.Uint4
)

// ParseKind parses a kind name such as "float32" or "uint4".
func ParseKind(name string) (Kind, error) { return dtype.ParseKind(name) }

// Array is a dense 3-D volume. Data is one of []int8, []int16, []float32,
// []complex64, []uint16 or []uint8 (4-bit samples), laid out with x
// varying fastest.
type Array struct {
	// Dims is [z, y, x].
	Dims [3]int
	Data any
}

// NewArray wraps data. dims lists the sizes from the outermost to the
// innermost axis; fewer than three dims are padded with leading 1s, so a
// 2-D image is NewArray(data, ny, nx).
func NewArray(data any, dims ...int) (*Array, error) {
	if len(dims) == 0 || len(dims) > 3 {
		return nil, fmt.Errorf("%w: need 1 to 3 dimensions, got %d", ErrOutOfRange, len(dims))
	}
	a := &Array{Dims: [3]int{1, 1, 1}}
	copy(a.Dims[3-len(dims):], dims)
	for _, d := range a.Dims {
		if d <= 0 {
			return nil, fmt.Errorf("%w: dimensions %v", ErrOutOfRange, a.Dims)
		}
	}

	if _, err := dtype.KindOfData(data); err != nil {
		return nil, err
	}
	if n := dtype.Len(data); n != dtype.Count(a.Dims) {
		return nil, fmt.Errorf("%w: %d elements for dimensions %v", dtype.ErrPayloadSize, n, a.Dims)
	}
	a.Data = data
	return a, nil
}

// Kind returns the element kind of the array data.
func (a *Array) Kind() Kind {
	k, _ := dtype.KindOfData(a.Data)
	return k
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return dtype.Count(a.Dims)
}

func (a *Array) validate() error {
	if a == nil {
		return fmt.Errorf("%w: nil array", ErrUnsupportedType)
	}
	if _, err := dtype.KindOfData(a.Data); err != nil {
		return err
	}
	for _, d := range a.Dims {
		if d <= 0 {
			return fmt.Errorf("%w: dimensions %v", ErrOutOfRange, a.Dims)
		}
	}
	if n := dtype.Len(a.Data); n != a.Len() {
		return fmt.Errorf("%w: %d elements for dimensions %v", dtype.ErrPayloadSize, n, a.Dims)
	}
	return nil
}
