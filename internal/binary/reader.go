// Package binary provides low-level little-endian I/O for MRC header parsing.
package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrShortRead is returned when fewer bytes are available than requested.
var ErrShortRead = errors.New("short read")

// Reader reads fixed-width little-endian fields from an io.ReaderAt.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// NewReader creates a little-endian reader positioned at offset 0.
func NewReader(r io.ReaderAt) *Reader {
	return &Reader{
		r:     r,
		order: binary.LittleEndian,
	}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	got, err := r.r.ReadAt(buf, r.pos)
	if got < n {
		if err == nil || err == io.EOF {
			err = ErrShortRead
		}
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ReadInt32 reads a signed 32-bit integer.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadFloat32 reads an IEEE 754 single-precision value.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadInt32s reads n consecutive signed 32-bit integers.
func (r *Reader) ReadInt32s(n int) ([]int32, error) {
	out := make([]int32, n)
	for i := range out {
		v, err := r.ReadInt32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadFloat32s reads n consecutive single-precision values.
func (r *Reader) ReadFloat32s(n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		v, err := r.ReadFloat32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadFixedString reads an n-byte zero-padded field and returns the text
// before the first NUL.
func (r *Reader) ReadFixedString(n int) (string, error) {
	buf, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), nil
		}
	}
	return string(buf), nil
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}
