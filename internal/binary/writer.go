package binary

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer writes fixed-width little-endian fields to an io.WriterAt.
type Writer struct {
	w     io.WriterAt
	order binary.ByteOrder
	pos   int64
}

// NewWriter creates a little-endian writer positioned at offset 0.
func NewWriter(w io.WriterAt) *Writer {
	return &Writer{
		w:     w,
		order: binary.LittleEndian,
	}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{
		w:     w.w,
		order: w.order,
		pos:   offset,
	}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	return err
}

// WriteUint32 writes an unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) error {
	buf := make([]byte, 4)
	w.order.PutUint32(buf, v)
	return w.WriteBytes(buf)
}

// WriteInt32 writes a signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUint32(uint32(v))
}

// WriteFloat32 writes an IEEE 754 single-precision value.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteInt32s writes each value as a signed 32-bit integer.
func (w *Writer) WriteInt32s(vs ...int32) error {
	for _, v := range vs {
		if err := w.WriteInt32(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteFloat32s writes each value as a single-precision float.
func (w *Writer) WriteFloat32s(vs ...float32) error {
	for _, v := range vs {
		if err := w.WriteFloat32(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteFixedString writes s into an n-byte field, truncating or zero-padding.
func (w *Writer) WriteFixedString(s string, n int) error {
	buf := make([]byte, n)
	copy(buf, s)
	return w.WriteBytes(buf)
}

// WriteZeros writes n zero bytes.
func (w *Writer) WriteZeros(n int) error {
	if n <= 0 {
		return nil
	}
	return w.WriteBytes(make([]byte, n))
}

// Buffer is a growable in-memory io.WriterAt.
type Buffer struct {
	buf []byte
}

// NewBuffer returns a buffer pre-sized to n zero bytes.
func NewBuffer(n int) *Buffer {
	return &Buffer{buf: make([]byte, n)}
}

// WriteAt implements io.WriterAt.
func (b *Buffer) WriteAt(p []byte, off int64) (n int, err error) {
	if int(off)+len(p) > len(b.buf) {
		newBuf := make([]byte, int(off)+len(p))
		copy(newBuf, b.buf)
		b.buf = newBuf
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

// Bytes returns the buffer contents.
func (b *Buffer) Bytes() []byte {
	return b.buf
}
