package header

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"

	binpkg "github.com/robert-malhotra/go-mrcz/internal/binary"
	"github.com/robert-malhotra/go-mrcz/internal/dtype"
	"github.com/robert-malhotra/go-mrcz/internal/filter"
	"github.com/robert-malhotra/go-mrcz/internal/layout"
	"github.com/robert-malhotra/go-mrcz/internal/meta"
)

// Decode parses the fixed header and extended region at the start of buf.
// It returns the header, its metadata and the offset of the payload.
func Decode(buf []byte) (*Header, *meta.Metadata, int64, error) {
	h, err := Parse(buf)
	if err != nil {
		return nil, nil, 0, err
	}
	if int64(len(buf)) < h.PayloadOffset() {
		return nil, nil, 0, fmt.Errorf("%w: extended region of %d bytes runs past end of data (%d bytes)",
			ErrCorruptHeader, h.ExtLength, len(buf)-Size)
	}
	md, err := h.ParseExtended(buf[Size:h.PayloadOffset()])
	if err != nil {
		return nil, nil, 0, err
	}
	return h, md, h.PayloadOffset(), nil
}

// Parse decodes the fixed 1024-byte header only. Blocks stays empty until
// ParseExtended is called.
func Parse(buf []byte) (*Header, error) {
	if len(buf) < Size {
		return nil, fmt.Errorf("%w: have %d bytes, need %d", ErrTruncatedHeader, len(buf), Size)
	}
	r := binpkg.NewReader(bytes.NewReader(buf[:Size]))

	if !bytes.Equal(buf[208:212], MapTag[:]) {
		return nil, fmt.Errorf("%w: map tag is %q", ErrCorruptHeader, buf[208:212])
	}
	if buf[212] == bigEndianStamp[0] && buf[213] == bigEndianStamp[1] {
		return nil, fmt.Errorf("%w: big-endian files are not supported", ErrCorruptHeader)
	}

	f, err := readFields(r)
	if err != nil {
		// The buffer is known to hold the whole header.
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}

	h := &Header{
		Level:     int(f.level),
		BlockSize: int(f.blockSize),
		PixelUnit: f.unit,
		Voltage:   f.voltage,
		C3:        f.c3,
		Gain:      f.gain,
		Min:       f.stats[0],
		Max:       f.stats[1],
		Mean:      f.stats[2],
		RMS:       f.rms,
		Origin:    [3]float32{f.origin[2], f.origin[1], f.origin[0]},
		Flags:     f.flags,
		Checksum:  f.checksum,
		Labels:    f.labels,
		ExtType:   f.extType,
		ExtLength: int(f.nsymbt),
		MetaLen:   int(f.metaLen),
	}

	for i, d := range []int32{f.n[2], f.n[1], f.n[0]} {
		if d <= 0 {
			return nil, fmt.Errorf("%w: dimension %d is %d", ErrCorruptHeader, i, d)
		}
		h.Dims[i] = int(d)
	}
	for i := range h.PixelSize {
		h.PixelSize[i] = f.cell[2-i] / float32(h.Dims[i])
	}

	if f.mode < 0 {
		return nil, fmt.Errorf("%w: negative mode %d", ErrCorruptHeader, f.mode)
	}
	h.Kind, err = dtype.KindOf(dtype.Mode(f.mode % 1000))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	h.Compressor, err = filter.CompressorOf(int(f.mode / 1000))
	if err != nil {
		return nil, err
	}
	if err := checkPayloadSize(h.Kind, h.Dims); err != nil {
		return nil, err
	}

	if f.nsymbt < 0 {
		return nil, fmt.Errorf("%w: negative extended header length %d", ErrCorruptHeader, f.nsymbt)
	}
	if f.blockCount < 0 {
		return nil, fmt.Errorf("%w: negative block count %d", ErrCorruptHeader, f.blockCount)
	}
	if f.blockCount > 0 && f.blockSize <= 0 {
		return nil, fmt.Errorf("%w: block size %d with %d blocks", ErrCorruptHeader, f.blockSize, f.blockCount)
	}
	if h.ownsExtended(int(f.blockCount)) {
		if want := int64(f.blockCount)*layout.EntrySize + int64(f.metaLen); want != int64(f.nsymbt) {
			return nil, fmt.Errorf("%w: extended region is %d bytes, block table and metadata need %d",
				ErrCorruptHeader, f.nsymbt, want)
		}
	} else {
		h.MetaLen = 0
	}
	h.blockCount = int(f.blockCount)
	return h, nil
}

// checkPayloadSize rejects dimensions whose element count or payload byte
// length does not fit in an int.
func checkPayloadSize(k dtype.Kind, dims [3]int) error {
	nz, ny, nx := uint64(dims[0]), uint64(dims[1]), uint64(dims[2])
	plane := ny * nz // both below 2^31

	hi, count := bits.Mul64(plane, nx)
	if hi != 0 || count > math.MaxInt {
		return fmt.Errorf("%w: %d x %d x %d elements overflow", ErrCorruptHeader, nz, ny, nx)
	}
	var size uint64
	if k == dtype.Uint4 {
		hi, size = bits.Mul64(plane, (nx+1)/2)
	} else {
		hi, size = bits.Mul64(count, uint64(k.BitsPerElement()/8))
	}
	if hi != 0 || size > math.MaxInt {
		return fmt.Errorf("%w: %v payload of %d x %d x %d overflows", ErrCorruptHeader, k, nz, ny, nx)
	}
	return nil
}

// ownsExtended reports whether the extended region holds a block table or
// JSON metadata rather than a header from another tool.
func (h *Header) ownsExtended(blockCount int) bool {
	return blockCount > 0 || h.ExtType == ExtTypeJSON || h.Compressor != filter.None
}

// ParseExtended decodes the block table and metadata from the extended
// region, which must be exactly ExtLength bytes.
func (h *Header) ParseExtended(ext []byte) (*meta.Metadata, error) {
	if len(ext) != h.ExtLength {
		return nil, fmt.Errorf("%w: extended region is %d bytes, header says %d", ErrCorruptHeader, len(ext), h.ExtLength)
	}
	if !h.ownsExtended(h.blockCount) {
		return meta.New(), nil
	}

	table, err := layout.DecodeTable(ext, h.blockCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
	}
	h.Blocks = table

	metaStart := h.blockCount * layout.EntrySize
	md, err := meta.Parse(ext[metaStart : metaStart+h.MetaLen])
	if err != nil {
		if errors.Is(err, meta.ErrCorruptHeader) {
			return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, err)
		}
		return nil, err
	}
	return md, nil
}

type fields struct {
	n          []int32
	mode       int32
	cell       []float32
	stats      []float32
	nsymbt     int32
	blockSize  int32
	blockCount int32
	extType    [4]byte
	level      int32
	flags      uint32
	metaLen    uint32
	checksum   uint32
	voltage    float32
	c3         float32
	gain       float32
	unit       string
	origin     []float32
	rms        float32
	labels     []string
}

func readFields(r *binpkg.Reader) (*fields, error) {
	f := &fields{}
	var err error

	if f.n, err = r.ReadInt32s(3); err != nil {
		return nil, err
	}
	if f.mode, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	r.Skip(24) // start, m
	if f.cell, err = r.ReadFloat32s(3); err != nil {
		return nil, err
	}
	r.Skip(24) // cell angles, axis map
	if f.stats, err = r.ReadFloat32s(3); err != nil {
		return nil, err
	}
	r.Skip(4) // ispg
	ints, err := r.ReadInt32s(3)
	if err != nil {
		return nil, err
	}
	f.nsymbt, f.blockSize, f.blockCount = ints[0], ints[1], ints[2]

	ext, err := r.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	copy(f.extType[:], ext)
	r.Skip(4) // nversion
	if f.level, err = r.ReadInt32(); err != nil {
		return nil, err
	}
	if f.flags, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if f.metaLen, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if f.checksum, err = r.ReadUint32(); err != nil {
		return nil, err
	}
	if f.voltage, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if f.c3, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if f.gain, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	if f.unit, err = r.ReadFixedString(UnitLength); err != nil {
		return nil, err
	}

	r.Skip(196 - r.Pos()) // reserved
	if f.origin, err = r.ReadFloat32s(3); err != nil {
		return nil, err
	}
	r.Skip(8) // map, machine stamp
	if f.rms, err = r.ReadFloat32(); err != nil {
		return nil, err
	}
	nlabl, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	if nlabl < 0 || nlabl > MaxLabels {
		return nil, fmt.Errorf("label count %d", nlabl)
	}
	for i := 0; i < int(nlabl); i++ {
		label, err := r.ReadFixedString(LabelLength)
		if err != nil {
			return nil, err
		}
		f.labels = append(f.labels, strings.TrimRight(label, " "))
	}
	return f, nil
}
