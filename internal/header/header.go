package header

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/robert-malhotra/go-mrcz/internal/dtype"
	"github.com/robert-malhotra/go-mrcz/internal/filter"
	"github.com/robert-malhotra/go-mrcz/internal/layout"
)

// Size is the length of the fixed header.
const Size = 1024

const (
	// NVersion is the MRC format revision written to every file.
	NVersion = 20140

	MaxLabels   = 10
	LabelLength = 80
	UnitLength  = 16
)

// Flag bits stored at offset 116.
const (
	FlagShuffle  uint32 = 1 << 0
	FlagChecksum uint32 = 1 << 1
)

var (
	MapTag       = [4]byte{'M', 'A', 'P', ' '}
	MachineStamp = [4]byte{0x44, 0x44, 0x00, 0x00}
	ExtTypeJSON  = [4]byte{'J', 'S', 'O', 'N'}

	bigEndianStamp = [2]byte{0x11, 0x11}
)

// Errors
var (
	ErrTruncatedHeader = errors.New("truncated header")
	ErrCorruptHeader   = errors.New("corrupt header")
)

// Header is the decoded fixed header plus the block table from the
// extended region.
type Header struct {
	// Dims is [z, y, x]; x is the innermost axis.
	Dims [3]int
	Kind dtype.Kind

	Compressor filter.Compressor
	Level      int
	BlockSize  int
	Blocks     layout.Table

	// PixelSize is [z, y, x], in PixelUnit.
	PixelSize [3]float32
	PixelUnit string
	Voltage   float32
	C3        float32
	Gain      float32

	Min, Max, Mean, RMS float32
	Origin              [3]float32

	Flags    uint32
	Checksum uint32
	Labels   []string

	// ExtType and ExtLength describe the extended region as found on disk.
	ExtType   [4]byte
	ExtLength int
	MetaLen   int

	blockCount int
}

// Shuffled reports whether blocks were byte-shuffled before compression.
func (h *Header) Shuffled() bool { return h.Flags&FlagShuffle != 0 }

// HasChecksum reports whether Checksum covers the payload.
func (h *Header) HasChecksum() bool { return h.Flags&FlagChecksum != 0 }

// Compressed reports whether the payload is stored as a block sequence.
func (h *Header) Compressed() bool { return h.Compressor != filter.None || len(h.Blocks) > 0 }

// PayloadSize returns the uncompressed payload length.
func (h *Header) PayloadSize() int {
	return dtype.PayloadSize(h.Kind, h.Dims)
}

// StoredSize returns the number of payload bytes on disk.
func (h *Header) StoredSize() int64 {
	if len(h.Blocks) > 0 {
		return h.Blocks.StoredSize()
	}
	return int64(h.PayloadSize())
}

// PayloadOffset returns the file offset of the first payload byte.
func (h *Header) PayloadOffset() int64 {
	return Size + int64(h.ExtLength)
}

// Mode returns the combined mode field.
func (h *Header) Mode() (int32, error) {
	m, err := dtype.ModeOf(h.Kind)
	if err != nil {
		return 0, err
	}
	return int32(m) + 1000*int32(h.Compressor), nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (h *Header) validate() error {
	for i, d := range h.Dims {
		if d <= 0 || d > math.MaxInt32 {
			return fmt.Errorf("%w: dimension %d is %d", dtype.ErrOutOfRange, i, d)
		}
	}
	if _, err := dtype.ModeOf(h.Kind); err != nil {
		return err
	}
	if len(h.Labels) > MaxLabels {
		return fmt.Errorf("%w: %d labels, at most %d", dtype.ErrOutOfRange, len(h.Labels), MaxLabels)
	}
	if h.BlockSize < 0 || h.BlockSize > math.MaxInt32 {
		return fmt.Errorf("%w: %d", layout.ErrInvalidBlockSize, h.BlockSize)
	}
	return nil
}
