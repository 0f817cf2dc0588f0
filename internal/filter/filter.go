package filter

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidLevel          = errors.New("invalid compression level")
	ErrUnsupportedCompressor = errors.New("unsupported compressor")
	ErrCorruptBlock          = errors.New("corrupt compressed block")
)

// Compressor identifies a block compressor.
type Compressor uint8

const (
	None Compressor = 0
	LZ4  Compressor = 2
	Zstd Compressor = 6
)

var compressorNames = map[Compressor]string{
	None: "none",
	LZ4:  "lz4",
	Zstd: "zstd",
}

func (c Compressor) String() string {
	if name, ok := compressorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("compressor(%d)", uint8(c))
}

// ParseCompressor maps a compressor name to its id. The empty string means
// none. Names are matched exactly.
func ParseCompressor(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnsupportedCompressor, name)
}

// CompressorOf validates a numeric compressor id read from a file.
func CompressorOf(id int) (Compressor, error) {
	c := Compressor(id)
	if _, ok := compressorNames[c]; !ok || id < 0 || id > 255 {
		return None, fmt.Errorf("%w: id %d", ErrUnsupportedCompressor, id)
	}
	return c, nil
}

// LevelRange returns the accepted level bounds for c.
func (c Compressor) LevelRange() (lo, hi int) {
	switch c {
	case LZ4:
		return 0, 9
	case Zstd:
		return 1, 22
	}
	return 0, 0
}

// ValidateLevel checks level against the bounds of c. Any level is accepted
// for none.
func (c Compressor) ValidateLevel(level int) error {
	if c == None {
		return nil
	}
	lo, hi := c.LevelRange()
	if level < lo || level > hi {
		return fmt.Errorf("%w: %s level %d outside %d..%d", ErrInvalidLevel, c, level, lo, hi)
	}
	return nil
}

// Filter is the interface implemented by block compressors.
type Filter interface {
	// ID returns the compressor id.
	ID() Compressor

	// Encode compresses src into a newly allocated slice. The result may be
	// longer than src.
	Encode(src []byte) ([]byte, error)

	// Decode decompresses src into dst and returns the decoded length.
	// A length different from len(dst) signals a size mismatch.
	Decode(src, dst []byte) (int, error)
}

// New creates the filter for compressor c at the given level.
func New(c Compressor, level int) (Filter, error) {
	return newFilter(c, level, 0)
}

// newFilter is New with a bound on decoded block size; zero means no bound.
func newFilter(c Compressor, level, maxBlock int) (Filter, error) {
	if _, ok := compressorNames[c]; !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnsupportedCompressor, uint8(c))
	}
	if err := c.ValidateLevel(level); err != nil {
		return nil, err
	}
	switch c {
	case LZ4:
		return newLZ4(level), nil
	case Zstd:
		return newZstd(level, maxBlock)
	}
	return noneFilter{}, nil
}

type noneFilter struct{}

func (noneFilter) ID() Compressor { return None }

func (noneFilter) Encode(src []byte) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	return out, nil
}

func (noneFilter) Decode(src, dst []byte) (int, error) {
	copy(dst, src)
	return len(src), nil
}

