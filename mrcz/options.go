package mrcz

import (
	"context"

	"github.com/robert-malhotra/go-mrcz/internal/layout"
	"github.com/robert-malhotra/go-mrcz/internal/meta"
)

// Defaults applied by WriteFile.
const (
	DefaultPixelSize = 0.1
	DefaultPixelUnit = "Å"
	DefaultGain      = 1.0
	DefaultLevel     = 1
	DefaultBlockSize = layout.DefaultBlockSize
)

// WriteOption configures WriteFile.
type WriteOption func(*writeOptions)

type writeOptions struct {
	ctx        context.Context
	kind       Kind
	pixelSize  [3]float32
	pixelUnit  string
	voltage    float32
	c3         float32
	gain       float32
	metaMap    map[string]any
	metadata   *Metadata
	compressor string
	level      int
	threads    int
	blockSize  int
	shuffle    bool
	checksum   bool
	labels     []string
}

func defaultWriteOptions() *writeOptions {
	return &writeOptions{
		ctx:       context.Background(),
		pixelSize: [3]float32{DefaultPixelSize, DefaultPixelSize, DefaultPixelSize},
		pixelUnit: DefaultPixelUnit,
		gain:      DefaultGain,
		level:     DefaultLevel,
		blockSize: DefaultBlockSize,
		shuffle:   true,
		checksum:  true,
	}
}

// WithKind stores the array as kind k, casting the data when it is of a
// different type. The cast must be lossless.
func WithKind(k Kind) WriteOption {
	return func(o *writeOptions) {
		o.kind = k
	}
}

// WithPixelSize sets the pixel spacing along z, y and x.
func WithPixelSize(z, y, x float32) WriteOption {
	return func(o *writeOptions) {
		o.pixelSize = [3]float32{z, y, x}
	}
}

// WithPixelUnit sets the unit label of the pixel spacing (at most 16 bytes
// of UTF-8 are kept).
func WithPixelUnit(unit string) WriteOption {
	return func(o *writeOptions) {
		o.pixelUnit = unit
	}
}

// WithVoltage sets the acceleration voltage in kV.
func WithVoltage(kV float32) WriteOption {
	return func(o *writeOptions) {
		o.voltage = kV
	}
}

// WithC3 sets the spherical aberration coefficient in mm.
func WithC3(mm float32) WriteOption {
	return func(o *writeOptions) {
		o.c3 = mm
	}
}

// WithGain sets the detector gain.
func WithGain(gain float32) WriteOption {
	return func(o *writeOptions) {
		o.gain = gain
	}
}

// WithMeta attaches free-form metadata. Values must be integers, floats or
// strings.
func WithMeta(m map[string]any) WriteOption {
	return func(o *writeOptions) {
		o.metaMap = m
	}
}

// WithMetadata attaches ordered metadata. Entries from WithMeta are added
// after it.
func WithMetadata(md *Metadata) WriteOption {
	return func(o *writeOptions) {
		o.metadata = md
	}
}

// WithCompressor selects "none", "zstd" or "lz4".
func WithCompressor(name string) WriteOption {
	return func(o *writeOptions) {
		o.compressor = name
	}
}

// WithLevel sets the compression level: 1..22 for zstd, 0..9 for lz4.
func WithLevel(level int) WriteOption {
	return func(o *writeOptions) {
		o.level = level
	}
}

// WithThreads bounds the number of blocks compressed at once.
// Zero or less uses every available CPU.
func WithThreads(n int) WriteOption {
	return func(o *writeOptions) {
		o.threads = n
	}
}

// WithBlockSize sets the uncompressed size of each block in bytes.
func WithBlockSize(size int) WriteOption {
	return func(o *writeOptions) {
		o.blockSize = size
	}
}

// WithShuffle toggles byte shuffling before compression. On by default.
func WithShuffle(on bool) WriteOption {
	return func(o *writeOptions) {
		o.shuffle = on
	}
}

// WithChecksum toggles the payload checksum. On by default.
func WithChecksum(on bool) WriteOption {
	return func(o *writeOptions) {
		o.checksum = on
	}
}

// WithLabel appends a text label to the header. MRC files hold at most ten
// labels of 80 bytes.
func WithLabel(label string) WriteOption {
	return func(o *writeOptions) {
		o.labels = append(o.labels, label)
	}
}

// WithContext lets the caller cancel block compression.
func WithContext(ctx context.Context) WriteOption {
	return func(o *writeOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// ReadOption configures ReadFile.
type ReadOption func(*readOptions)

type readOptions struct {
	ctx          context.Context
	expectedUnit string
	threads      int
}

func defaultReadOptions() *readOptions {
	return &readOptions{ctx: context.Background()}
}

// WithExpectedUnit makes ReadFile fail with ErrPixelUnitMismatch when the
// stored pixel unit differs from unit.
func WithExpectedUnit(unit string) ReadOption {
	return func(o *readOptions) {
		o.expectedUnit = unit
	}
}

// WithReadThreads bounds the number of blocks decompressed at once.
func WithReadThreads(n int) ReadOption {
	return func(o *readOptions) {
		o.threads = n
	}
}

// WithReadContext lets the caller cancel block decompression.
func WithReadContext(ctx context.Context) ReadOption {
	return func(o *readOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Metadata is the ordered key/value mapping stored as JSON in the file.
type Metadata = meta.Metadata

// Value is one metadata entry: an integer, a float or a string.
type Value = meta.Value

// NewMetadata returns empty metadata.
func NewMetadata() *Metadata { return meta.New() }

// MetadataFromMap converts a Go map, sorting its keys.
func MetadataFromMap(m map[string]any) (*Metadata, error) { return meta.FromMap(m) }

// IntValue returns an integer metadata value.
func IntValue(v int64) Value { return meta.Int(v) }

// FloatValue returns a float metadata value. It stays a float on read-back
// even when it has no fractional part.
func FloatValue(v float64) Value { return meta.Float(v) }

// StringValue returns a string metadata value. It must be valid UTF-8.
func StringValue(v string) Value { return meta.String(v) }
