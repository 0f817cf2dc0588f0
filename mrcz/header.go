package mrcz

import (
	"github.com/robert-malhotra/go-mrcz/internal/header"
)

// Header describes a file as stored on disk.
type Header struct {
	// Dims is [z, y, x].
	Dims [3]int
	Kind Kind

	// Compressor is "none", "zstd" or "lz4".
	Compressor  string
	Level       int
	BlockSize   int
	BlockCount  int
	StoredBytes int64
	Shuffled    bool

	// PixelSize is [z, y, x] in PixelUnit.
	PixelSize [3]float32
	PixelUnit string
	Voltage   float32
	C3        float32
	Gain      float32

	Min, Max, Mean, RMS float32

	HasChecksum bool
	Checksum    uint32
	Labels      []string
	Meta        *Metadata
}

func newHeader(h *header.Header, md *Metadata) *Header {
	if md == nil {
		md = NewMetadata()
	}
	return &Header{
		Dims:        h.Dims,
		Kind:        h.Kind,
		Compressor:  h.Compressor.String(),
		Level:       h.Level,
		BlockSize:   h.BlockSize,
		BlockCount:  len(h.Blocks),
		StoredBytes: h.StoredSize(),
		Shuffled:    h.Shuffled(),
		PixelSize:   h.PixelSize,
		PixelUnit:   h.PixelUnit,
		Voltage:     h.Voltage,
		C3:          h.C3,
		Gain:        h.Gain,
		Min:         h.Min,
		Max:         h.Max,
		Mean:        h.Mean,
		RMS:         h.RMS,
		HasChecksum: h.HasChecksum(),
		Checksum:    h.Checksum,
		Labels:      h.Labels,
		Meta:        md,
	}
}

// PayloadBytes returns the uncompressed payload length.
func (h *Header) PayloadBytes() int {
	return (&header.Header{Kind: h.Kind, Dims: h.Dims}).PayloadSize()
}

// Ratio returns the uncompressed to stored size ratio.
func (h *Header) Ratio() float64 {
	if h.StoredBytes == 0 {
		return 0
	}
	return float64(h.PayloadBytes()) / float64(h.StoredBytes)
}
