package filter

import (
	"fmt"
)

// Pipeline represents the stages one block passes through:
// an optional shuffle followed by a compressor.
type Pipeline struct {
	shuffle *Shuffle
	codec   Filter
}

// PipelineOptions configures NewPipeline.
type PipelineOptions struct {
	Compressor Compressor
	Level      int
	// ElemSize is the shuffle width; shuffling is skipped when Shuffle is
	// false or ElemSize <= 1.
	ElemSize int
	Shuffle  bool
	// MaxBlockSize bounds the decoder's memory per block. Zero leaves the
	// codec's own limit in place.
	MaxBlockSize int
}

// NewPipeline creates a pipeline. Call Close when done with it.
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	codec, err := newFilter(opts.Compressor, opts.Level, opts.MaxBlockSize)
	if err != nil {
		return nil, err
	}
	p := &Pipeline{codec: codec}
	if opts.Shuffle && opts.Compressor != None && opts.ElemSize > 1 {
		p.shuffle = NewShuffle(opts.ElemSize)
	}
	return p, nil
}

// Encode returns the stored form of block. A stored form with the same
// length as block is the raw block; anything else is compressed.
func (p *Pipeline) Encode(block []byte) ([]byte, error) {
	if p.codec.ID() == None {
		return p.codec.Encode(block)
	}

	data := block
	if p.shuffle != nil {
		data = p.shuffle.Encode(data)
	}
	out, err := p.codec.Encode(data)
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", p.codec.ID(), err)
	}
	if len(out) >= len(block) {
		raw := make([]byte, len(block))
		copy(raw, block)
		return raw, nil
	}
	return out, nil
}

// Decode restores a stored block into dst, which must be exactly the
// uncompressed length. It returns the number of bytes produced.
func (p *Pipeline) Decode(stored, dst []byte) (int, error) {
	if len(stored) == len(dst) {
		return copy(dst, stored), nil
	}

	target := dst
	if p.shuffle != nil {
		target = make([]byte, len(dst))
	}
	n, err := p.codec.Decode(stored, target[:len(target):len(target)])
	if err != nil {
		return 0, fmt.Errorf("%s decode: %w", p.codec.ID(), err)
	}
	if n != len(dst) {
		return n, nil
	}
	if p.shuffle != nil {
		copy(dst, p.shuffle.Decode(target))
	}
	return n, nil
}

// Compressor returns the compressor id of the pipeline.
func (p *Pipeline) Compressor() Compressor {
	return p.codec.ID()
}

// Shuffled reports whether the pipeline shuffles bytes.
func (p *Pipeline) Shuffled() bool {
	return p.shuffle != nil
}

// Close releases codec resources.
func (p *Pipeline) Close() {
	if c, ok := p.codec.(interface{ Close() }); ok {
		c.Close()
	}
}
