package layout

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-mrcz/internal/filter"
)

// DefaultBlockSize is used when Options.BlockSize is zero.
const DefaultBlockSize = 1 << 20

// Options configures block compression.
type Options struct {
	BlockSize  int
	Compressor filter.Compressor
	Level      int
	// Threads bounds the number of blocks processed at once; <= 0 means
	// GOMAXPROCS.
	Threads int
	// ElemSize is the shuffle width in bytes.
	ElemSize int
	Shuffle  bool
}

func (o Options) blockSize() int {
	if o.BlockSize == 0 {
		return DefaultBlockSize
	}
	return o.BlockSize
}

func (o Options) threads() int {
	if o.Threads <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Threads
}

func (o Options) pipeline() (*filter.Pipeline, error) {
	return filter.NewPipeline(filter.PipelineOptions{
		Compressor:   o.Compressor,
		Level:        o.Level,
		ElemSize:     o.ElemSize,
		Shuffle:      o.Shuffle,
		MaxBlockSize: o.blockSize(),
	})
}

// Compress cuts payload into blocks and encodes each one. The returned
// blocks are in payload order and table[i] describes blocks[i].
func Compress(ctx context.Context, payload []byte, opts Options) ([][]byte, Table, error) {
	size := opts.blockSize()
	if err := CheckBlockSize(size); err != nil {
		return nil, nil, err
	}
	p, err := opts.pipeline()
	if err != nil {
		return nil, nil, err
	}
	defer p.Close()

	count := BlockCount(len(payload), size)
	blocks := make([][]byte, count)
	table := make(Table, count)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.threads())
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := i * size
			end := start + size
			if end > len(payload) {
				end = len(payload)
			}
			src := payload[start:end]

			stored, err := p.Encode(src)
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			blocks[i] = stored
			table[i] = BlockInfo{Compressed: uint32(len(stored)), Uncompressed: uint32(len(src))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return blocks, table, nil
}

// Decompress decodes blocks described by table into one payload buffer.
// Every block is decoded straight into its own window of the result.
func Decompress(ctx context.Context, blocks [][]byte, table Table, opts Options) ([]byte, error) {
	if len(blocks) != len(table) {
		return nil, fmt.Errorf("%w: %d blocks for %d table entries", ErrBlockLengthMismatch, len(blocks), len(table))
	}
	p, err := opts.pipeline()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	out := make([]byte, table.UncompressedSize())
	offsets := make([]int64, len(table))
	var off int64
	for i, b := range table {
		if len(blocks[i]) != int(b.Compressed) {
			return nil, fmt.Errorf("%w: block %d has %d stored bytes, table says %d", ErrBlockLengthMismatch, i, len(blocks[i]), b.Compressed)
		}
		offsets[i] = off
		off += int64(b.Uncompressed)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.threads())
	for i := range table {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := offsets[i]
			end := start + int64(table[i].Uncompressed)
			dst := out[start:end:end]

			n, err := p.Decode(blocks[i], dst)
			if err != nil {
				return fmt.Errorf("block %d: %w", i, err)
			}
			if n != len(dst) {
				return fmt.Errorf("%w: block %d decoded to %d bytes, table says %d", ErrBlockLengthMismatch, i, n, len(dst))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecompressBlock decodes block i alone from the stored region.
func DecompressBlock(region []byte, table Table, i int, opts Options) ([]byte, error) {
	if i < 0 || i >= len(table) {
		return nil, fmt.Errorf("block index %d out of range [0,%d)", i, len(table))
	}
	off := table.Offset(i)
	b := table[i]
	end := off + int64(b.Compressed)
	if int64(len(region)) < end {
		return nil, fmt.Errorf("%w: block %d ends at %d, region is %d bytes", ErrFileTooShort, i, end, len(region))
	}
	p, err := opts.pipeline()
	if err != nil {
		return nil, err
	}
	defer p.Close()

	dst := make([]byte, b.Uncompressed)
	n, err := p.Decode(region[off:end], dst)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", i, err)
	}
	if n != len(dst) {
		return nil, fmt.Errorf("%w: block %d decoded to %d bytes, table says %d", ErrBlockLengthMismatch, i, n, len(dst))
	}
	return dst, nil
}
