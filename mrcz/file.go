package mrcz

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"

	binpkg "github.com/robert-malhotra/go-mrcz/internal/binary"
	"github.com/robert-malhotra/go-mrcz/internal/dtype"
	"github.com/robert-malhotra/go-mrcz/internal/header"
	"github.com/robert-malhotra/go-mrcz/internal/layout"
	"github.com/robert-malhotra/go-mrcz/internal/log"
)

// ReadFile reads the volume stored at path. The returned array owns its
// data; nothing refers to the file once ReadFile returns.
func ReadFile(path string, opts ...ReadOption) (*Array, *Header, error) {
	o := defaultReadOptions()
	for _, opt := range opts {
		opt(o)
	}
	arr, h, err := readFile(path, o)
	if err != nil {
		return nil, nil, wrapErr("read", path, err)
	}
	return arr, h, nil
}

func readFile(path string, o *readOptions) (*Array, *Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if fi.Size() < header.Size {
		return nil, nil, fmt.Errorf("%w: file is %d bytes", ErrTruncatedHeader, fi.Size())
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mapping file: %w", err)
	}
	defer m.Unmap()

	hh, md, off, err := header.Decode(m)
	if err != nil {
		return nil, nil, err
	}
	if o.expectedUnit != "" && hh.PixelUnit != o.expectedUnit {
		return nil, nil, fmt.Errorf("%w: file has %q, expected %q", ErrPixelUnitMismatch, hh.PixelUnit, o.expectedUnit)
	}

	payload, err := readPayload(o.ctx, hh, m[off:], o.threads)
	if err != nil {
		return nil, nil, err
	}
	if hh.HasChecksum() && !binpkg.VerifyLookup3(payload, hh.Checksum) {
		return nil, nil, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, hh.Checksum, binpkg.Lookup3Checksum(payload))
	}

	data, err := dtype.Decode(hh.Kind, payload, hh.Dims)
	if err != nil {
		return nil, nil, err
	}

	log.Debug(o.ctx, "read mrc file", map[string]interface{}{
		log.KeyPath:       path,
		log.KeyKind:       hh.Kind.String(),
		log.KeyDims:       hh.Dims,
		log.KeyCompressor: hh.Compressor.String(),
		log.KeyBlocks:     len(hh.Blocks),
		log.KeyStored:     hh.StoredSize(),
	})
	return &Array{Dims: hh.Dims, Data: data}, newHeader(hh, md), nil
}

// readPayload returns the uncompressed payload. For plain files the result
// aliases region.
func readPayload(ctx context.Context, hh *header.Header, region []byte, threads int) ([]byte, error) {
	size := hh.PayloadSize()

	if !hh.Compressed() {
		if len(region) < size {
			return nil, fmt.Errorf("%w: payload needs %d bytes, have %d", ErrFileTooShort, size, len(region))
		}
		return region[:size], nil
	}

	if len(hh.Blocks) == 0 {
		return nil, fmt.Errorf("%w: %s file without a block table", ErrCorruptHeader, hh.Compressor)
	}
	if got := hh.Blocks.UncompressedSize(); got != int64(size) {
		return nil, fmt.Errorf("%w: block table covers %d bytes, %v %v needs %d", ErrCorruptHeader, got, hh.Kind, hh.Dims, size)
	}
	if err := hh.Blocks.Validate(int64(size), hh.BlockSize); err != nil {
		return nil, err
	}
	blocks, err := layout.Split(region, hh.Blocks)
	if err != nil {
		return nil, err
	}
	lo, _ := hh.Compressor.LevelRange()
	return layout.Decompress(ctx, blocks, hh.Blocks, layout.Options{
		BlockSize:  hh.BlockSize,
		Compressor: hh.Compressor,
		Level:      lo,
		Threads:    threads,
		ElemSize:   hh.Kind.ElemSize(),
		Shuffle:    hh.Shuffled(),
	})
}

// ReadHeader reads only the header and metadata of the file at path.
func ReadHeader(path string) (*Header, error) {
	h, err := readHeader(path)
	if err != nil {
		return nil, wrapErr("read header", path, err)
	}
	return h, nil
}

func readHeader(path string) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fixed := make([]byte, header.Size)
	if _, err := io.ReadFull(f, fixed); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedHeader, err)
		}
		return nil, err
	}
	hh, err := header.Parse(fixed)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if hh.PayloadOffset() > fi.Size() {
		return nil, fmt.Errorf("%w: extended region of %d bytes runs past end of file (%d bytes)",
			ErrCorruptHeader, hh.ExtLength, fi.Size())
	}

	ext := make([]byte, hh.ExtLength)
	if _, err := io.ReadFull(f, ext); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: extended region: %v", ErrCorruptHeader, err)
		}
		return nil, err
	}
	md, err := hh.ParseExtended(ext)
	if err != nil {
		return nil, err
	}
	return newHeader(hh, md), nil
}
