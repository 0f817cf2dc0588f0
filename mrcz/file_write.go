package mrcz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	binpkg "github.com/robert-malhotra/go-mrcz/internal/binary"
	"github.com/robert-malhotra/go-mrcz/internal/dtype"
	"github.com/robert-malhotra/go-mrcz/internal/filter"
	"github.com/robert-malhotra/go-mrcz/internal/header"
	"github.com/robert-malhotra/go-mrcz/internal/layout"
	"github.com/robert-malhotra/go-mrcz/internal/log"
	"github.com/robert-malhotra/go-mrcz/internal/meta"
)

// WriteFile encodes arr and writes it to path. The file is assembled under
// a temporary name in the same directory and renamed into place, so path
// never holds a partial file.
func WriteFile(path string, arr *Array, opts ...WriteOption) error {
	o := defaultWriteOptions()
	for _, opt := range opts {
		opt(o)
	}
	return wrapErr("write", path, writeFile(path, arr, o))
}

func writeFile(path string, arr *Array, o *writeOptions) error {
	if err := arr.validate(); err != nil {
		return err
	}
	comp, err := filter.ParseCompressor(o.compressor)
	if err != nil {
		return err
	}
	if err := comp.ValidateLevel(o.level); err != nil {
		return err
	}
	if comp != filter.None {
		if err := layout.CheckBlockSize(o.blockSize); err != nil {
			return err
		}
	}
	md, err := o.buildMetadata()
	if err != nil {
		return metaErr(err)
	}

	kind, data, err := resolveKind(arr.Data, o.kind)
	if err != nil {
		return err
	}
	payload, err := dtype.Encode(kind, data, arr.Dims)
	if err != nil {
		return err
	}
	stats := dtype.Summarize(data)

	h := &header.Header{
		Dims:       arr.Dims,
		Kind:       kind,
		Compressor: comp,
		PixelSize:  o.pixelSize,
		PixelUnit:  o.pixelUnit,
		Voltage:    o.voltage,
		C3:         o.c3,
		Gain:       o.gain,
		Min:        float32(stats.Min),
		Max:        float32(stats.Max),
		Mean:       float32(stats.Mean),
		RMS:        float32(stats.RMS),
		Labels:     o.labels,
	}
	if o.checksum {
		h.Flags |= header.FlagChecksum
		h.Checksum = binpkg.Lookup3Checksum(payload)
	}

	blocks := [][]byte{payload}
	if comp != filter.None {
		lo := layout.Options{
			BlockSize:  o.blockSize,
			Compressor: comp,
			Level:      o.level,
			Threads:    o.threads,
			ElemSize:   kind.ElemSize(),
			Shuffle:    o.shuffle,
		}
		blocks, h.Blocks, err = layout.Compress(o.ctx, payload, lo)
		if err != nil {
			return err
		}
		h.Level = o.level
		h.BlockSize = o.blockSize
		if o.shuffle && kind.ElemSize() > 1 {
			h.Flags |= header.FlagShuffle
		}
	}

	hdr, err := header.Encode(h, md)
	if err != nil {
		return metaErr(err)
	}
	if err := atomicWrite(o.ctx, path, hdr, blocks); err != nil {
		return err
	}

	log.Debug(o.ctx, "wrote mrc file", map[string]interface{}{
		log.KeyPath:       path,
		log.KeyKind:       kind.String(),
		log.KeyDims:       arr.Dims,
		log.KeyCompressor: comp.String(),
		log.KeyLevel:      h.Level,
		log.KeyBlocks:     len(h.Blocks),
		log.KeyBytes:      len(payload),
		log.KeyStored:     h.StoredSize(),
	})
	return nil
}

// resolveKind picks the stored kind and casts data to it when needed.
func resolveKind(data any, want Kind) (Kind, any, error) {
	native, err := dtype.KindOfData(data)
	if err != nil {
		return dtype.Invalid, nil, err
	}
	if want == dtype.Invalid || want == native {
		return native, data, nil
	}
	cast, err := dtype.Cast(data, want)
	if err != nil {
		return dtype.Invalid, nil, err
	}
	return want, cast, nil
}

func (o *writeOptions) buildMetadata() (*Metadata, error) {
	md := meta.New()
	if o.metadata != nil {
		for _, k := range o.metadata.Keys() {
			v, _ := o.metadata.Get(k)
			md.Set(k, v)
		}
	}
	if len(o.metaMap) > 0 {
		extra, err := meta.FromMap(o.metaMap)
		if err != nil {
			return nil, err
		}
		for _, k := range extra.Keys() {
			v, _ := extra.Get(k)
			md.Set(k, v)
		}
	}
	return md, nil
}

// metaErr makes metadata type errors match ErrUnsupportedType.
func metaErr(err error) error {
	if errors.Is(err, meta.ErrUnsupportedType) && !errors.Is(err, ErrUnsupportedType) {
		return fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}
	return err
}

func tempName(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))
}

func atomicWrite(ctx context.Context, path string, hdr []byte, blocks [][]byte) (err error) {
	tmp := tempName(path)
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}

	defer func() {
		if err == nil {
			return
		}
		f.Close()
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Warning(ctx, "failed to remove temporary file", map[string]interface{}{
				log.KeyPath:     path,
				log.KeyTempPath: tmp,
				log.KeyError:    rmErr,
			})
		}
	}()

	bw := bufio.NewWriterSize(f, 1<<20)
	if _, err = bw.Write(hdr); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}
	for _, b := range blocks {
		if _, err = bw.Write(b); err != nil {
			return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
		}
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritablePath, err)
	}
	return nil
}
