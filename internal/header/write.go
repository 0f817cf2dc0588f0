package header

import (
	"fmt"

	binpkg "github.com/robert-malhotra/go-mrcz/internal/binary"
	"github.com/robert-malhotra/go-mrcz/internal/meta"
)

// Encode serializes h and md into the fixed header followed by the
// extended region. ExtType, ExtLength and MetaLen are filled in on h.
func Encode(h *Header, md *meta.Metadata) ([]byte, error) {
	if err := h.validate(); err != nil {
		return nil, err
	}
	mode, err := h.Mode()
	if err != nil {
		return nil, err
	}
	metaJSON, err := md.Encode()
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}

	table := h.Blocks.Encode()
	h.MetaLen = len(metaJSON)
	h.ExtLength = len(table) + len(metaJSON)
	h.ExtType = [4]byte{}
	if len(metaJSON) > 0 {
		h.ExtType = ExtTypeJSON
	}

	buf := binpkg.NewBuffer(Size + h.ExtLength)
	w := binpkg.NewWriter(buf)
	nx, ny, nz := int32(h.Dims[2]), int32(h.Dims[1]), int32(h.Dims[0])

	// Fixed header layout: see package documentation for offsets.
	steps := []func() error{
		func() error { return w.WriteInt32s(nx, ny, nz) },
		func() error { return w.WriteInt32(mode) },
		func() error { return w.WriteInt32s(0, 0, 0) },
		func() error { return w.WriteInt32s(nx, ny, nz) },
		func() error {
			return w.WriteFloat32s(
				h.PixelSize[2]*float32(nx),
				h.PixelSize[1]*float32(ny),
				h.PixelSize[0]*float32(nz),
			)
		},
		func() error { return w.WriteFloat32s(90, 90, 90) },
		func() error { return w.WriteInt32s(1, 2, 3) },
		func() error { return w.WriteFloat32s(h.Min, h.Max, h.Mean) },
		func() error { return w.WriteInt32(0) },
		func() error { return w.WriteInt32(int32(h.ExtLength)) },
		func() error { return w.WriteInt32(int32(h.BlockSize)) },
		func() error { return w.WriteInt32(int32(len(h.Blocks))) },
		func() error { return w.WriteBytes(h.ExtType[:]) },
		func() error { return w.WriteInt32(NVersion) },
		func() error { return w.WriteInt32(int32(h.Level)) },
		func() error { return w.WriteUint32(h.Flags) },
		func() error { return w.WriteUint32(uint32(h.MetaLen)) },
		func() error { return w.WriteUint32(h.Checksum) },
		func() error { return w.WriteFloat32s(h.Voltage, h.C3, h.Gain) },
		func() error { return w.WriteFixedString(truncateUTF8(h.PixelUnit, UnitLength), UnitLength) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	// Zero the reserved bytes up to the origin.
	if err := w.WriteZeros(196 - int(w.Pos())); err != nil {
		return nil, err
	}
	tail := []func() error{
		func() error { return w.WriteFloat32s(h.Origin[2], h.Origin[1], h.Origin[0]) },
		func() error { return w.WriteBytes(MapTag[:]) },
		func() error { return w.WriteBytes(MachineStamp[:]) },
		func() error { return w.WriteFloat32(h.RMS) },
		func() error { return w.WriteInt32(int32(len(h.Labels))) },
	}
	for _, step := range tail {
		if err := step(); err != nil {
			return nil, err
		}
	}
	for _, label := range h.Labels {
		if err := w.WriteFixedString(truncateUTF8(label, LabelLength), LabelLength); err != nil {
			return nil, err
		}
	}

	w = w.At(Size)
	if err := w.WriteBytes(table); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(metaJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
