package header

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/robert-malhotra/go-mrcz/internal/dtype"
	"github.com/robert-malhotra/go-mrcz/internal/filter"
	"github.com/robert-malhotra/go-mrcz/internal/layout"
	"github.com/robert-malhotra/go-mrcz/internal/meta"
)

func sampleHeader() *Header {
	return &Header{
		Dims:       [3]int{2, 128, 96},
		Kind:       dtype.Int16,
		Compressor: filter.Zstd,
		Level:      1,
		BlockSize:  4096,
		Blocks:     layout.Table{{Compressed: 100, Uncompressed: 4096}, {Compressed: 50, Uncompressed: 512}},
		PixelSize:  [3]float32{1.2, 2.6, 3.4},
		PixelUnit:  "Å",
		Voltage:    300,
		C3:         2.7,
		Gain:       1.05,
		Min:        -3,
		Max:        7,
		Mean:       0.5,
		RMS:        1.25,
		Flags:      FlagShuffle | FlagChecksum,
		Checksum:   0xdeadbeef,
		Labels:     []string{"first", "second"},
	}
}

func TestEncodeLayout(t *testing.T) {
	h := sampleHeader()
	md := meta.New()
	md.Set("foo", meta.Int(5))

	buf, err := Encode(h, md)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	metaJSON := `{"foo":5}`
	if want := Size + 16 + len(metaJSON); len(buf) != want {
		t.Fatalf("encoded length %d, want %d", len(buf), want)
	}

	le := binary.LittleEndian
	i32 := func(off int) int32 { return int32(le.Uint32(buf[off:])) }
	f32 := func(off int) float32 { return math.Float32frombits(le.Uint32(buf[off:])) }

	if i32(0) != 96 || i32(4) != 128 || i32(8) != 2 {
		t.Errorf("dims = %d %d %d", i32(0), i32(4), i32(8))
	}
	if i32(12) != 6001 {
		t.Errorf("mode = %d, want 6001", i32(12))
	}
	if i32(28) != 96 || i32(36) != 2 {
		t.Error("mx/mz mismatch")
	}
	if got := f32(40); got != float32(3.4)*96 {
		t.Errorf("cell x = %v", got)
	}
	if f32(52) != 90 || i32(64) != 1 || i32(72) != 3 {
		t.Error("angles or axis map wrong")
	}
	if i32(92) != int32(16+len(metaJSON)) {
		t.Errorf("nsymbt = %d", i32(92))
	}
	if i32(96) != 4096 || i32(100) != 2 {
		t.Errorf("block size/count = %d/%d", i32(96), i32(100))
	}
	if string(buf[104:108]) != "JSON" || i32(108) != NVersion {
		t.Error("exttyp or nversion wrong")
	}
	if i32(112) != 1 || le.Uint32(buf[116:]) != 3 || le.Uint32(buf[120:]) != uint32(len(metaJSON)) {
		t.Error("level, flags or meta length wrong")
	}
	if le.Uint32(buf[124:]) != 0xdeadbeef {
		t.Error("checksum wrong")
	}
	if f32(128) != 300 || f32(132) != 2.7 || f32(136) != 1.05 {
		t.Error("instrument fields wrong")
	}
	if string(buf[140:142]) != "Å" || buf[142] != 0 {
		t.Errorf("unit bytes % x", buf[140:156])
	}
	if string(buf[208:212]) != "MAP " || buf[212] != 0x44 || buf[213] != 0x44 {
		t.Error("map tag or stamp wrong")
	}
	if i32(220) != 2 || string(buf[224:229]) != "first" || string(buf[304:310]) != "second" {
		t.Error("labels wrong")
	}
	if le.Uint32(buf[Size:]) != 100 || le.Uint32(buf[Size+4:]) != 4096 {
		t.Error("block table wrong")
	}
	if string(buf[Size+16:]) != metaJSON {
		t.Errorf("metadata = %q", buf[Size+16:])
	}
}

func TestDecodeRoundtrip(t *testing.T) {
	h := sampleHeader()
	md := meta.New()
	md.Set("bar", meta.Float(42))

	buf, err := Encode(h, md)
	if err != nil {
		t.Fatal(err)
	}
	got, gotMeta, off, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if off != int64(len(buf)) {
		t.Errorf("payload offset %d, want %d", off, len(buf))
	}
	if got.Dims != h.Dims || got.Kind != h.Kind || got.Compressor != h.Compressor {
		t.Errorf("shape mismatch: %+v", got)
	}
	for i := range h.PixelSize {
		if math.Abs(float64(got.PixelSize[i]-h.PixelSize[i])) > 1e-5 {
			t.Errorf("pixel size[%d] = %v, want %v", i, got.PixelSize[i], h.PixelSize[i])
		}
	}
	if got.PixelUnit != "Å" || got.Voltage != 300 || got.C3 != 2.7 || got.Gain != 1.05 {
		t.Errorf("instrument fields = %q %v %v %v", got.PixelUnit, got.Voltage, got.C3, got.Gain)
	}
	if !got.Shuffled() || !got.HasChecksum() || got.Checksum != 0xdeadbeef {
		t.Error("flags or checksum lost")
	}
	if len(got.Blocks) != 2 || got.Blocks[1] != h.Blocks[1] {
		t.Errorf("blocks = %v", got.Blocks)
	}
	if len(got.Labels) != 2 || got.Labels[1] != "second" {
		t.Errorf("labels = %v", got.Labels)
	}
	if got.Min != -3 || got.Max != 7 || got.Mean != 0.5 || got.RMS != 1.25 {
		t.Error("statistics lost")
	}
	if !md.Equal(gotMeta) {
		t.Errorf("metadata = %v", gotMeta.Map())
	}
}

func TestPlainFileHasNoExtendedRegion(t *testing.T) {
	h := &Header{Dims: [3]int{1, 2, 3}, Kind: dtype.Float32}
	buf, err := Encode(h, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(buf) != Size {
		t.Fatalf("length %d, want %d", len(buf), Size)
	}
	if string(buf[104:108]) != "\x00\x00\x00\x00" {
		t.Error("exttyp should be zero without metadata")
	}
	got, md, off, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if off != Size || md.Len() != 0 || got.Compressed() {
		t.Errorf("unexpected plain decode: off=%d meta=%d compressed=%v", off, md.Len(), got.Compressed())
	}
}

func TestForeignExtendedHeaderSkipped(t *testing.T) {
	h := &Header{Dims: [3]int{1, 1, 4}, Kind: dtype.Int8}
	buf, err := Encode(h, nil)
	if err != nil {
		t.Fatal(err)
	}
	binary.LittleEndian.PutUint32(buf[92:], 8)
	copy(buf[104:108], "FEI1")
	buf = append(buf, make([]byte, 8)...)

	got, md, off, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if off != Size+8 || md.Len() != 0 || len(got.Blocks) != 0 {
		t.Errorf("foreign header not skipped: off=%d", off)
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := func() []byte {
		h := sampleHeader()
		md := meta.New()
		md.Set("k", meta.String("v"))
		buf, err := Encode(h, md)
		if err != nil {
			t.Fatal(err)
		}
		return buf
	}
	le := binary.LittleEndian

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"truncated", func(b []byte) []byte { return b[:Size-1] }, ErrTruncatedHeader},
		{"empty", func(b []byte) []byte { return nil }, ErrTruncatedHeader},
		{"map tag", func(b []byte) []byte { copy(b[208:], "XXXX"); return b }, ErrCorruptHeader},
		{"big endian", func(b []byte) []byte { b[212], b[213] = 0x11, 0x11; return b }, ErrCorruptHeader},
		{"zero dim", func(b []byte) []byte { le.PutUint32(b[4:], 0); return b }, ErrCorruptHeader},
		{"unknown mode", func(b []byte) []byte { le.PutUint32(b[12:], 6003); return b }, ErrCorruptHeader},
		{"unknown compressor", func(b []byte) []byte { le.PutUint32(b[12:], 3001); return b }, filter.ErrUnsupportedCompressor},
		{"negative nsymbt", func(b []byte) []byte { le.PutUint32(b[92:], uint32(0xFFFFFFFF)); return b }, ErrCorruptHeader},
		{"nsymbt mismatch", func(b []byte) []byte { le.PutUint32(b[120:], 1); return b }, ErrCorruptHeader},
		{"extended past end", func(b []byte) []byte { return b[:len(b)-2] }, ErrCorruptHeader},
		{"bad metadata", func(b []byte) []byte { b[len(b)-1] = '['; return b }, ErrCorruptHeader},
		{"label count", func(b []byte) []byte { le.PutUint32(b[220:], 11); return b }, ErrCorruptHeader},
		{"element count overflow", func(b []byte) []byte {
			for _, off := range []int{0, 4, 8} {
				le.PutUint32(b[off:], 1<<21)
			}
			return b
		}, ErrCorruptHeader},
		{"max dims", func(b []byte) []byte {
			for _, off := range []int{0, 4, 8} {
				le.PutUint32(b[off:], math.MaxInt32)
			}
			return b
		}, ErrCorruptHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Decode(tt.mutate(valid()))
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeRejects(t *testing.T) {
	h := sampleHeader()
	h.Dims[0] = 0
	if _, err := Encode(h, nil); !errors.Is(err, dtype.ErrOutOfRange) {
		t.Errorf("zero dimension error = %v", err)
	}

	h = sampleHeader()
	h.Labels = make([]string, 11)
	if _, err := Encode(h, nil); !errors.Is(err, dtype.ErrOutOfRange) {
		t.Errorf("label count error = %v", err)
	}

	h = sampleHeader()
	md := meta.New()
	md.Set("x", meta.Float(math.NaN()))
	if _, err := Encode(h, md); !errors.Is(err, meta.ErrUnsupportedType) {
		t.Errorf("NaN metadata error = %v", err)
	}
}

func TestTruncateUTF8(t *testing.T) {
	if got := truncateUTF8("ÅÅÅ", 5); got != "ÅÅ" {
		t.Errorf("truncateUTF8 = %q", got)
	}
	if got := truncateUTF8("abc", 16); got != "abc" {
		t.Errorf("truncateUTF8 = %q", got)
	}
}
