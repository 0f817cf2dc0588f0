package mrcz

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPixelSize = [3]float32{1.2, 2.6, 3.4}

func testVolume(t *testing.T, kind Kind, dims [3]int) *Array {
	t.Helper()
	r := rand.New(rand.NewSource(int64(kind) + 7))
	n := dims[0] * dims[1] * dims[2]

	var data any
	switch kind {
	case Int8:
		d := make([]int8, n)
		for i := range d {
			d[i] = int8(r.Intn(10))
		}
		data = d
	case Int16:
		d := make([]int16, n)
		for i := range d {
			d[i] = int16(r.Intn(2000) - 1000)
		}
		data = d
	case Uint16:
		d := make([]uint16, n)
		for i := range d {
			d[i] = uint16(r.Intn(10))
		}
		data = d
	case Float32:
		d := make([]float32, n)
		for i := range d {
			d[i] = float32(r.NormFloat64())
		}
		data = d
	case Complex64:
		d := make([]complex64, n)
		for i := range d {
			d[i] = complex(float32(r.NormFloat64()+10), float32(r.NormFloat64()+10))
		}
		data = d
	case Uint4:
		d := make([]uint8, n)
		for i := range d {
			d[i] = uint8(r.Intn(16))
		}
		data = d
	}

	arr, err := NewArray(data, dims[:]...)
	require.NoError(t, err)
	return arr
}

func writeOpts(extra ...WriteOption) []WriteOption {
	opts := []WriteOption{
		WithPixelSize(testPixelSize[0], testPixelSize[1], testPixelSize[2]),
		WithPixelUnit("Å"),
		WithVoltage(300),
		WithC3(2.7),
		WithGain(1.05),
	}
	return append(opts, extra...)
}

func assertHeaderFields(t *testing.T, h *Header) {
	t.Helper()
	for i := range testPixelSize {
		assert.InDelta(t, testPixelSize[i], h.PixelSize[i], 1e-5)
	}
	assert.Equal(t, "Å", h.PixelUnit)
	assert.Equal(t, float32(300), h.Voltage)
	assert.Equal(t, float32(2.7), h.C3)
	assert.Equal(t, float32(1.05), h.Gain)
}

func TestRoundtripMatrix(t *testing.T) {
	dims := [3]int{2, 128, 96}
	compressors := []struct {
		name  string
		level int
	}{
		{"none", 0},
		{"zstd", 1},
		{"lz4", 9},
	}
	kinds := []Kind{Float32, Int8, Int16, Uint16, Complex64, Uint4}

	dir := t.TempDir()
	for _, c := range compressors {
		for _, k := range kinds {
			t.Run(c.name+"/"+k.String(), func(t *testing.T) {
				path := filepath.Join(dir, c.name+"-"+k.String()+".mrcz")
				arr := testVolume(t, k, dims)

				err := WriteFile(path, arr, writeOpts(WithCompressor(c.name), WithLevel(c.level), WithThreads(4))...)
				require.NoError(t, err)

				got, h, err := ReadFile(path, WithExpectedUnit("Å"))
				require.NoError(t, err)
				assert.Equal(t, dims, got.Dims)
				assert.Equal(t, k, got.Kind())
				assert.Equal(t, arr.Data, got.Data)

				assert.Equal(t, k, h.Kind)
				assert.Equal(t, c.name, h.Compressor)
				assertHeaderFields(t, h)
				if c.name != "none" {
					assert.Positive(t, h.BlockCount)
					assert.Equal(t, c.level, h.Level)
				}
			})
		}
	}
}

func TestUncompressedInt8Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "int8.mrc")
	arr := testVolume(t, Int8, [3]int{2, 128, 96})

	require.NoError(t, WriteFile(path, arr, writeOpts()...))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1024+2*128*96, fi.Size())

	got, h, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, arr.Data, got.Data)
	assert.Equal(t, 0, h.BlockCount)
	assertHeaderFields(t, h)
}

func TestCastToUint4(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Int8, [3]int{2, 16, 8})

	path := filepath.Join(dir, "uint4.mrcz")
	require.NoError(t, WriteFile(path, arr, WithKind(Uint4), WithCompressor("zstd")))

	got, h, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Uint4, h.Kind)
	src := arr.Data.([]int8)
	dst := got.Data.([]uint8)
	require.Len(t, dst, len(src))
	for i := range src {
		assert.Equal(t, uint8(src[i]), dst[i])
	}

	neg, err := NewArray([]int8{1, -1}, 2)
	require.NoError(t, err)
	err = WriteFile(filepath.Join(dir, "neg.mrc"), neg, WithKind(Uint4))
	assert.ErrorIs(t, err, ErrUnsupportedCast)
	_, statErr := os.Stat(filepath.Join(dir, "neg.mrc"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUint4OddRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odd.mrc")
	arr := testVolume(t, Uint4, [3]int{3, 5, 7})

	require.NoError(t, WriteFile(path, arr))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1024+3*5*4, fi.Size())

	got, _, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, arr.Data, got.Data)
}

func TestUint4OutOfRange(t *testing.T) {
	arr, err := NewArray([]uint8{1, 16}, 2)
	require.NoError(t, err)
	err = WriteFile(filepath.Join(t.TempDir(), "bad.mrc"), arr)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMetadataRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.mrcz")
	arr := testVolume(t, Int8, [3]int{3, 128, 64})

	md := NewMetadata()
	md.Set("ratio", FloatValue(2))
	err := WriteFile(path, arr, writeOpts(
		WithMetadata(md),
		WithMeta(map[string]any{"foo": 5, "bar": 42, "who": "tester"}),
		WithCompressor("zstd"), WithLevel(1), WithThreads(4),
	)...)
	require.NoError(t, err)

	_, h, err := ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"ratio", "bar", "foo", "who"}, h.Meta.Keys())
	v, ok := h.Meta.Get("foo")
	require.True(t, ok)
	n, isInt := v.Int()
	assert.True(t, isInt)
	assert.EqualValues(t, 5, n)

	v, _ = h.Meta.Get("ratio")
	f, isFloat := v.Float()
	assert.True(t, isFloat)
	assert.Equal(t, 2.0, f)

	hdr, err := ReadHeader(path)
	require.NoError(t, err)
	assert.True(t, h.Meta.Equal(hdr.Meta))
	assert.Equal(t, h.Dims, hdr.Dims)
}

func TestUnsupportedMetadata(t *testing.T) {
	arr := testVolume(t, Int8, [3]int{1, 2, 2})
	err := WriteFile(filepath.Join(t.TempDir(), "m.mrc"), arr, WithMeta(map[string]any{"flag": true}))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestWriteOptionErrors(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Float32, [3]int{1, 4, 4})

	tests := []struct {
		name string
		opts []WriteOption
		want error
	}{
		{"zstd1 name", []WriteOption{WithCompressor("zstd1")}, ErrUnsupportedCompressor},
		{"zstd level", []WriteOption{WithCompressor("zstd"), WithLevel(23)}, ErrInvalidLevel},
		{"lz4 level", []WriteOption{WithCompressor("lz4"), WithLevel(10)}, ErrInvalidLevel},
		{"block size", []WriteOption{WithCompressor("lz4"), WithBlockSize(0)}, ErrInvalidBlockSize},
		{"too many labels", labels(11), ErrOutOfRange},
		{"unknown kind", []WriteOption{WithKind(Kind(99))}, ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WriteFile(filepath.Join(dir, "x.mrc"), arr, tt.opts...)
			assert.ErrorIs(t, err, tt.want)

			var fe *FileError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "write", fe.Op)
		})
	}
}

func labels(n int) []WriteOption {
	var opts []WriteOption
	for i := 0; i < n; i++ {
		opts = append(opts, WithLabel("label"))
	}
	return opts
}

func TestLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.mrc")
	arr := testVolume(t, Int16, [3]int{1, 4, 4})
	require.NoError(t, WriteFile(path, arr, WithLabel("created by test"), WithLabel("second")))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"created by test", "second"}, h.Labels)
}

func TestStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.mrc")
	arr, err := NewArray([]int16{-2, 0, 2, 4}, 2, 2)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, arr))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	assert.Equal(t, float32(-2), h.Min)
	assert.Equal(t, float32(4), h.Max)
	assert.Equal(t, float32(1), h.Mean)
	assert.Equal(t, [3]int{1, 2, 2}, h.Dims)
}

func TestUnwritablePath(t *testing.T) {
	arr := testVolume(t, Int8, [3]int{1, 2, 2})
	path := filepath.Join(t.TempDir(), "missing", "dir", "x.mrc")

	err := WriteFile(path, arr)
	assert.ErrorIs(t, err, ErrUnwritablePath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Float32, [3]int{2, 8, 8})
	path := filepath.Join(dir, "clean.mrcz")

	require.NoError(t, WriteFile(path, arr, WithCompressor("lz4")))
	require.NoError(t, WriteFile(path, arr, WithCompressor("zstd")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "clean.mrcz", entries[0].Name())
}

func TestExpectedUnitMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unit.mrc")
	arr := testVolume(t, Int8, [3]int{1, 2, 2})
	require.NoError(t, WriteFile(path, arr, WithPixelUnit("nm")))

	_, _, err := ReadFile(path, WithExpectedUnit("Å"))
	assert.ErrorIs(t, err, ErrPixelUnitMismatch)
}

func TestTruncatedFiles(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Float32, [3]int{2, 64, 64})
	path := filepath.Join(dir, "full.mrcz")
	require.NoError(t, WriteFile(path, arr, WithCompressor("zstd"), WithBlockSize(4096)))

	full, err := os.ReadFile(path)
	require.NoError(t, err)

	t.Run("header", func(t *testing.T) {
		p := filepath.Join(dir, "short-header.mrcz")
		require.NoError(t, os.WriteFile(p, full[:1000], 0o644))
		_, _, err := ReadFile(p)
		assert.ErrorIs(t, err, ErrTruncatedHeader)
		_, err = ReadHeader(p)
		assert.ErrorIs(t, err, ErrTruncatedHeader)
	})

	t.Run("blocks", func(t *testing.T) {
		p := filepath.Join(dir, "short-blocks.mrcz")
		require.NoError(t, os.WriteFile(p, full[:len(full)-10], 0o644))
		_, _, err := ReadFile(p)
		assert.ErrorIs(t, err, ErrFileTooShort)
	})

	t.Run("plain payload", func(t *testing.T) {
		plain := filepath.Join(dir, "plain.mrc")
		require.NoError(t, WriteFile(plain, arr))
		data, err := os.ReadFile(plain)
		require.NoError(t, err)

		p := filepath.Join(dir, "short-plain.mrc")
		require.NoError(t, os.WriteFile(p, data[:len(data)-1], 0o644))
		_, _, err = ReadFile(p)
		assert.ErrorIs(t, err, ErrFileTooShort)
	})
}

func TestChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Int16, [3]int{1, 16, 16})
	path := filepath.Join(dir, "sum.mrc")
	require.NoError(t, WriteFile(path, arr))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, _, err = ReadFile(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	// Without a stored checksum the flipped byte goes unnoticed.
	require.NoError(t, WriteFile(path, arr, WithChecksum(false)))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))
	_, _, err = ReadFile(path)
	assert.NoError(t, err)
}

func TestTableDisagreesWithDims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dims.mrcz")
	arr := testVolume(t, Float32, [3]int{2, 32, 32})
	require.NoError(t, WriteFile(path, arr, WithCompressor("lz4")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[0] = 31 // nx
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, _, err = ReadFile(path)
	assert.ErrorIs(t, err, ErrCorruptHeader)
}

func TestMissingFile(t *testing.T) {
	_, _, err := ReadFile(filepath.Join(t.TempDir(), "nope.mrc"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "read", fe.Op)
}

func TestNewArray(t *testing.T) {
	arr, err := NewArray(make([]float32, 12), 3, 4)
	require.NoError(t, err)
	assert.Equal(t, [3]int{1, 3, 4}, arr.Dims)
	assert.Equal(t, Float32, arr.Kind())

	_, err = NewArray(make([]float32, 11), 3, 4)
	assert.Error(t, err)

	_, err = NewArray([]float64{1}, 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = NewArray(make([]int8, 4), 0, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestShuffleFlag(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Float32, [3]int{1, 64, 64})

	on := filepath.Join(dir, "on.mrcz")
	off := filepath.Join(dir, "off.mrcz")
	require.NoError(t, WriteFile(on, arr, WithCompressor("zstd"), WithShuffle(true)))
	require.NoError(t, WriteFile(off, arr, WithCompressor("zstd"), WithShuffle(false)))

	h, err := ReadHeader(on)
	require.NoError(t, err)
	assert.True(t, h.Shuffled)
	h, err = ReadHeader(off)
	require.NoError(t, err)
	assert.False(t, h.Shuffled)

	for _, p := range []string{on, off} {
		got, _, err := ReadFile(p, WithReadThreads(2))
		require.NoError(t, err)
		assert.Equal(t, arr.Data, got.Data)
	}
}

func patchFile(t *testing.T, path string, patch func([]byte)) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	patch(data)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestOversizedDimensions(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Int8, [3]int{1, 4, 4})

	tests := []struct {
		name string
		dims [3]uint32 // nx, ny, nz
		want error
	}{
		{"element count overflows", [3]uint32{1 << 21, 1 << 21, 1 << 21}, ErrCorruptHeader},
		{"maximal dims", [3]uint32{math.MaxInt32, math.MaxInt32, math.MaxInt32}, ErrCorruptHeader},
		{"larger than file", [3]uint32{1 << 20, 4, 1}, ErrFileTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "dims.mrc")
			require.NoError(t, WriteFile(path, arr))
			patchFile(t, path, func(b []byte) {
				for i, d := range tt.dims {
					binary.LittleEndian.PutUint32(b[4*i:], d)
				}
			})

			require.NotPanics(t, func() {
				_, _, err := ReadFile(path)
				assert.ErrorIs(t, err, tt.want)
			})
		})
	}
}

func TestExtendedRegionPastEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ext.mrc")
	arr := testVolume(t, Int8, [3]int{1, 4, 4})
	require.NoError(t, WriteFile(path, arr, WithMeta(map[string]any{"k": "v"})))

	// nsymbt and the metadata length agree, but point far beyond the file.
	patchFile(t, path, func(b []byte) {
		binary.LittleEndian.PutUint32(b[92:], 1<<30)
		binary.LittleEndian.PutUint32(b[120:], 1<<30)
	})

	_, err := ReadHeader(path)
	assert.ErrorIs(t, err, ErrCorruptHeader)
	_, _, err = ReadFile(path)
	assert.ErrorIs(t, err, ErrCorruptHeader)
}

func TestInvalidUTF8Metadata(t *testing.T) {
	dir := t.TempDir()
	arr := testVolume(t, Int8, [3]int{1, 2, 2})

	for name, m := range map[string]map[string]any{
		"key":   {"k\xff": "v"},
		"value": {"k": "v\xfe"},
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".mrc")
			err := WriteFile(path, arr, WithMeta(m))
			assert.ErrorIs(t, err, ErrUnsupportedType)
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}
