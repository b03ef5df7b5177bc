package shp

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadIntEndianness(t *testing.T) {
	data := []byte{0x00, 0x00, 0x27, 0x0A}

	r := newShpBinaryReader(bytes.NewReader(data))
	v, err := r.readInt(intBig)
	require.NoError(t, err)
	assert.Equal(t, uint32(9994), v)

	r = newShpBinaryReader(bytes.NewReader(data))
	v, err = r.readInt(intLittle)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x0A270000), v)
	assert.Equal(t, int64(4), r.consumed)
}

func TestReadDoubleNoData(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"regular", 1234.56789, 1234.56789},
		{"negative", -42.5, -42.5},
		{"threshold itself is data", -1e38, -1e38},
		{"below threshold", -1e39, 0},
		{"typical no data marker", -math.MaxFloat64, 0},
		{"negative infinity", math.Inf(-1), 0},
		{"not rounded", 0.123456789, 0.123456789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newShpBinaryReader(bytes.NewReader(le(tt.in)))
			v, err := r.readDouble()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, int64(8), r.consumed)
		})
	}
}

func TestReadTruncated(t *testing.T) {
	r := newShpBinaryReader(bytes.NewReader([]byte{1, 2, 3}))
	_, err := r.readInt(intBig)

	var truncated *TruncatedReadError
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, 4, truncated.Wanted)
	assert.Equal(t, 3, truncated.Got)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	r = newShpBinaryReader(bytes.NewReader(nil))
	_, err = r.readDouble()
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, 0, truncated.Got)
}

func TestReadUnsupportedType(t *testing.T) {
	r := newShpBinaryReader(bytes.NewReader(make([]byte, 16)))

	var unsupported *UnsupportedTypeError

	_, err := r.readInt(double)
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, double, unsupported.Kind)

	_, err = r.readBuffer(primitiveKind(9))
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, int64(0), r.consumed)
}

func TestSkip(t *testing.T) {
	r := newShpBinaryReader(bytes.NewReader(make([]byte, 10)))
	require.NoError(t, r.skip(6))
	assert.Equal(t, int64(6), r.consumed)

	err := r.skip(8)
	var truncated *TruncatedReadError
	require.ErrorAs(t, err, &truncated)
	assert.Equal(t, 4, truncated.Got)
}

func TestReadBoundingBox(t *testing.T) {
	values := le(1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 8.0)

	tests := []struct {
		name     string
		hasM     bool
		hasZ     bool
		want     BoundingBox
		consumed int64
	}{
		{"xy", false, false, BoundingBox{XMin: 1, YMin: 2, XMax: 3, YMax: 4}, 32},
		{"z", false, true, BoundingBox{XMin: 1, YMin: 2, XMax: 3, YMax: 4, ZMin: 5, ZMax: 6}, 48},
		{"m", true, false, BoundingBox{XMin: 1, YMin: 2, XMax: 3, YMax: 4, MMin: 5, MMax: 6}, 48},
		{"zm", true, true, BoundingBox{XMin: 1, YMin: 2, XMax: 3, YMax: 4, ZMin: 5, ZMax: 6, MMin: 7, MMax: 8}, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newShpBinaryReader(bytes.NewReader(values))
			box, err := r.readBoundingBox(tt.hasM, tt.hasZ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, box)
			assert.Equal(t, tt.consumed, r.consumed)
		})
	}
}

func TestWordConversion(t *testing.T) {
	assert.Equal(t, int64(100), wordsToBytes(uint32(50)))
	assert.Equal(t, int64(50), bytesToWords(100))
}
