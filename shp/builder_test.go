package shp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// le encodes fixed-size values little endian.
func le(values ...any) []byte {
	var buf bytes.Buffer

	for _, v := range values {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}

	return buf.Bytes()
}

func be(values ...uint32) []byte {
	var buf bytes.Buffer

	for _, v := range values {
		_ = binary.Write(&buf, binary.BigEndian, v)
	}

	return buf.Bytes()
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

type testRecord struct {
	shapeType ShapeType
	body      []byte
	// contentWords overrides the computed content length when set.
	contentWords uint32
}

func (r testRecord) words() uint32 {
	if r.contentWords != 0 {
		return r.contentWords
	}

	return uint32(shapeTypeTagBytes+len(r.body)) / 2
}

func headerBytes(fileWords uint32, shapeType ShapeType, box [8]float64) []byte {
	return concat(
		be(fileCode, 0, 0, 0, 0, 0, fileWords),
		le(uint32(1000), uint32(shapeType), box),
	)
}

func buildFile(shapeType ShapeType, records ...testRecord) []byte {
	fileWords := uint32(headerLengthWords)

	for _, r := range records {
		fileWords += r.words() + recordHeaderLengthWords
	}

	out := headerBytes(fileWords, shapeType, [8]float64{})

	for i, r := range records {
		out = concat(out, be(uint32(i+1), r.words()), le(uint32(r.shapeType)), r.body)
	}

	return out
}

// decodeBody runs a geometry decoder over a record body the way the record
// dispatcher does, with the shape type tag already consumed.
func decodeBody(t *testing.T, shapeType ShapeType, contentWords uint32, body []byte) (Geometry, *shpBinaryReader, error) {
	t.Helper()

	r := newShpBinaryReader(bytes.NewReader(concat(le(uint32(shapeType)), body)))
	_, err := r.readInt(intLittle)
	require.NoError(t, err)

	g, err := newGeometryDecoder(r, shapeType, contentWords).decode()

	return g, r, err
}

func bodyWords(body []byte) uint32 {
	return uint32(shapeTypeTagBytes+len(body)) / 2
}
