package shp

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedFile() []byte {
	return buildFile(TypePolygon,
		testRecord{shapeType: TypePoint, body: le(1.5, 2.5)},
		testRecord{shapeType: TypeNullShape},
		testRecord{shapeType: TypeMultiPatch, body: make([]byte, 24)},
		testRecord{shapeType: TypePolygon, body: polyLineBody()},
		testRecord{shapeType: TypePointZ, body: le(1.0, 2.0, 3.0, 4.0)},
	)
}

func TestReaderRecords(t *testing.T) {
	reader := NewReader(bytes.NewReader(mixedFile()))

	h, err := reader.Header()
	require.NoError(t, err)
	assert.Equal(t, TypePolygon, h.ShapeType)
	assert.Equal(t, uint32(50+4*5+10+2+14+66+18), h.FileLength)

	wantTypes := []ShapeType{TypePoint, TypeNullShape, TypeMultiPatch, TypePolygon, TypePointZ}
	got := make([]*Record, 0)

	for {
		rec, err := reader.ReadRecord()

		if err == io.EOF {
			break
		}

		require.NoError(t, err)
		got = append(got, rec)
	}

	require.Len(t, got, len(wantTypes))

	for i, rec := range got {
		assert.Equal(t, uint32(i+1), rec.Number)
		assert.Equal(t, wantTypes[i], rec.ShapeType)
	}

	assert.Equal(t, &Point{X: 1.5, Y: 2.5}, got[0].Geometry)
	assert.Equal(t, uint32(10), got[0].ContentLength)
	assert.Nil(t, got[1].Geometry)
	assert.Nil(t, got[2].Geometry)
	assert.Len(t, got[3].Geometry.(*Polygon).Parts, 2)
	assert.Equal(t, &Point{X: 1, Y: 2, Z: 3, M: 4}, got[4].Geometry)

	_, err = reader.ReadRecord()
	assert.Equal(t, io.EOF, err)
}

func TestReaderHeaderOnly(t *testing.T) {
	reader := NewReader(bytes.NewReader(buildFile(TypePoint)))

	count := 0

	for _, err := range reader.All() {
		require.NoError(t, err)
		count++
	}

	assert.Zero(t, count)
}

func TestReaderUnknownRecordShapeType(t *testing.T) {
	data := buildFile(TypePoint,
		testRecord{shapeType: TypePoint, body: le(1.0, 2.0)},
		testRecord{shapeType: ShapeType(7), body: le(1.0, 2.0)},
		testRecord{shapeType: TypePoint, body: le(3.0, 4.0)},
	)

	reader := NewReader(bytes.NewReader(data))

	_, err := reader.ReadRecord()
	require.NoError(t, err)

	_, err = reader.ReadRecord()

	var recordErr *RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, 2, recordErr.Index)
	assert.Equal(t, uint32(2), recordErr.Number)
	assert.Equal(t, stageShapeType, recordErr.Stage)

	var unknown *UnknownShapeTypeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, uint32(7), unknown.Code)

	// No resynchronisation after a failure.
	_, err2 := reader.ReadRecord()
	assert.Equal(t, err, err2)
}

func TestReaderTruncatedRecord(t *testing.T) {
	data := buildFile(TypePolyLine, testRecord{shapeType: TypePolyLine, body: polyLineBody()})

	reader := NewReader(bytes.NewReader(data[:len(data)-10]))
	_, err := reader.ReadRecord()

	var recordErr *RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, stageGeometry, recordErr.Stage)

	var truncated *TruncatedReadError
	assert.ErrorAs(t, err, &truncated)
}

func TestReaderMissingRecord(t *testing.T) {
	// Header claims a record the stream does not have.
	data := headerBytes(64, TypePoint, [8]float64{})

	_, err := NewReader(bytes.NewReader(data)).ReadRecord()

	var recordErr *RecordError
	require.ErrorAs(t, err, &recordErr)
	assert.Equal(t, stageRecordHeader, recordErr.Stage)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReaderAllStopsEarly(t *testing.T) {
	reader := NewReader(bytes.NewReader(mixedFile()))

	for rec, err := range reader.All() {
		require.NoError(t, err)
		assert.Equal(t, uint32(1), rec.Number)
		break
	}

	rec, err := reader.ReadRecord()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), rec.Number)
}

func TestDecodeIsIdempotent(t *testing.T) {
	data := mixedFile()

	decodeAll := func() []*Record {
		records := make([]*Record, 0)

		for rec, err := range NewReader(bytes.NewReader(data)).All() {
			require.NoError(t, err)
			records = append(records, rec)
		}

		return records
	}

	first := decodeAll()
	second := decodeAll()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("second decode differs (-first +second):\n%s", diff)
	}
}

type collectingSink struct {
	header  *FileHeader
	records []*Record
	errs    []error
	failOn  uint32
}

func (c *collectingSink) OnHeader(h *FileHeader) error {
	c.header = h
	return nil
}

func (c *collectingSink) OnRecord(r *Record) error {
	if c.failOn != 0 && r.Number == c.failOn {
		return errors.New("sink full")
	}

	c.records = append(c.records, r)
	return nil
}

func (c *collectingSink) OnError(err error) {
	c.errs = append(c.errs, err)
}

func TestDecodeIntoSink(t *testing.T) {
	sink := &collectingSink{}

	require.NoError(t, Decode(bytes.NewReader(mixedFile()), sink))
	require.NotNil(t, sink.header)
	assert.Len(t, sink.records, 5)
	assert.Empty(t, sink.errs)
}

func TestDecodeIntoSinkStopsOnError(t *testing.T) {
	data := buildFile(TypePoint,
		testRecord{shapeType: TypePoint, body: le(1.0, 2.0)},
		testRecord{shapeType: TypePoint, body: le(1.0, 2.0), contentWords: 12},
		testRecord{shapeType: TypePoint, body: le(3.0, 4.0)},
	)

	sink := &collectingSink{}
	err := Decode(bytes.NewReader(data), sink)

	var mismatch *ContentLengthMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Len(t, sink.records, 1)
	require.Len(t, sink.errs, 1)
	assert.Equal(t, err, sink.errs[0])
}

func TestDecodeSinkError(t *testing.T) {
	sink := &collectingSink{failOn: 2}
	err := Decode(bytes.NewReader(mixedFile()), sink)

	assert.EqualError(t, err, "sink full")
	assert.Len(t, sink.records, 1)
	assert.Empty(t, sink.errs)
}

func TestDecodeInvalidHeaderIntoSink(t *testing.T) {
	sink := &collectingSink{}
	err := Decode(bytes.NewReader(make([]byte, 100)), sink)

	var invalid *InvalidFileCodeError
	require.ErrorAs(t, err, &invalid)
	assert.Nil(t, sink.header)
	assert.Len(t, sink.errs, 1)
}

func TestRecordString(t *testing.T) {
	reader := NewReader(bytes.NewReader(mixedFile()))

	var polygon *Record

	for rec, err := range reader.All() {
		require.NoError(t, err)

		if rec.ShapeType == TypePolygon {
			polygon = rec
		}
	}

	require.NotNil(t, polygon)
	assert.Equal(t,
		"record 4: Polygon, 66 words\n"+
			"  box: x[0, 6] y[0, 6] z[0, 0] m[0, 0]\n"+
			"  ring 0 (start 0): (0 0 0 0) (1 1 0 0) (2 2 0 0)\n"+
			"  ring 1 (start 3): (5 5 0 0) (6 6 0 0)",
		polygon.String())
}
