package shp

import (
	"fmt"
)

type TruncatedReadError struct {
	Wanted int
	Got    int
	error  error
}

func (t *TruncatedReadError) Error() string {
	return fmt.Sprintf("truncated read: wanted %d bytes, got %d: %v", t.Wanted, t.Got, t.error)
}

func (t *TruncatedReadError) Unwrap() error {
	return t.error
}

type InvalidFileCodeError struct {
	FileCode uint32
}

func (i *InvalidFileCodeError) Error() string {
	return fmt.Sprintf("invalid file code: shapefiles start with %d, found %d", fileCode, i.FileCode)
}

type UnknownShapeTypeError struct {
	Code uint32
}

func (u *UnknownShapeTypeError) Error() string {
	return fmt.Sprintf("unknown shape type %d", u.Code)
}

// ContentLengthMismatchError reports a record whose body does not add up to
// its declared content length. Both lengths are in bytes.
type ContentLengthMismatchError struct {
	ShapeType ShapeType
	Declared  int64
	Computed  int64
}

func (c *ContentLengthMismatchError) Error() string {
	return fmt.Sprintf("content length mismatch for %v: declared %d bytes (%d words), computed %d", c.ShapeType, c.Declared, bytesToWords(c.Declared), c.Computed)
}

type InvalidPartOrderingError struct {
	Part      int
	Start     int
	Previous  int
	NumPoints int
}

func (i *InvalidPartOrderingError) Error() string {
	if i.Start < 0 {
		return fmt.Sprintf("invalid part ordering: no parts for %d points", i.NumPoints)
	}

	if i.Part == 0 {
		return fmt.Sprintf("invalid part ordering: first part starts at %d, expected 0", i.Start)
	}

	if i.Start > i.NumPoints {
		return fmt.Sprintf("invalid part ordering: part %d starts at %d, beyond %d points", i.Part, i.Start, i.NumPoints)
	}

	return fmt.Sprintf("invalid part ordering: part %d starts at %d, before previous part start %d", i.Part, i.Start, i.Previous)
}

type UnsupportedTypeError struct {
	Kind primitiveKind
}

func (u *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported primitive type %d", u.Kind)
}

type HeaderError struct {
	error error
}

func (h *HeaderError) Error() string {
	return fmt.Sprintf("invalid shapefile header: %v", h.error)
}

func (h *HeaderError) Unwrap() error {
	return h.error
}

// RecordError identifies the record that stopped a decode. Index is the
// 1-based position in the stream, Number the record number stored in the
// file (0 when the record header itself could not be read).
type RecordError struct {
	Index  int
	Number uint32
	Stage  string
	error  error
}

func (r *RecordError) Error() string {
	return fmt.Sprintf("record %d (number %d): %s: %v", r.Index, r.Number, r.Stage, r.error)
}

func (r *RecordError) Unwrap() error {
	return r.error
}

const (
	stageRecordHeader = "record header"
	stageShapeType    = "shape type"
	stageGeometry     = "geometry"
)
