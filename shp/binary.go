package shp

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"golang.org/x/exp/constraints"
)

type primitiveKind uint8

const (
	intBig primitiveKind = iota
	intLittle
	double
)

// Anything below this is the format's "no data" marker.
const noDataThreshold = -1e38

func (k primitiveKind) width() (int, error) {
	switch k {
	case intBig, intLittle:
		return 4, nil
	case double:
		return 8, nil
	default:
		return 0, &UnsupportedTypeError{Kind: k}
	}
}

func wordsToBytes[V constraints.Integer](words V) int64 {
	return int64(words) * 2
}

func bytesToWords[V constraints.Integer](bytes V) int64 {
	return int64(bytes) / 2
}

type shpBinaryReader struct {
	reader   io.Reader
	buffer   [8]byte
	consumed int64
}

func newShpBinaryReader(r io.Reader) *shpBinaryReader {
	return &shpBinaryReader{
		reader: r,
	}
}

func (r *shpBinaryReader) readBuffer(kind primitiveKind) ([]byte, error) {
	width, err := kind.width()

	if err != nil {
		return nil, err
	}

	n, err := io.ReadFull(r.reader, r.buffer[:width])
	r.consumed += int64(n)

	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &TruncatedReadError{
				Wanted: width,
				Got:    n,
				error:  err,
			}
		}

		return nil, err
	}

	return r.buffer[:width], nil
}

func (r *shpBinaryReader) readInt(kind primitiveKind) (uint32, error) {
	if kind != intBig && kind != intLittle {
		return 0, &UnsupportedTypeError{Kind: kind}
	}

	data, err := r.readBuffer(kind)

	if err != nil {
		return 0, err
	}

	if kind == intBig {
		return binary.BigEndian.Uint32(data), nil
	}

	return binary.LittleEndian.Uint32(data), nil
}

// readDouble is always little endian, whatever the surrounding integers use.
func (r *shpBinaryReader) readDouble() (float64, error) {
	data, err := r.readBuffer(double)

	if err != nil {
		return 0, err
	}

	v := math.Float64frombits(binary.LittleEndian.Uint64(data))

	if v < noDataThreshold {
		return 0, nil
	}

	return v, nil
}

func (r *shpBinaryReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}

	skipped, err := io.CopyN(io.Discard, r.reader, n)
	r.consumed += skipped

	if err != nil {
		if errors.Is(err, io.EOF) {
			return &TruncatedReadError{
				Wanted: int(n),
				Got:    int(skipped),
				error:  io.ErrUnexpectedEOF,
			}
		}

		return err
	}

	return nil
}

func (r *shpBinaryReader) readBoundingBox(hasM bool, hasZ bool) (BoundingBox, error) {
	var box BoundingBox

	fields := []*float64{&box.XMin, &box.YMin, &box.XMax, &box.YMax}

	if hasZ {
		fields = append(fields, &box.ZMin, &box.ZMax)
	}

	if hasM {
		fields = append(fields, &box.MMin, &box.MMax)
	}

	for _, f := range fields {
		v, err := r.readDouble()

		if err != nil {
			return BoundingBox{}, err
		}

		*f = v
	}

	return box, nil
}
