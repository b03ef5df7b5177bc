package shp

import (
	"io"
	"iter"
)

// Reader decodes a shapefile stream front to back. It is not safe for
// concurrent use; decode several files by creating one Reader per file.
type Reader interface {
	// Header decodes the file header on first use and returns it.
	Header() (*FileHeader, error)
	// ReadRecord returns the next record, or io.EOF once the declared file
	// length has been consumed. Errors are terminal and returned again on
	// every later call.
	ReadRecord() (*Record, error)
	// All yields the remaining records. It stops after the first error.
	All() iter.Seq2[*Record, error]
}

type shpReaderImpl struct {
	binary *shpBinaryReader
	header *FileHeader

	// Words consumed so far, header included.
	consumedWords int64
	index         int
	err           error
}

func NewReader(reader io.Reader) Reader {
	return &shpReaderImpl{
		binary: newShpBinaryReader(reader),
	}
}

func (s *shpReaderImpl) Header() (*FileHeader, error) {
	if s.header != nil {
		return s.header, nil
	}

	if s.err != nil {
		return nil, s.err
	}

	h, err := s.binary.readHeader()

	if err != nil {
		s.err = &HeaderError{error: err}
		return nil, s.err
	}

	s.header = h
	s.consumedWords = headerLengthWords

	return h, nil
}

func (s *shpReaderImpl) ReadRecord() (*Record, error) {
	h, err := s.Header()

	if err != nil {
		return nil, err
	}

	if s.err != nil {
		return nil, s.err
	}

	if s.consumedWords >= int64(h.FileLength) {
		return nil, io.EOF
	}

	s.index++

	rec, err := s.readRecord(s.index)

	if err != nil {
		s.err = err
		return nil, err
	}

	s.consumedWords += int64(rec.ContentLength) + recordHeaderLengthWords

	return rec, nil
}

func (s *shpReaderImpl) All() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for {
			rec, err := s.ReadRecord()

			if err == io.EOF {
				return
			}

			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}
