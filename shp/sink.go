package shp

import "io"

// Sink receives the decoded content of one file, in file order. OnError is
// called once when decoding stops on a malformed or unreadable file; a
// record that failed to decode is never passed to OnRecord.
type Sink interface {
	OnHeader(h *FileHeader) error
	OnRecord(r *Record) error
	OnError(err error)
}

// Decode reads a whole shapefile from r into sink. Errors returned by the
// sink stop decoding and are returned as is, without calling OnError.
func Decode(r io.Reader, sink Sink) error {
	reader := NewReader(r)

	h, err := reader.Header()

	if err != nil {
		sink.OnError(err)
		return err
	}

	if err = sink.OnHeader(h); err != nil {
		return err
	}

	for rec, err := range reader.All() {
		if err != nil {
			sink.OnError(err)
			return err
		}

		if err = sink.OnRecord(rec); err != nil {
			return err
		}
	}

	return nil
}
