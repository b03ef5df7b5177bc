package shp

func (s *shpReaderImpl) readRecord(index int) (*Record, error) {
	number, err := s.binary.readInt(intBig)

	if err != nil {
		return nil, &RecordError{Index: index, Stage: stageRecordHeader, error: err}
	}

	contentLength, err := s.binary.readInt(intBig)

	if err != nil {
		return nil, &RecordError{Index: index, Number: number, Stage: stageRecordHeader, error: err}
	}

	code, err := s.binary.readInt(intLittle)

	if err != nil {
		return nil, &RecordError{Index: index, Number: number, Stage: stageShapeType, error: err}
	}

	shapeType, err := ShapeTypeFromCode(code)

	if err != nil {
		return nil, &RecordError{Index: index, Number: number, Stage: stageShapeType, error: err}
	}

	// Files may mix shape types; the header's type is not enforced here.
	geometry, err := newGeometryDecoder(s.binary, shapeType, contentLength).decode()

	if err != nil {
		return nil, &RecordError{Index: index, Number: number, Stage: stageGeometry, error: err}
	}

	return &Record{
		Number:        number,
		ContentLength: contentLength,
		ShapeType:     shapeType,
		Geometry:      geometry,
	}, nil
}
