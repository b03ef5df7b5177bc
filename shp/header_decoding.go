package shp

const reservedHeaderInts = 5

func (r *shpBinaryReader) readHeader() (*FileHeader, error) {
	code, err := r.readInt(intBig)

	if err != nil {
		return nil, err
	}

	if code != fileCode {
		return nil, &InvalidFileCodeError{FileCode: code}
	}

	// Bytes 4-23 are unused.
	for i := 0; i < reservedHeaderInts; i++ {
		if _, err = r.readInt(intBig); err != nil {
			return nil, err
		}
	}

	length, err := r.readInt(intBig)

	if err != nil {
		return nil, err
	}

	version, err := r.readInt(intLittle)

	if err != nil {
		return nil, err
	}

	shapeTypeCode, err := r.readInt(intLittle)

	if err != nil {
		return nil, err
	}

	shapeType, err := ShapeTypeFromCode(shapeTypeCode)

	if err != nil {
		return nil, err
	}

	// The file header always carries all four ranges.
	box, err := r.readBoundingBox(true, true)

	if err != nil {
		return nil, err
	}

	return &FileHeader{
		FileCode:   code,
		FileLength: length,
		Version:    version,
		ShapeType:  shapeType,
		Box:        box,
	}, nil
}
