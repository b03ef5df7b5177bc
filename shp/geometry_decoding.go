package shp

const (
	countBytes      = 4
	partIndexBytes  = 4
	pointBytes      = 16
	rangeBytes      = 16
	coordinateBytes = 8
)

// geometryDecoder decodes one record body and keeps track of how much of
// the declared content length has been consumed. The shape type tag is
// already consumed when a decoder is created.
type geometryDecoder struct {
	binary    *shpBinaryReader
	shapeType ShapeType
	start     int64
	declared  int64
}

func newGeometryDecoder(r *shpBinaryReader, shapeType ShapeType, contentLengthWords uint32) *geometryDecoder {
	return &geometryDecoder{
		binary:    r,
		shapeType: shapeType,
		start:     r.consumed - shapeTypeTagBytes,
		declared:  wordsToBytes(contentLengthWords),
	}
}

func (g *geometryDecoder) consumed() int64 {
	return g.binary.consumed - g.start
}

// exhausted is true when the declared content is used up. Measures are
// optional in Z and M records and simply left out when that happens.
func (g *geometryDecoder) exhausted() bool {
	return g.consumed() >= g.declared
}

func (g *geometryDecoder) mismatch(computed int64) error {
	return &ContentLengthMismatchError{
		ShapeType: g.shapeType,
		Declared:  g.declared,
		Computed:  computed,
	}
}

func (g *geometryDecoder) verify() error {
	if g.consumed() != g.declared {
		return g.mismatch(g.consumed())
	}

	return nil
}

// reserve fails early when the counts just read cannot fit into the record.
func (g *geometryDecoder) reserve(n int64) error {
	if g.consumed()+n > g.declared {
		return g.mismatch(g.consumed() + n)
	}

	return nil
}

func (g *geometryDecoder) decode() (Geometry, error) {
	hasM := g.shapeType.HasM()
	hasZ := g.shapeType.HasZ()

	switch g.shapeType.Kind() {
	case KindPoint:
		p, err := g.readPoint(hasM, hasZ)

		if err != nil {
			return nil, err
		}

		return p, nil
	case KindMultiPoint:
		mp, err := g.readMultiPoint(hasM, hasZ)

		if err != nil {
			return nil, err
		}

		return mp, nil
	case KindPolyLine:
		box, parts, points, err := g.readPartsAndPoints(hasM, hasZ)

		if err != nil {
			return nil, err
		}

		return &PolyLine{
			Box:    box,
			Parts:  parts,
			Points: points,
		}, nil
	case KindPolygon:
		box, parts, points, err := g.readPartsAndPoints(hasM, hasZ)

		if err != nil {
			return nil, err
		}

		return &Polygon{
			Box:    box,
			Parts:  parts,
			Points: points,
		}, nil
	}

	if g.shapeType == TypeMultiPatch {
		// Not decoded, but skipped so the next record header lines up.
		if g.exhausted() {
			return nil, g.verify()
		}

		return nil, g.binary.skip(g.declared - g.consumed())
	}

	return nil, g.verify()
}

func (g *geometryDecoder) readXY() (Point, error) {
	x, err := g.binary.readDouble()

	if err != nil {
		return Point{}, err
	}

	y, err := g.binary.readDouble()

	if err != nil {
		return Point{}, err
	}

	return Point{X: x, Y: y}, nil
}

func (g *geometryDecoder) readPoint(hasM bool, hasZ bool) (*Point, error) {
	p, err := g.readXY()

	if err != nil {
		return nil, err
	}

	if hasZ {
		if p.Z, err = g.binary.readDouble(); err != nil {
			return nil, err
		}
	}

	if hasM && !g.exhausted() {
		if p.M, err = g.binary.readDouble(); err != nil {
			return nil, err
		}
	}

	if err = g.verify(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (g *geometryDecoder) readPoints(count uint32) ([]Point, error) {
	points := make([]Point, count)

	for i := range points {
		p, err := g.readXY()

		if err != nil {
			return nil, err
		}

		points[i] = p
	}

	return points, nil
}

func (g *geometryDecoder) readMultiPoint(hasM bool, hasZ bool) (*MultiPoint, error) {
	// Record boxes are X/Y only, the Z and M ranges follow the points.
	box, err := g.binary.readBoundingBox(false, false)

	if err != nil {
		return nil, err
	}

	count, err := g.binary.readInt(intLittle)

	if err != nil {
		return nil, err
	}

	if err = g.reserve(int64(count) * pointBytes); err != nil {
		return nil, err
	}

	points, err := g.readPoints(count)

	if err != nil {
		return nil, err
	}

	if err = g.readRanges(&box, points, hasM, hasZ); err != nil {
		return nil, err
	}

	if err = g.verify(); err != nil {
		return nil, err
	}

	return &MultiPoint{
		Box:    box,
		Points: points,
	}, nil
}

func (g *geometryDecoder) readPartsAndPoints(hasM bool, hasZ bool) (BoundingBox, []Part, []Point, error) {
	box, err := g.binary.readBoundingBox(false, false)

	if err != nil {
		return BoundingBox{}, nil, nil, err
	}

	numParts, err := g.binary.readInt(intLittle)

	if err != nil {
		return BoundingBox{}, nil, nil, err
	}

	numPoints, err := g.binary.readInt(intLittle)

	if err != nil {
		return BoundingBox{}, nil, nil, err
	}

	if err = g.reserve(int64(numParts)*partIndexBytes + int64(numPoints)*pointBytes); err != nil {
		return BoundingBox{}, nil, nil, err
	}

	starts := make([]int, numParts)

	for i := range starts {
		v, err := g.binary.readInt(intLittle)

		if err != nil {
			return BoundingBox{}, nil, nil, err
		}

		starts[i] = int(v)
	}

	if err = checkPartOrdering(starts, int(numPoints)); err != nil {
		return BoundingBox{}, nil, nil, err
	}

	points, err := g.readPoints(numPoints)

	if err != nil {
		return BoundingBox{}, nil, nil, err
	}

	parts := assignParts(starts, points)

	if err = g.readRanges(&box, points, hasM, hasZ); err != nil {
		return BoundingBox{}, nil, nil, err
	}

	if err = g.verify(); err != nil {
		return BoundingBox{}, nil, nil, err
	}

	return box, parts, points, nil
}

// readRanges reads the trailing Z and M blocks and applies them to the box
// and to every point.
func (g *geometryDecoder) readRanges(box *BoundingBox, points []Point, hasM bool, hasZ bool) error {
	if hasZ {
		err := g.readRange(&box.ZMin, &box.ZMax, points, func(p *Point, v float64) {
			p.Z = v
		})

		if err != nil {
			return err
		}
	}

	if !hasM || g.exhausted() {
		return nil
	}

	return g.readRange(&box.MMin, &box.MMax, points, func(p *Point, v float64) {
		p.M = v
	})
}

func (g *geometryDecoder) readRange(lo *float64, hi *float64, points []Point, apply func(p *Point, v float64)) error {
	if err := g.reserve(rangeBytes + int64(len(points))*coordinateBytes); err != nil {
		return err
	}

	var err error

	if *lo, err = g.binary.readDouble(); err != nil {
		return err
	}

	if *hi, err = g.binary.readDouble(); err != nil {
		return err
	}

	for i := range points {
		v, err := g.binary.readDouble()

		if err != nil {
			return err
		}

		apply(&points[i], v)
	}

	return nil
}

func checkPartOrdering(starts []int, numPoints int) error {
	if len(starts) == 0 {
		if numPoints > 0 {
			return &InvalidPartOrderingError{Part: 0, Start: -1, NumPoints: numPoints}
		}

		return nil
	}

	if starts[0] != 0 {
		return &InvalidPartOrderingError{Part: 0, Start: starts[0], NumPoints: numPoints}
	}

	for i := 1; i < len(starts); i++ {
		if starts[i] < starts[i-1] || starts[i] > numPoints {
			return &InvalidPartOrderingError{
				Part:      i,
				Start:     starts[i],
				Previous:  starts[i-1],
				NumPoints: numPoints,
			}
		}
	}

	return nil
}

// assignParts hands every point to the part with the greatest start index
// not beyond the point's position. starts must already be ordered.
func assignParts(starts []int, points []Point) []Part {
	parts := make([]Part, len(starts))

	for i, start := range starts {
		parts[i] = Part{
			Start:  start,
			Points: points[start:start],
		}
	}

	cursor := 0

	for i := range points {
		for cursor+1 < len(starts) && starts[cursor+1] <= i {
			cursor++
		}

		parts[cursor].Points = points[parts[cursor].Start : i+1]
	}

	return parts
}
