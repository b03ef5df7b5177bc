package shp

import "encoding/json"

const (
	fileCode = 9994

	// The header is 100 bytes, 50 words.
	headerLengthWords = 50

	// Record number plus content length, 8 bytes.
	recordHeaderLengthWords = 4

	shapeTypeTagBytes = 4
)

type FileHeader struct {
	FileCode uint32
	// FileLength is the total file length in 16-bit words, header included.
	FileLength uint32
	Version    uint32
	ShapeType  ShapeType
	Box        BoundingBox
}

func (h *FileHeader) ByteLength() int64 {
	return wordsToBytes(h.FileLength)
}

func (h *FileHeader) String() string {
	v, _ := json.Marshal(h)

	return string(v)
}

type BoundingBox struct {
	XMin float64
	XMax float64
	YMin float64
	YMax float64
	ZMin float64
	ZMax float64
	MMin float64
	MMax float64
}

type Record struct {
	Number uint32
	// ContentLength is the declared body length in 16-bit words, including
	// the shape type tag.
	ContentLength uint32
	ShapeType     ShapeType
	Geometry      Geometry
}

func (r *Record) StringPretty() string {
	v, _ := json.MarshalIndent(r, "", "  ")

	return string(v)
}

// Geometry is one of *Point, *MultiPoint, *PolyLine or *Polygon.
type Geometry interface {
	Kind() GeometryKind
	Bounds() BoundingBox
}

type Point struct {
	X float64
	Y float64
	Z float64
	M float64
}

func (p *Point) Kind() GeometryKind {
	return KindPoint
}

// Bounds of a single point is the point itself.
func (p *Point) Bounds() BoundingBox {
	return BoundingBox{
		XMin: p.X, XMax: p.X,
		YMin: p.Y, YMax: p.Y,
		ZMin: p.Z, ZMax: p.Z,
		MMin: p.M, MMax: p.M,
	}
}

type MultiPoint struct {
	Box    BoundingBox
	Points []Point
}

func (m *MultiPoint) Kind() GeometryKind {
	return KindMultiPoint
}

func (m *MultiPoint) Bounds() BoundingBox {
	return m.Box
}

// Part is a contiguous run of a PolyLine's or Polygon's points. Points
// shares the backing array of the owning geometry.
type Part struct {
	Start  int
	Points []Point `json:"-"`
}

type PolyLine struct {
	Box    BoundingBox
	Parts  []Part
	Points []Point
}

func (p *PolyLine) Kind() GeometryKind {
	return KindPolyLine
}

func (p *PolyLine) Bounds() BoundingBox {
	return p.Box
}

type Polygon struct {
	Box    BoundingBox
	Parts  []Part
	Points []Point
}

func (p *Polygon) Kind() GeometryKind {
	return KindPolygon
}

func (p *Polygon) Bounds() BoundingBox {
	return p.Box
}

// OpenRings returns the indices of rings whose first and last point differ.
// The decoder does not reject them.
func (p *Polygon) OpenRings() []int {
	open := make([]int, 0)

	for i, part := range p.Parts {
		if len(part.Points) == 0 {
			continue
		}

		first := part.Points[0]
		last := part.Points[len(part.Points)-1]

		if first.X != last.X || first.Y != last.Y || first.Z != last.Z {
			open = append(open, i)
		}
	}

	return open
}
