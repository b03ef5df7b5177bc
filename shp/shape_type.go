package shp

import "fmt"

type ShapeType int32

const (
	TypeNullShape   ShapeType = 0
	TypePoint       ShapeType = 1
	TypePolyLine    ShapeType = 3
	TypePolygon     ShapeType = 5
	TypeMultiPoint  ShapeType = 8
	TypePointZ      ShapeType = 11
	TypePolyLineZ   ShapeType = 13
	TypePolygonZ    ShapeType = 15
	TypeMultiPointZ ShapeType = 18
	TypePointM      ShapeType = 21
	TypePolyLineM   ShapeType = 23
	TypePolygonM    ShapeType = 25
	TypeMultiPointM ShapeType = 28
	TypeMultiPatch  ShapeType = 31
)

// GeometryKind is the base geometry a shape type decodes to, without its
// Z/M flavour.
type GeometryKind uint8

const (
	KindNone GeometryKind = iota
	KindPoint
	KindMultiPoint
	KindPolyLine
	KindPolygon
)

type shapeTypeInfo struct {
	name string
	kind GeometryKind
	hasM bool
	hasZ bool
}

var shapeTypes = map[ShapeType]shapeTypeInfo{
	TypeNullShape:   {"NullShape", KindNone, false, false},
	TypePoint:       {"Point", KindPoint, false, false},
	TypePolyLine:    {"PolyLine", KindPolyLine, false, false},
	TypePolygon:     {"Polygon", KindPolygon, false, false},
	TypeMultiPoint:  {"MultiPoint", KindMultiPoint, false, false},
	TypePointZ:      {"PointZ", KindPoint, true, true},
	TypePolyLineZ:   {"PolyLineZ", KindPolyLine, true, true},
	TypePolygonZ:    {"PolygonZ", KindPolygon, true, true},
	TypeMultiPointZ: {"MultiPointZ", KindMultiPoint, true, true},
	TypePointM:      {"PointM", KindPoint, true, false},
	TypePolyLineM:   {"PolyLineM", KindPolyLine, true, false},
	TypePolygonM:    {"PolygonM", KindPolygon, true, false},
	TypeMultiPointM: {"MultiPointM", KindMultiPoint, true, false},
	TypeMultiPatch:  {"MultiPatch", KindNone, true, true},
}

func ShapeTypeFromCode(code uint32) (ShapeType, error) {
	t := ShapeType(int32(code))

	if !t.Valid() {
		return 0, &UnknownShapeTypeError{Code: code}
	}

	return t, nil
}

// ShapeTypes lists the closed set of shape types in code order.
func ShapeTypes() []ShapeType {
	return []ShapeType{
		TypeNullShape, TypePoint, TypePolyLine, TypePolygon, TypeMultiPoint,
		TypePointZ, TypePolyLineZ, TypePolygonZ, TypeMultiPointZ,
		TypePointM, TypePolyLineM, TypePolygonM, TypeMultiPointM,
		TypeMultiPatch,
	}
}

func (t ShapeType) Valid() bool {
	_, ok := shapeTypes[t]
	return ok
}

func (t ShapeType) Kind() GeometryKind {
	return shapeTypes[t].kind
}

// HasZ reports whether records of this type carry a Z block. Z types always
// allow M as well.
func (t ShapeType) HasZ() bool {
	return shapeTypes[t].hasZ
}

func (t ShapeType) HasM() bool {
	return shapeTypes[t].hasM
}

func (t ShapeType) String() string {
	info, ok := shapeTypes[t]

	if !ok {
		return fmt.Sprintf("ShapeType(%d)", int32(t))
	}

	return info.name
}

func (k GeometryKind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindMultiPoint:
		return "multipoint"
	case KindPolyLine:
		return "polyline"
	case KindPolygon:
		return "polygon"
	default:
		return "none"
	}
}
