package shp

import (
	"fmt"
	"strings"
)

func prefixMultilineString(s string, prefix string) string {
	split := strings.Split(s, "\n")
	newString := ""

	for _, part := range split {
		newString += prefix + part + "\n"
	}

	if len(newString) == 0 {
		return ""
	}

	return newString[:len(newString)-1]
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("x[%g, %g] y[%g, %g] z[%g, %g] m[%g, %g]", b.XMin, b.XMax, b.YMin, b.YMax, b.ZMin, b.ZMax, b.MMin, b.MMax)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g %g %g %g)", p.X, p.Y, p.Z, p.M)
}

// String renders the record for humans, one line per part.
func (r *Record) String() string {
	title := fmt.Sprintf("record %d: %v, %d words", r.Number, r.ShapeType, r.ContentLength)

	if r.Geometry == nil {
		return title
	}

	lines := []string{"box: " + r.Geometry.Bounds().String()}

	switch g := r.Geometry.(type) {
	case *Point:
		lines = append(lines, "point: "+g.String())
	case *MultiPoint:
		lines = append(lines, "points: "+formatPoints(g.Points))
	case *PolyLine:
		lines = append(lines, formatParts("line", g.Parts)...)
	case *Polygon:
		lines = append(lines, formatParts("ring", g.Parts)...)
	}

	return title + "\n" + prefixMultilineString(strings.Join(lines, "\n"), "  ")
}

func formatParts(name string, parts []Part) []string {
	lines := make([]string, 0, len(parts))

	for i, part := range parts {
		lines = append(lines, fmt.Sprintf("%s %d (start %d): %s", name, i, part.Start, formatPoints(part.Points)))
	}

	return lines
}

func formatPoints(points []Point) string {
	s := make([]string, len(points))

	for i, p := range points {
		s[i] = p.String()
	}

	return strings.Join(s, " ")
}
