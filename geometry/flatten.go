package geometry

import "github.com/twpayne/go-geos"

// Flatten decomposes multi-part geometries and collections into their
// single parts and keeps only the non-empty parts of type typeID. Linear
// rings are returned as line strings when line strings are requested.
func Flatten(geoms []*geos.Geom, typeID geos.TypeID) []*geos.Geom {
	var out []*geos.Geom
	for _, g := range geoms {
		out = appendFlattened(out, g, typeID)
	}
	return out
}

// FlattenOne is Flatten for a single geometry.
func FlattenOne(g *geos.Geom, typeID geos.TypeID) []*geos.Geom {
	return appendFlattened(nil, g, typeID)
}

func appendFlattened(out []*geos.Geom, g *geos.Geom, typeID geos.TypeID) []*geos.Geom {
	if g == nil || g.IsEmpty() {
		return out
	}

	switch t := g.TypeID(); {
	case t == typeID:
		return append(out, g)
	case t == geos.TypeIDLinearRing && typeID == geos.TypeIDLineString:
		return append(out, geos.NewLineString(coords(g)))
	case isCollection(t):
		for i := range g.NumGeometries() {
			out = appendFlattened(out, g.Geometry(i).Clone(), typeID)
		}
	}
	return out
}

func isCollection(t geos.TypeID) bool {
	switch t {
	case geos.TypeIDMultiPoint, geos.TypeIDMultiLineString, geos.TypeIDMultiPolygon, geos.TypeIDGeometryCollection:
		return true
	}
	return false
}

func coords(g *geos.Geom) [][]float64 {
	seq := g.CoordSeq()
	out := make([][]float64, 0, seq.Size())
	for i := range seq.Size() {
		out = append(out, []float64{seq.X(i), seq.Y(i)})
	}
	return out
}

// Coords returns a freshly allocated copy of the coordinates of a point,
// line string or linear ring.
func Coords(g *geos.Geom) [][]float64 {
	return coords(g)
}

// Collect wraps geoms into one multi geometry of the given collection type.
func Collect(typeID geos.TypeID, geoms []*geos.Geom) *geos.Geom {
	clones := make([]*geos.Geom, 0, len(geoms))
	for _, g := range geoms {
		clones = append(clones, g.Clone())
	}
	return geos.NewCollection(typeID, clones)
}

// TotalArea sums the area of every geometry.
func TotalArea(geoms []*geos.Geom) float64 {
	var area float64
	for _, g := range geoms {
		area += g.Area()
	}
	return area
}
