package geometry

import "github.com/twpayne/go-geos"

// InteriorsOverlap reports whether the interiors of a and b intersect in a
// two-dimensional region, i.e. the first entry of their DE-9IM matrix is 2.
func InteriorsOverlap(a, b *geos.Geom) bool {
	im := a.Relate(b)
	return len(im) > 0 && im[0] == '2'
}

// IntersectionArea returns the area shared by a and b.
func IntersectionArea(a, b *geos.Geom) float64 {
	return a.Intersection(b).Area()
}
