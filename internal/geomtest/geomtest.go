// Package geomtest holds fixtures shared by the package tests.
package geomtest

import (
	"testing"

	"github.com/twpayne/go-geos"
)

// Box returns the axis-aligned rectangle [minX,maxX]x[minY,maxY].
func Box(minX, minY, maxX, maxY float64) *geos.Geom {
	return geos.NewPolygon([][][]float64{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}})
}

// Line returns a line string through coords.
func Line(coords ...[]float64) *geos.Geom {
	return geos.NewLineString(coords)
}

// MustWKT parses wkt or fails the test.
func MustWKT(t testing.TB, wkt string) *geos.Geom {
	t.Helper()
	g, err := geos.NewGeomFromWKT(wkt)
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", wkt, err)
	}
	return g
}

// SameArea reports whether a and b cover the same region within tol.
func SameArea(a, b *geos.Geom, tol float64) bool {
	return a.SymDifference(b).Area() <= tol
}
