package spatialindex

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/twpayne/go-geos"
)

// Envelope is an axis-aligned bounding box.
type Envelope struct {
	MinX, MinY, MaxX, MaxY float64
}

// EnvelopeOf returns the bounding box of g.
func EnvelopeOf(g *geos.Geom) Envelope {
	bounds := g.Bounds()
	return Envelope{MinX: bounds.MinX, MinY: bounds.MinY, MaxX: bounds.MaxX, MaxY: bounds.MaxY}
}

// PointEnvelope returns the degenerate envelope of a single coordinate.
func PointEnvelope(x, y float64) Envelope {
	return Envelope{MinX: x, MinY: y, MaxX: x, MaxY: y}
}

// ExpandBy grows the envelope by d on every side.
func (e Envelope) ExpandBy(d float64) Envelope {
	return Envelope{MinX: e.MinX - d, MinY: e.MinY - d, MaxX: e.MaxX + d, MaxY: e.MaxY + d}
}

// Center returns the midpoint of the envelope.
func (e Envelope) Center() (x, y float64) {
	return (e.MinX + e.MaxX) / 2, (e.MinY + e.MaxY) / 2
}

// rect converts e into an rtreego rectangle. rtreego treats touching
// rectangles as disjoint and point rectangles as empty, so every side is
// pushed out by one ulp to give closed-interval semantics.
func (e Envelope) rect() rtreego.Rect {
	minPoint := rtreego.Point{math.Nextafter(e.MinX, math.Inf(-1)), math.Nextafter(e.MinY, math.Inf(-1))}
	maxPoint := rtreego.Point{math.Nextafter(e.MaxX, math.Inf(1)), math.Nextafter(e.MaxY, math.Inf(1))}
	// NewRectFromPoints only fails on points of different dimensions.
	r, _ := rtreego.NewRectFromPoints(minPoint, maxPoint)
	return r
}
