package storage

import (
	"fmt"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/jonas-p/go-shp"
	"github.com/twpayne/go-geos"
)

// ReadShapefile returns the polygons and lines stored in a shapefile. Polygon
// rings are classified by orientation: clockwise rings are shells and
// counter-clockwise rings are holes of the shell that contains them.
func ReadShapefile(path string) ([]*geos.Geom, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile: %w", err)
	}
	defer reader.Close()

	var geoms []*geos.Geom
	for reader.Next() {
		n, shape := reader.Shape()
		switch s := shape.(type) {
		case *shp.Polygon:
			geoms = append(geoms, polygonFromRings(splitParts(s.Parts, s.Points))...)
		case *shp.PolygonZ:
			geoms = append(geoms, polygonFromRings(splitParts(s.Parts, s.Points))...)
		case *shp.PolyLine:
			for _, part := range splitParts(s.Parts, s.Points) {
				if len(part) >= 2 {
					geoms = append(geoms, geos.NewLineString(part))
				}
			}
		case *shp.Null:
		default:
			return nil, fmt.Errorf("unsupported shape %T at record %d", shape, n)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shapefile: %w", err)
	}
	return geoms, nil
}

func splitParts(parts []int32, points []shp.Point) [][][]float64 {
	rings := make([][][]float64, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		ring := make([][]float64, 0, end-start)
		for _, p := range points[start:end] {
			ring = append(ring, []float64{p.X, p.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

func polygonFromRings(rings [][][]float64) []*geos.Geom {
	type shell struct {
		rings   [][][]float64
		polygon *geos.PrepGeom
		geom    *geos.Geom
	}

	var shells []*shell
	var holes [][][]float64
	for _, ring := range rings {
		if len(ring) < 4 {
			continue
		}
		if !geos.NewCoordSeqFromCoords(ring).IsCCW() {
			shells = append(shells, &shell{rings: [][][]float64{ring}})
		} else {
			holes = append(holes, ring)
		}
	}

	// A file written counter-clockwise throughout has no shells by the rule
	// above; treat every ring as a shell then.
	if len(shells) == 0 {
		for _, hole := range holes {
			shells = append(shells, &shell{rings: [][][]float64{hole}})
		}
		holes = nil
	}

	for _, s := range shells {
		s.geom = geos.NewPolygon(s.rings)
		s.polygon = s.geom.Prepare()
	}
	for _, hole := range holes {
		point := geos.NewPoint(hole[0])
		for _, s := range shells {
			if s.polygon.Intersects(point) {
				s.rings = append(s.rings, hole)
				break
			}
		}
	}

	polygons := make([]*geos.Geom, 0, len(shells))
	for _, s := range shells {
		polygons = append(polygons, geos.NewPolygon(s.rings))
	}
	return polygons
}

// shpRings returns the rings of polygon in shapefile order: a clockwise shell
// followed by counter-clockwise holes.
func shpRings(polygon *geos.Geom) [][]shp.Point {
	toPoints := func(ring *geos.Geom, ccw bool) []shp.Point {
		if ring.CoordSeq().IsCCW() != ccw {
			ring = ring.Reverse()
		}
		coords := geometry.Coords(ring)
		points := make([]shp.Point, 0, len(coords))
		for _, c := range coords {
			points = append(points, shp.Point{X: c[0], Y: c[1]})
		}
		return points
	}

	parts := [][]shp.Point{toPoints(polygon.ExteriorRing(), false)}
	for i := range polygon.NumInteriorRings() {
		parts = append(parts, toPoints(polygon.InteriorRing(i), true))
	}
	return parts
}

// WriteShapefile writes polygons to path with a numeric ID attribute per
// record.
func WriteShapefile(path string, polygons []*geos.Geom) error {
	shape, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return fmt.Errorf("failed to create shapefile: %w", err)
	}
	defer shape.Close()

	if err := shape.SetFields([]shp.Field{shp.NumberField("ID", 10)}); err != nil {
		return fmt.Errorf("failed to set fields: %w", err)
	}

	for _, polygon := range polygons {
		if polygon.TypeID() != geos.TypeIDPolygon || polygon.IsEmpty() {
			continue
		}
		record := shape.Write((*shp.Polygon)(shp.NewPolyLine(shpRings(polygon))))
		if err := shape.WriteAttribute(int(record), 0, int(record)+1); err != nil {
			return fmt.Errorf("failed to write attributes for record %d: %w", record, err)
		}
	}
	return nil
}
