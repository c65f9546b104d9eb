package geometry

import (
	"errors"

	"github.com/twpayne/go-geos"
)

// ErrEmptyUnion is returned when there is nothing to union.
var ErrEmptyUnion = errors.New("union of an empty geometry set")

// CascadedUnion unions geometries by recursively halving the input and
// unioning the two halves, which keeps intermediate results small.
func CascadedUnion(geometries []*geos.Geom) (*geos.Geom, error) {
	switch len(geometries) {
	case 0:
		return nil, ErrEmptyUnion
	case 1:
		return geometries[0].UnaryUnion(), nil
	}

	mid := len(geometries) / 2
	left, err := CascadedUnion(geometries[:mid])
	if err != nil {
		return nil, err
	}
	right, err := CascadedUnion(geometries[mid:])
	if err != nil {
		return nil, err
	}

	return left.Union(right), nil
}

// Dissolve unions line work into a minimal network and merges touching
// segments into maximal line strings.
func Dissolve(lines []*geos.Geom) ([]*geos.Geom, error) {
	if len(lines) == 0 {
		return nil, nil
	}
	union, err := CascadedUnion(lines)
	if err != nil {
		return nil, err
	}
	return FlattenOne(union.LineMerge(), geos.TypeIDLineString), nil
}
