// Package storage reads and writes planning-unit geometries.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedDriver is returned for a driver that is unknown or cannot
// serve the requested operation.
var ErrUnsupportedDriver = errors.New("unsupported driver")

// Driver names a storage backend.
type Driver string

const (
	DriverShapefile Driver = "shapefile"
	DriverGeoJSON   Driver = "geojson"
	DriverZip       Driver = "zip"
	DriverPostGIS   Driver = "postgis"
)

// Descriptor names a geometry source or destination.
type Descriptor struct {
	FileName  string `yaml:"fileName"`
	LayerName string `yaml:"layerName"`
	Driver    Driver `yaml:"driver"`
}

func (d Descriptor) String() string {
	if d.LayerName == "" {
		return d.FileName
	}
	return d.FileName + ":" + d.LayerName
}

// ResolveDriver returns the explicit driver or infers it from the file
// extension.
func (d Descriptor) ResolveDriver() (Driver, error) {
	switch d.Driver {
	case DriverShapefile, DriverGeoJSON, DriverZip, DriverPostGIS:
		return d.Driver, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, d.Driver)
	}

	switch strings.ToLower(filepath.Ext(d.FileName)) {
	case ".shp":
		return DriverShapefile, nil
	case ".geojson", ".json":
		return DriverGeoJSON, nil
	case ".zip":
		return DriverZip, nil
	}
	return "", fmt.Errorf("%w: cannot infer driver for %q", ErrUnsupportedDriver, d.FileName)
}

// layer returns the layer name, falling back to the file's base name.
func (d Descriptor) layer() string {
	if d.LayerName != "" {
		return d.LayerName
	}
	base := filepath.Base(d.FileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
