package storage

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twpayne/go-geos"
)

// WriteZip bundles the GeoJSON and shapefile renditions of polygons into a
// single archive at path.
func WriteZip(path, layer string, polygons []*geos.Geom) error {
	tempDir, err := os.MkdirTemp("", "stitcher_")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	shapefilePath := filepath.Join(tempDir, layer+".shp")
	if err := WriteShapefile(shapefilePath, polygons); err != nil {
		return err
	}
	geojsonData, err := EncodeGeoJSON(layer, polygons)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)
	if err := addToZip(zipWriter, layer+".geojson", geojsonData); err != nil {
		return err
	}
	// go-shp names the attribute table "<layer>dbf"; both spellings are
	// accepted and archived as "<layer>.dbf".
	components := []struct{ file, name string }{
		{layer + ".shp", layer + ".shp"},
		{layer + ".shx", layer + ".shx"},
		{layer + ".dbf", layer + ".dbf"},
		{layer + "dbf", layer + ".dbf"},
	}
	for _, c := range components {
		content, err := os.ReadFile(filepath.Join(tempDir, c.file))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read shapefile component %s: %w", c.file, err)
		}
		if err := addToZip(zipWriter, c.name, content); err != nil {
			return err
		}
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to close zip writer: %w", err)
	}
	return out.Close()
}

func addToZip(zipWriter *zip.Writer, name string, content []byte) error {
	w, err := zipWriter.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s in zip: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write %s to zip: %w", name, err)
	}
	return nil
}
