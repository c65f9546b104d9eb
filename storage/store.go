package storage

import (
	"fmt"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
)

// Store loads and saves geometry collections for every supported driver.
type Store struct {
	logger   *zap.Logger
	observer pipeline.Observer
	postgis  *PostGIS
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(observer pipeline.Observer) Option {
	return func(s *Store) {
		s.observer = observer
	}
}

// WithPostGIS enables the postgis driver for outputs.
func WithPostGIS(postgis *PostGIS) Option {
	return func(s *Store) {
		s.postgis = postgis
	}
}

// NewStore returns a store that logs nothing unless WithLogger is given.
func NewStore(opts ...Option) *Store {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a deferred pipeline producing the polygons of d rounded to pm.
// The source is read when the pipeline executes.
func (s *Store) Load(dataName string, d Descriptor, pm geometry.PrecisionModel) *pipeline.Processor[*geos.Geom] {
	return pipeline.Load(dataName, "Load", func(pipeline.ProgressFunc) ([]*geos.Geom, error) {
		geoms, err := s.Read(d)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", d, err)
		}
		s.logger.Info("Loaded geometries",
			zap.String("data", dataName),
			zap.String("source", d.String()),
			zap.Int("count", len(geoms)))
		return geoms, nil
	}, pipeline.WithLogger(s.logger), pipeline.WithObserver(s.observer)).
		Chain("Flatten", func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
			return geometry.Flatten(items, geos.TypeIDPolygon), nil
		}).
		Chain("Precision", func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
			return pm.ApplyAll(items), nil
		})
}

// Read returns the records of d as stored, without flattening or rounding.
func (s *Store) Read(d Descriptor) ([]*geos.Geom, error) {
	driver, err := d.ResolveDriver()
	if err != nil {
		return nil, err
	}
	switch driver {
	case DriverShapefile:
		return ReadShapefile(d.FileName)
	case DriverGeoJSON:
		return ReadGeoJSON(d.FileName)
	}
	return nil, fmt.Errorf("%w: %s cannot be read", ErrUnsupportedDriver, driver)
}

// Save writes geoms rounded to pm to d.
func (s *Store) Save(geoms []*geos.Geom, d Descriptor, pm geometry.PrecisionModel) error {
	driver, err := d.ResolveDriver()
	if err != nil {
		return fmt.Errorf("save %s: %w", d, err)
	}

	precise := pm.ApplyAll(geoms)
	switch driver {
	case DriverShapefile:
		err = WriteShapefile(d.FileName, precise)
	case DriverGeoJSON:
		err = WriteGeoJSON(d.FileName, d.layer(), precise)
	case DriverZip:
		err = WriteZip(d.FileName, d.layer(), precise)
	case DriverPostGIS:
		if s.postgis == nil {
			return fmt.Errorf("save %s: postgis output without a connection", d)
		}
		table := d.LayerName
		if table == "" {
			table = d.FileName
		}
		err = s.postgis.Save(table, precise)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", d, err)
	}

	s.logger.Info("Saved geometries",
		zap.String("destination", d.String()),
		zap.String("driver", string(driver)),
		zap.Int("count", len(precise)))
	return nil
}
