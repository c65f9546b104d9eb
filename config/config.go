package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/storage"
	"gopkg.in/yaml.v2"
)

const (
	StrategyLines = "lines"
	StrategyUnion = "union"
)

// Unit describes one planning unit.
type Unit struct {
	Name   string             `yaml:"name"`
	AOI    storage.Descriptor `yaml:"aoi"`
	Input  storage.Descriptor `yaml:"input"`
	Output storage.Descriptor `yaml:"output"`
}

// Config holds every setting of a stitcher run.
type Config struct {
	Precision                       int     `yaml:"precision"`
	CompareTopologicalEquality      bool    `yaml:"compareTopologicalEquality"`
	WaitForUserInputAfterCompletion bool    `yaml:"waitForUserInputAfterCompletion"`
	Strategy                        string  `yaml:"strategy"`
	SnapTolerance                   float64 `yaml:"snapTolerance"`
	SnapToleranceMeters             float64 `yaml:"snapToleranceMeters"`
	SnapSearchMargin                float64 `yaml:"snapSearchMargin"`
	MinPartArea                     float64 `yaml:"minPartArea"`
	SliverArea                      float64 `yaml:"sliverArea"`
	Workers                         int     `yaml:"workers"`

	PostGISDSN  string `yaml:"postgisDSN"`
	PostGISSRID int    `yaml:"postgisSRID"`

	PU1 Unit `yaml:"pu1"`
	PU2 Unit `yaml:"pu2"`
}

func defaults() *Config {
	return &Config{
		Strategy:         StrategyLines,
		SnapTolerance:    1e-3,
		SnapSearchMargin: 17,
		PU1:              Unit{Name: "PU1"},
		PU2:              Unit{Name: "PU2"},
	}
}

// Load reads the YAML file at path, applies STITCHER_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Precision = getEnvAsInt("STITCHER_PRECISION", c.Precision)
	c.CompareTopologicalEquality = getEnvAsBool("STITCHER_COMPARE_TOPOLOGICAL_EQUALITY", c.CompareTopologicalEquality)
	c.WaitForUserInputAfterCompletion = getEnvAsBool("STITCHER_WAIT_FOR_USER_INPUT", c.WaitForUserInputAfterCompletion)
	c.Strategy = getEnv("STITCHER_STRATEGY", c.Strategy)
	c.SnapTolerance = getEnvAsFloat("STITCHER_SNAP_TOLERANCE", c.SnapTolerance)
	c.SnapToleranceMeters = getEnvAsFloat("STITCHER_SNAP_TOLERANCE_METERS", c.SnapToleranceMeters)
	c.SnapSearchMargin = getEnvAsFloat("STITCHER_SNAP_SEARCH_MARGIN", c.SnapSearchMargin)
	c.MinPartArea = getEnvAsFloat("STITCHER_MIN_PART_AREA", c.MinPartArea)
	c.SliverArea = getEnvAsFloat("STITCHER_SLIVER_AREA", c.SliverArea)
	c.Workers = getEnvAsInt("STITCHER_WORKERS", c.Workers)
	c.PostGISDSN = getEnv("STITCHER_POSTGIS_DSN", c.PostGISDSN)
	c.PostGISSRID = getEnvAsInt("STITCHER_POSTGIS_SRID", c.PostGISSRID)
}

// EffectiveSnapTolerance is the snap tolerance in data units. A tolerance
// given in meters wins and is converted for WGS84 coordinates.
func (c *Config) EffectiveSnapTolerance() float64 {
	if c.SnapToleranceMeters > 0 {
		return geometry.DegreesFromMeters(c.SnapToleranceMeters)
	}
	return c.SnapTolerance
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Precision < 0 {
		add("precision must not be negative, got %d", c.Precision)
	}
	switch c.Strategy {
	case StrategyLines, StrategyUnion:
	default:
		add("strategy must be %q or %q, got %q", StrategyLines, StrategyUnion, c.Strategy)
	}
	for name, v := range map[string]float64{
		"snapTolerance":       c.SnapTolerance,
		"snapToleranceMeters": c.SnapToleranceMeters,
		"snapSearchMargin":    c.SnapSearchMargin,
		"minPartArea":         c.MinPartArea,
		"sliverArea":          c.SliverArea,
	} {
		if v < 0 {
			add("%s must not be negative, got %v", name, v)
		}
	}

	for key, unit := range map[string]Unit{"pu1": c.PU1, "pu2": c.PU2} {
		for field, d := range map[string]storage.Descriptor{"aoi": unit.AOI, "input": unit.Input, "output": unit.Output} {
			if d.FileName == "" {
				add("%s.%s.fileName is required", key, field)
				continue
			}
			driver, err := d.ResolveDriver()
			if err != nil {
				add("%s.%s: %v", key, field, err)
				continue
			}
			if field != "output" && driver != storage.DriverShapefile && driver != storage.DriverGeoJSON {
				add("%s.%s: driver %s cannot be read", key, field, driver)
			}
			if driver == storage.DriverPostGIS && c.PostGISDSN == "" {
				add("%s.%s: postgis output requires postgisDSN", key, field)
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &Error{Problems: problems}
}

// Error lists every problem found in a configuration.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
