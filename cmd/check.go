package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/bsaid97/go-polygon-stitcher/config"
	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/storage"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geos"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report empty and invalid geometries of every configured source",
	Long: `Check reads the areas of interest and the inputs of both planning units
and lists every record that is empty or invalid, with the reason GEOS gives.

The stitcher repairs invalid polygons with a zero-distance buffer, which can
change their shape. Check exposes them before that happens.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		findings, err := checkSources(storage.NewStore(), sources(cfg))
		if err != nil {
			return err
		}
		printFindings(os.Stdout, findings)
		if n := countInvalid(findings); n > 0 {
			return fmt.Errorf("%d invalid geometries found", n)
		}
		return nil
	},
}

type source struct {
	name string
	desc storage.Descriptor
}

func sources(cfg *config.Config) []source {
	return []source{
		{cfg.PU1.Name + " AOI", cfg.PU1.AOI},
		{cfg.PU1.Name, cfg.PU1.Input},
		{cfg.PU2.Name + " AOI", cfg.PU2.AOI},
		{cfg.PU2.Name, cfg.PU2.Input},
	}
}

type reader interface {
	Read(d storage.Descriptor) ([]*geos.Geom, error)
}

type finding struct {
	source  source
	records int
	errors  []geometry.Error
}

func checkSources(r reader, srcs []source) ([]finding, error) {
	findings := make([]finding, 0, len(srcs))
	for _, src := range srcs {
		geoms, err := r.Read(src.desc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.name, err)
		}
		findings = append(findings, finding{source: src, records: len(geoms), errors: geometry.Check(geoms)})
	}
	return findings, nil
}

func countInvalid(findings []finding) int {
	n := 0
	for _, f := range findings {
		n += len(f.errors)
	}
	return n
}

func printFindings(out io.Writer, findings []finding) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Source", "File", "Records", "Ref", "Problem"})
	for _, f := range findings {
		if len(f.errors) == 0 {
			t.AppendRow(table.Row{f.source.name, f.source.desc.FileName, f.records, "", "ok"})
			continue
		}
		for _, e := range f.errors {
			t.AppendRow(table.Row{f.source.name, f.source.desc.FileName, f.records, e.Ref, e.ErrorMessage})
		}
	}
	t.AppendFooter(table.Row{"", "", "", "Invalid", countInvalid(findings)})
	t.SetStyle(table.StyleLight)
	t.Render()
}
