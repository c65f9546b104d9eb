package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/stitch"
	"github.com/jedib0t/go-pretty/v6/table"
)

func printSummary(out io.Writer, pu1, pu2 string, r *stitch.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle("Stitching summary")
	t.AppendHeader(table.Row{"Unit", "Polygons", "Area"})
	t.AppendRow(table.Row{pu1, len(r.PU1), fmt.Sprintf("%.4f", geometry.TotalArea(r.PU1))})
	t.AppendRow(table.Row{pu2, len(r.PU2), fmt.Sprintf("%.4f", geometry.TotalArea(r.PU2))})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Merged into " + pu1, r.Merged, ""})
	t.AppendRow(table.Row{"Removed from " + pu2, r.Removed, ""})
	t.AppendRow(table.Row{"Topology anomalies", r.Anomalies, ""})
	t.AppendRow(table.Row{"Overlaps", r.Coverage.OverlapCount, fmt.Sprintf("%.6f", r.Coverage.OverlapArea)})
	t.AppendRow(table.Row{"Lost area", "", fmt.Sprintf("%.6f", r.Coverage.LossArea)})
	t.AppendSeparator()
	t.AppendRow(table.Row{"Elapsed", r.Elapsed.Round(time.Millisecond).String(), ""})
	t.SetStyle(table.StyleLight)
	t.Render()
}
