// Package profilechart renders a computed bird vertical profile as a
// debug HTML page, grounded on the teacher's lidar dashboard chart
// handlers (internal/lidar/monitor/echarts_handlers.go). It is a debug
// aid, not a substitute for the out-of-scope JSON/CSV/HDF5 emission.
package profilechart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/wxbirds/birdvp/internal/profiler"
)

const assetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Render writes an HTML page with one line chart per profile field
// (hSpeed, hDir, eta, density) against altitude, for the given profile's
// bird table, to w.
func Render(w io.Writer, p *profiler.Profile) error {
	heights := make([]string, len(p.Birds))
	hSpeed := make([]opts.LineData, len(p.Birds))
	hDir := make([]opts.LineData, len(p.Birds))
	eta := make([]opts.LineData, len(p.Birds))
	density := make([]opts.LineData, len(p.Birds))

	for i, row := range p.Birds {
		heights[i] = fmt.Sprintf("%.0f", row.AltMin)
		hSpeed[i] = opts.LineData{Value: sentinelToNil(row.HSpeed)}
		hDir[i] = opts.LineData{Value: sentinelToNil(row.HDir)}
		eta[i] = opts.LineData{Value: sentinelToNil(row.Eta)}
		density[i] = opts.LineData{Value: sentinelToNil(row.Density)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "720px", AssetsHost: assetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Bird vertical profile", Subtitle: p.RunID}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "altitude (m)"}),
	)
	line.SetXAxis(heights).
		AddSeries("hSpeed (m/s)", hSpeed).
		AddSeries("hDir (deg)", hDir).
		AddSeries("eta (cm2/km3)", eta).
		AddSeries("density (1/km3)", density).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	page := components.NewPage()
	page.SetAssetsHost(assetsHost)
	page.AddCharts(line)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("profilechart: render: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// sentinelToNil maps the ProfileNoData/ProfileUndetect sentinels to nil
// so go-echarts draws a gap instead of an extreme-valued point.
func sentinelToNil(v float64) any {
	if math.IsInf(v, -1) || math.IsInf(v, 1) {
		return nil
	}
	return v
}
