// Command vp runs the bird vertical-profile extractor against a
// synthetic demonstration volume and prints the resulting bird profile
// table as CSV to stdout. Real ODIM/IRIS/NEXRAD decoding is out of scope
// (spec.md §1); this wrapper only exercises the core against a volume it
// builds in memory, the way internal/lidar/cmd tools in the teacher
// exercise their core against mock backgrounds.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/wxbirds/birdvp/internal/fsutil"
	"github.com/wxbirds/birdvp/internal/profiler"
	"github.com/wxbirds/birdvp/internal/profilechart"
	"github.com/wxbirds/birdvp/internal/security"
	"github.com/wxbirds/birdvp/internal/units"
	"github.com/wxbirds/birdvp/internal/version"
)

var (
	nLayers        = flag.Int("layers", 30, "number of altitude layers")
	layerThickness = flag.Float64("layer-thickness", 200.0, "layer thickness in metres")
	chartPath      = flag.String("chart", "", "optional path to write a debug HTML profile chart")
	verbose        = flag.Bool("v", false, "log diagnostics to stderr")
	speedUnit      = flag.String("speed-unit", units.MPS, "horizontal speed unit for CSV output: "+units.GetValidUnitsString())
	showVersion    = flag.Bool("version", false, "print the version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("vp %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if !units.IsValid(*speedUnit) {
		log.Fatalf("invalid -speed-unit %q: must be one of %s", *speedUnit, units.GetValidUnitsString())
	}

	cfg := profiler.DefaultConfig()
	cfg.NLayers = *nLayers
	cfg.LayerThickness = *layerThickness
	if *verbose {
		cfg.Diagnostics = profiler.LogSink(os.Stderr, os.Stderr)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	volume := buildDemoVolume(cfg)

	profile, err := profiler.Run(volume, cfg)
	if err != nil {
		log.Fatalf("profiler run failed: %v", err)
	}

	if *chartPath != "" {
		if err := security.ValidateExportPath(*chartPath); err != nil {
			log.Fatalf("refusing to write chart: %v", err)
		}
		writeChart(*chartPath, profile)
	}

	writeCSV(os.Stdout, profile, *speedUnit)
}

// writeChart renders the debug profile chart through fsutil.FileSystem
// rather than os.Create directly, so the write path is swappable for an
// in-memory filesystem in tests without touching disk.
func writeChart(path string, p *profiler.Profile) {
	fs := fsutil.OSFileSystem{}
	f, err := fs.Create(path)
	if err != nil {
		log.Fatalf("creating chart file: %v", err)
	}
	defer f.Close()
	if err := profilechart.Render(f, p); err != nil {
		log.Fatalf("rendering chart: %v", err)
	}
}

func writeCSV(w *os.File, p *profiler.Profile, speedUnit string) {
	fmt.Fprintf(w, "altMin,altMax,u,v,w,hSpeed_%s,hDir,residual,gap,dbzAvg,n,eta,density,n_dbz\n", speedUnit)
	for _, row := range p.Birds {
		fmt.Fprintf(w, "%.0f,%.0f,%s,%s,%s,%s,%s,%s,%t,%s,%d,%s,%s,%d\n",
			row.AltMin, row.AltMax,
			fmtVal(row.U), fmtVal(row.V), fmtVal(row.W),
			fmtValConverted(row.HSpeed, speedUnit), fmtVal(row.HDir), fmtVal(row.Residual),
			row.HasGap, fmtVal(row.DbzAvg), row.NPoints,
			fmtVal(row.Eta), fmtVal(row.Density), row.NPointsZ)
	}
}

func fmtVal(v float64) string {
	if math.IsInf(v, -1) {
		return "NODATA"
	}
	if math.IsInf(v, 1) {
		return "UNDETECT"
	}
	return fmt.Sprintf("%.4f", v)
}

// fmtValConverted renders a metres-per-second field in the requested
// display unit, leaving the NODATA/UNDETECT sentinels untouched.
func fmtValConverted(v float64, targetUnit string) string {
	if math.IsInf(v, 0) {
		return fmtVal(v)
	}
	return fmt.Sprintf("%.4f", units.ConvertSpeed(v, targetUnit))
}

// buildDemoVolume constructs a small two-elevation synthetic volume with a
// horizontally-uniform wind and no precipitation, the scenario named in
// spec.md §8's first seed test, purely so the CLI has something to run
// against without a real decoder.
func buildDemoVolume(cfg profiler.Config) *profiler.MemVolume {
	const (
		nAzim      = 360
		nRang      = 200
		rangeScale = 500.0
		u, v       = 5.0, 0.0
		nyquist    = 25.0
	)

	elevs := []float64{0.5, 1.5}
	scans := make([]profiler.PolarScan, len(elevs))

	for e, elevDeg := range elevs {
		elevRad := elevDeg * math.Pi / 180
		scan := profiler.NewMemScan(elevRad, 1.0*math.Pi/180, 50, rangeScale, 0, nAzim, nRang)
		scan.SetNyquist(nyquist)

		dbz := scan.EnsureMoment("DBZH", 0.5, -20, -999, -998)
		vrad := scan.EnsureMoment("VRADH", nyquist/127, 0, -999, -998)

		for iAzim := 0; iAzim < nAzim; iAzim++ {
			azimRad := 2 * math.Pi * float64(iAzim) / nAzim
			vtrue := (u*math.Sin(azimRad) + v*math.Cos(azimRad)) * math.Cos(elevRad)
			folded := math.Mod(vtrue+nyquist, 2*nyquist) - nyquist

			for iRang := 0; iRang < nRang; iRang++ {
				profiler.SetMomentReal(dbz, iAzim, iRang, -10)
				profiler.SetMomentReal(vrad, iAzim, iRang, folded)
			}
		}
		scans[e] = scan
	}

	return profiler.NewMemVolume(4.79, 52.1, 50, cfg.RadarWavelengthCM, scans...)
}
