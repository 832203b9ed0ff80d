package profiler

import "math"

// MistNet tensor geometry and thresholds, from
// original_source/lib/constants.h (MISTNET_*). The classifier itself is
// an external collaborator (spec.md §1); this file only builds its input
// tensor and back-projects its output, per the contract of spec.md §4.12.
const (
	MistNetDimension                   = 400   // pixels, square grid side
	MistNetResolution                  = 500.0 // metres per pixel
	MistNetInit                        = -9999.0
	MistNetBleed                       = 40 // pixels excluded at the tensor edge on back-projection
	MistNetWeatherThreshold            = 0.45
	MistNetScanAverageWeatherThreshold = 0.45
)

// Segmenter is the external convolutional-segmentation model's I/O
// contract (spec.md §4.12 step d): given the flattened input tensor and
// its shape, return per-class score tensors of the same [nElev][dim][dim]
// shape, ordered background/biology/weather.
type Segmenter interface {
	Classify(input []float64, nElev, dim int) (background, biology, weather []float64, err error)
}

// MistNetInputs is the per-scan selection and rendering state carried
// between tensor construction and back-projection.
type MistNetInputs struct {
	Scans    []PolarScan
	DBZName  []string
	VradName []string
	WradName []string
	Dim      int
	Res      float64
}

// SelectMistNetScans implements spec.md §4.12 step a: pick the scans
// closest to each target elevation (degrees), one per target. It takes no
// elevsOnly option; which scans BackProjectWeather later processes is
// decided by the caller.
func SelectMistNetScans(volume PolarVolume, targetElevs []float64) []PolarScan {
	scans := volume.Scans()
	selected := make([]PolarScan, 0, len(targetElevs))
	for _, target := range targetElevs {
		targetRad := target * math.Pi / 180
		best := -1
		bestDiff := math.Inf(1)
		for i, s := range scans {
			d := math.Abs(s.ElevationRad() - targetRad)
			if d < bestDiff {
				bestDiff = d
				best = i
			}
		}
		if best >= 0 {
			selected = append(selected, scans[best])
		}
	}
	return selected
}

// BuildInputTensor implements spec.md §4.12 steps b-c: render each
// selected scan's DBZ/VRAD/WRAD onto a dim x dim Cartesian grid at res
// metres/pixel (nearest-neighbor, mapped through the great-circle ->
// slant-range geometry of §4.1), flatten to [moment*nElev][y][x]
// row-major, filling unmapped or missing pixels with MistNetInit. VRAD/WRAD
// pixels are filled only where the DBZ sample at the same gate is present;
// where it is missing they stay at MistNetInit and are not set to NaN.
func BuildInputTensor(scans []PolarScan, dbzName, vradName, wradName []string, geom Geometry, dim int, res float64) []float64 {
	nElev := len(scans)
	tensor := make([]float64, 3*nElev*dim*dim)
	half := float64(dim) / 2

	planeOffset := func(moment, elev int) int { return (moment*nElev + elev) * dim * dim }

	for e, scan := range scans {
		dbzM, hasDbz := scan.GetMoment(dbzName[e])
		vradM, hasVrad := scan.GetMoment(vradName[e])
		wradM, hasWrad := scan.GetMoment(wradName[e])

		dbzPlane := tensor[planeOffset(0, e) : planeOffset(0, e)+dim*dim]
		vradPlane := tensor[planeOffset(1, e) : planeOffset(1, e)+dim*dim]
		wradPlane := tensor[planeOffset(2, e) : planeOffset(2, e)+dim*dim]

		for py := 0; py < dim; py++ {
			for px := 0; px < dim; px++ {
				dx := (float64(px) - half) * res
				dy := (float64(py) - half) * res
				d := math.Hypot(dx, dy)
				bearing := math.Atan2(dx, dy)

				idx := py*dim + px
				dbzPlane[idx] = MistNetInit
				vradPlane[idx] = MistNetInit
				wradPlane[idx] = MistNetInit

				if d == 0 {
					continue
				}
				slant := geom.Range(d, scan.ElevationRad())
				if slant < scan.RangeStart() {
					continue
				}
				iRang := int((slant - scan.RangeStart()) / scan.RangeScale())
				if iRang < 0 || iRang >= scan.NRang() {
					continue
				}
				azimDeg := bearing * 180 / math.Pi
				if azimDeg < 0 {
					azimDeg += 360
				}
				iAzim := int(azimDeg / 360 * float64(scan.NAzim()))
				if iAzim < 0 || iAzim >= scan.NAzim() {
					continue
				}

				var dbzVal float64 = math.NaN()
				if hasDbz {
					dbzVal = RealAt(dbzM, iAzim, iRang)
				}
				if !math.IsNaN(dbzVal) {
					dbzPlane[idx] = dbzVal
				}
				if hasVrad && !math.IsNaN(dbzVal) {
					vradPlane[idx] = RealAt(vradM, iAzim, iRang)
				}
				if hasWrad && !math.IsNaN(dbzVal) {
					wradPlane[idx] = RealAt(wradM, iAzim, iRang)
				}
			}
		}
	}

	return tensor
}

// BackProjectWeather implements spec.md §4.12 steps e-f: project the
// classifier's per-elevation weather-score plane back onto each selected
// scan's polar grid (ignoring pixels beyond (dim-bleed)/2*res from
// center), tag gates above weatherThreshold, then compute the
// per-elevation scan-average weather score and tag every gate of a scan
// whose average exceeds scanAvgThreshold. Only scans that have a weather
// plane (index < len(weather)) are processed. Tagged gates get a CELL
// moment raw value of 1 (reusing the CellMap "fringe"-adjacent
// convention of a low positive identifier; callers merge this into their
// own cell numbering as needed).
func BackProjectWeather(scans []PolarScan, weather [][]float64, dim int, res float64, bleed int, geom Geometry, weatherThreshold, scanAvgThreshold float64) {
	maxRadius := float64(dim-bleed) / 2 * res
	half := float64(dim) / 2

	for e, scan := range scans {
		if e >= len(weather) {
			continue
		}
		plane := weather[e]
		cell := scan.EnsureMoment("CELL", 1, 0, -1, 0)

		sum := 0.0
		n := 0
		for iAzim := 0; iAzim < scan.NAzim(); iAzim++ {
			azimRad := 2 * math.Pi * float64(iAzim) / float64(scan.NAzim())
			for iRang := 0; iRang < scan.NRang(); iRang++ {
				slant := scan.RangeStart() + float64(iRang)*scan.RangeScale()
				height := geom.HeightFromRange(slant, scan.ElevationRad())
				d := geom.Distance(slant, scan.ElevationRad(), height)
				if d > maxRadius {
					continue
				}
				dx := d * math.Sin(azimRad)
				dy := d * math.Cos(azimRad)
				px := int(dx/res + half)
				py := int(dy/res + half)
				if px < 0 || px >= dim || py < 0 || py >= dim {
					continue
				}
				score := plane[py*dim+px]
				if score <= MistNetInit {
					continue
				}
				sum += score
				n++
				if score > weatherThreshold {
					cell.SetRaw(iAzim, iRang, 1)
				}
			}
		}
		if n > 0 && sum/float64(n) > scanAvgThreshold {
			for iAzim := 0; iAzim < scan.NAzim(); iAzim++ {
				for iRang := 0; iRang < scan.NRang(); iRang++ {
					if RealAt(cell, iAzim, iRang) != 1 {
						cell.SetRaw(iAzim, iRang, 1)
					}
				}
			}
		}
	}
}
