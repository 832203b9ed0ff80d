package profiler

import (
	"fmt"
	"math"
)

// Point is one gate collected into the PointStore (spec.md §3). NaN
// encodes missing Dbz or Vrad.
type Point struct {
	Range         float64 // metres
	Azim          float64 // degrees
	Elev          float64 // degrees
	Dbz           float64
	Vrad          float64
	Cell          int32
	GateCode      GateCode
	Nyquist       float64
	VradDealiased float64
	ClutterValue  float64
}

// PointStore is a flat array partitioned into nLayers contiguous segments.
// Invariant: indexFrom[i] + nPointsWritten[i] <= indexTo[i], always
// (spec.md §3/§8).
type PointStore struct {
	Points         []Point
	IndexFrom      []int
	IndexTo        []int
	NPointsWritten []int
}

// NewPointStore allocates a store sized from the per-layer gate counts
// computed in the PointStore-fill sizing pass (spec.md §4.7 step 1).
func NewPointStore(layerGateCounts []int) *PointStore {
	n := len(layerGateCounts)
	indexFrom := make([]int, n)
	indexTo := make([]int, n)
	total := 0
	for i, c := range layerGateCounts {
		indexFrom[i] = total
		total += c
		indexTo[i] = total
	}
	return &PointStore{
		Points:         make([]Point, total),
		IndexFrom:      indexFrom,
		IndexTo:        indexTo,
		NPointsWritten: make([]int, n),
	}
}

// Append writes p into layer's segment. It returns an error (a fatal
// invariant breach, spec.md §7) if the segment would overrun.
func (ps *PointStore) Append(layer int, p Point) error {
	idx := ps.IndexFrom[layer] + ps.NPointsWritten[layer]
	if idx >= ps.IndexTo[layer] {
		return fmt.Errorf("point store overrun: layer %d is full (indexFrom=%d indexTo=%d)", layer, ps.IndexFrom[layer], ps.IndexTo[layer])
	}
	ps.Points[idx] = p
	ps.NPointsWritten[layer]++
	return nil
}

// Layer returns the slice of points written so far for layer i.
func (ps *PointStore) Layer(i int) []Point {
	from := ps.IndexFrom[i]
	return ps.Points[from : from+ps.NPointsWritten[i]]
}

// layerForHeight returns the layer index whose altitude band contains
// height, or -1 if height falls outside every layer.
func layerForHeight(height float64, nLayers int, layerThickness float64) int {
	if height < 0 {
		return -1
	}
	layer := int(height / layerThickness)
	if layer < 0 || layer >= nLayers {
		return -1
	}
	return layer
}

// CountLayerGates implements spec.md §4.7 step 1: for one usable scan,
// the number of (range, azim) gates that fall in [rangeMin, rangeMax] and
// whose beam height puts them within layerThickness/2 of each layer's
// center, counted per layer (nAzim gates per qualifying range bin).
func CountLayerGates(scan PolarScan, geom Geometry, cfg Config) []int {
	counts := make([]int, cfg.NLayers)
	nAzim := scan.NAzim()
	for iRang := 0; iRang < scan.NRang(); iRang++ {
		r := scan.RangeStart() + float64(iRang)*scan.RangeScale()
		if r < cfg.RangeMin || r > cfg.RangeMax {
			continue
		}
		beamHeight := geom.BeamHeight(scan.AntennaHeight(), r, scan.ElevationRad())
		for layer := 0; layer < cfg.NLayers; layer++ {
			center := (float64(layer) + 0.5) * cfg.LayerThickness
			if math.Abs(center-beamHeight) <= cfg.LayerThickness/2 {
				counts[layer] += nAzim
			}
		}
	}
	return counts
}

// FillPointStore implements spec.md §4.7's two-stage fill: size every
// layer segment from every usable scan, then append one row per
// geometric-candidate gate. Azimuth inclusion (gate code bit 7) is
// deferred to the GateCode classifier, so every geometric candidate is
// stored regardless of azimMin/azimMax.
func FillPointStore(volume PolarVolume, selection ScanSelection, geom Geometry, cfg Config, clutter *ClutterMap) (*PointStore, error) {
	scans := volume.Scans()

	totals := make([]int, cfg.NLayers)
	for i, scan := range scans {
		if !selection.Decisions[i].UseScan {
			continue
		}
		counts := CountLayerGates(scan, geom, cfg)
		for l := range totals {
			totals[l] += counts[l]
		}
	}

	ps := NewPointStore(totals)

	for i, scan := range scans {
		use := selection.Decisions[i]
		if !use.UseScan {
			continue
		}
		dbzMoment, _ := scan.GetMoment(use.DBZName)
		vradMoment, _ := scan.GetMoment(use.VradName)

		nAzim := scan.NAzim()
		for iRang := 0; iRang < scan.NRang(); iRang++ {
			r := scan.RangeStart() + float64(iRang)*scan.RangeScale()
			if r < cfg.RangeMin || r > cfg.RangeMax {
				continue
			}
			beamHeight := geom.BeamHeight(scan.AntennaHeight(), r, scan.ElevationRad())
			layer := layerForHeight(beamHeight, cfg.NLayers, cfg.LayerThickness)
			if layer < 0 {
				continue
			}

			for iAzim := 0; iAzim < nAzim; iAzim++ {
				azimDeg := 360.0 * float64(iAzim) / float64(nAzim)
				elevDeg := scan.ElevationRad() * 180 / math.Pi

				p := Point{
					Range:   r,
					Azim:    azimDeg,
					Elev:    elevDeg,
					Dbz:     RealAt(dbzMoment, iAzim, iRang),
					Nyquist: use.Nyquist,
				}
				p.Vrad = RealAt(vradMoment, iAzim, iRang)
				p.VradDealiased = p.Vrad
				if cm, ok := scan.GetMoment(use.CellName); ok {
					p.Cell = int32(RealAt(cm, iAzim, iRang))
				} else {
					p.Cell = -1
				}
				if cfg.UseClutterMap && clutter != nil {
					if v, ok := clutter.Value(scan, iAzim, iRang); ok {
						p.ClutterValue = v
					}
				}
				if err := ps.Append(layer, p); err != nil {
					return nil, err
				}
			}
		}
	}

	return ps, nil
}
