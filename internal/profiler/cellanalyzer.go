package profiler

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CellProperty accumulates per-candidate-cell statistics (spec.md §3/§4.4).
type CellProperty struct {
	Index         int32
	NGates        int
	NGatesClutter int
	AreaKM2       float64
	DbzAvg        float64
	TexAvg        float64
	DbzMax        float64
	IRangMax      int
	IAzimMax      int
	CV            float64 // TexAvg / DbzAvg
	DropFlag      bool
}

// CellAnalyzer computes per-cell statistics over cellMap's candidate cells
// and applies the dropping rules of spec.md §4.4, then rewrites cellMap so
// surviving cells are dense, 2-based, and ordered by descending gate
// count, with dropped gates set to -1. It returns the surviving
// CellProperty slice (in their final, renumbered order) and the number of
// surviving cells.
func CellAnalyzer(scan PolarScan, cellMap *CellMap, dbz, vrad, tex Moment, useStaticClutter bool, clutter *ClutterMap, cfg Config, derived DerivedConstants, nCandidateCells int, dualPol bool) ([]CellProperty, int) {
	nAzim := scan.NAzim()
	nRang := scan.NRang()
	rScale := scan.RangeScale()
	aScale := 2 * math.Pi / float64(nAzim)

	props := make(map[int32]*collector)

	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			label := cellMap.Get(iAzim, iRang)
			if label < 2 {
				continue
			}
			c, ok := props[label]
			if !ok {
				c = &collector{index: label, dbzMax: math.Inf(-1)}
				props[label] = c
			}
			c.nGates++
			c.areaKM2 += rScale * rScale * float64(iRang) * math.Sin(aScale) / 1e6

			vradVal := RealAt(vrad, iAzim, iRang)
			isClutter := false
			if math.IsNaN(vradVal) || math.Abs(vradVal) < cfg.VradMin {
				isClutter = true
			}
			if useStaticClutter && clutter != nil && clutter.IsClutter(scan, iAzim, iRang, cfg.ClutterValueMin) {
				isClutter = true
			}
			if isClutter {
				c.nGatesClutter++
			}

			dbzVal := RealAt(dbz, iAzim, iRang)
			if !math.IsNaN(dbzVal) {
				c.dbzVals = append(c.dbzVals, dbzVal)
				if dbzVal > c.dbzMax {
					c.dbzMax = dbzVal
					c.iRangMax = iRang
					c.iAzimMax = iAzim
				}
			}
			if tex != nil {
				texVal := RealAt(tex, iAzim, iRang)
				if !math.IsNaN(texVal) {
					c.texVals = append(c.texVals, texVal)
				}
			}
		}
	}

	all := make([]*CellProperty, 0, len(props))
	for _, c := range props {
		p := &CellProperty{
			Index:         c.index,
			NGates:        c.nGates,
			NGatesClutter: c.nGatesClutter,
			AreaKM2:       c.areaKM2,
			DbzMax:        c.dbzMax,
			IRangMax:      c.iRangMax,
			IAzimMax:      c.iAzimMax,
		}
		if len(c.dbzVals) > 0 {
			p.DbzAvg = stat.Mean(c.dbzVals, nil)
		}
		if len(c.texVals) > 0 {
			p.TexAvg = stat.Mean(c.texVals, nil)
		}
		if p.DbzAvg != 0 {
			p.CV = p.TexAvg / p.DbzAvg
		}
		p.DropFlag = shouldDropCell(p, cfg, derived, dualPol)
		all = append(all, p)
	}

	survivors := make([]*CellProperty, 0, len(all))
	for _, p := range all {
		if !p.DropFlag {
			survivors = append(survivors, p)
		}
	}
	// Descending gate count; ties broken by original index for determinism.
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].NGates != survivors[j].NGates {
			return survivors[i].NGates > survivors[j].NGates
		}
		return survivors[i].Index < survivors[j].Index
	})

	remap := make(map[int32]int32, len(all))
	for _, p := range all {
		remap[p.Index] = -1 // dropped, unless overwritten below
	}
	result := make([]CellProperty, len(survivors))
	for i, p := range survivors {
		newID := int32(i + 2)
		remap[p.Index] = newID
		p.Index = newID
		result[i] = *p
	}
	cellMap.Remap(remap)

	return result, len(survivors)
}

type collector struct {
	index         int32
	nGates        int
	nGatesClutter int
	areaKM2       float64
	dbzVals       []float64
	texVals       []float64
	dbzMax        float64
	iRangMax      int
	iAzimMax      int
}

// shouldDropCell implements the single-pol/dual-pol dropping rules.
// selectCellsToDrop_singlePol's "too much clutter" arm is preserved as the
// dead code it is in the source (spec.md §9 open question): a cell with a
// dominant clutter fraction is simply not dropped by the dbz/tex rule, it
// is never specially retained or specially dropped by a separate branch.
func shouldDropCell(p *CellProperty, cfg Config, derived DerivedConstants, dualPol bool) bool {
	if p.AreaKM2 < cfg.AreaCellMin {
		return true
	}
	if dualPol {
		return false
	}
	if p.NGates == 0 {
		return false
	}
	clutterFraction := float64(p.NGatesClutter) / float64(p.NGates)
	notDominantClutter := clutterFraction <= cfg.CellClutterFractionMax
	if p.DbzAvg < derived.CellDbzMin && p.TexAvg > cfg.CellStdDevMax && notDominantClutter {
		return true
	}
	return false
}
