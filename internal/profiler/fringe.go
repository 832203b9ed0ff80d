package profiler

import "math"

// FringeGrower dilates surviving cells (labels >= 2) by a fixed ground
// distance fringeDist, marking newly-covered gates with label 1 (fringe)
// (spec.md §4.5). Complexity is O(scan * aBlock * rBlock).
func FringeGrower(scan PolarScan, cellMap *CellMap, fringeDist float64) {
	nAzim := scan.NAzim()
	nRang := scan.NRang()
	rScale := scan.RangeScale()
	rangeStart := scan.RangeStart()

	isEdge := func(iAzim, iRang int) bool {
		if cellMap.Get(iAzim, iRang) < 2 {
			return false
		}
		for da := -1; da <= 1; da++ {
			for dr := -1; dr <= 1; dr++ {
				if da == 0 && dr == 0 {
					continue
				}
				if cellMap.Get(iAzim+da, iRang+dr) == -1 {
					return true
				}
			}
		}
		return false
	}

	type edgeGate struct{ iAzim, iRang int }
	var edges []edgeGate
	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			if isEdge(iAzim, iRang) {
				edges = append(edges, edgeGate{iAzim, iRang})
			}
		}
	}

	for _, e := range edges {
		r := rangeStart + float64(e.iRang)*rScale
		if r <= 0 {
			r = rScale
		}
		aBlock := int(math.Ceil(fringeDist / (2 * math.Pi * r) * float64(nAzim)))
		rBlock := int(math.Ceil(fringeDist / rScale))

		for da := -aBlock; da <= aBlock; da++ {
			for dr := -rBlock; dr <= rBlock; dr++ {
				iAzim := e.iAzim + da
				iRang := e.iRang + dr
				if iRang < 0 || iRang >= nRang {
					continue
				}
				if cellMap.Get(iAzim, iRang) != -1 {
					continue
				}
				dist := calcDist(e.iRang, e.iAzim, iRang, iAzim, rScale, 2*math.Pi/float64(nAzim))
				if dist <= fringeDist {
					cellMap.Set(iAzim, iRang, 1)
				}
			}
		}
	}
}

// calcDist returns the Euclidean ground distance between two gates given
// in (range-bin, azim-bin) coordinates, used to decide whether a gate
// within the rectangular fringe-search window is actually within
// fringeDist of the edge gate.
func calcDist(iRang1, iAzim1, iRang2, iAzim2 int, rScale, aScale float64) float64 {
	r1 := float64(iRang1) * rScale
	r2 := float64(iRang2) * rScale
	a1 := float64(iAzim1) * aScale
	a2 := float64(iAzim2) * aScale
	x1, y1 := r1*math.Cos(a1), r1*math.Sin(a1)
	x2, y2 := r2*math.Cos(a2), r2*math.Sin(a2)
	dx, dy := x1-x2, y1-y2
	return math.Sqrt(dx*dx + dy*dy)
}
