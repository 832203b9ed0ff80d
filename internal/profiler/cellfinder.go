package profiler

// CellFinder runs non-recursive, two-phase connected-component labeling
// over one scan moment on the cyclic-azimuth torus (spec.md §4.3).
//
// qualifies reports whether a gate's decoded moment value makes it a
// labeling candidate: callers pass e.g. `func(v float64) bool { return v > thresh }`
// both for precipitation detection on reflectivity and for the
// correlation-coefficient refinement pass. rCellMax bounds the range bins considered. iCellStart
// is the first identifier to assign (2 on the first pass per scan, or
// max-id+1 on a dual-pol refinement pass that grows an existing map
// in place without reinitializing it).
//
// Returns the number of distinct candidate identifiers assigned (the map
// is not yet dense: merges can leave gaps, which CellAnalyzer resolves
// when it renumbers surviving cells) and the next unused identifier,
// which a dual-pol refinement pass passes back in as iCellStart to grow
// the same map without reinitializing it (spec.md §4.3).
func CellFinder(scan PolarScan, moment Moment, qualifies func(value float64) bool, rCellMax float64, nNeighborsMin, iCellStart int, cellMap *CellMap) (nDistinct int, nextFreeID int32) {
	nAzim := scan.NAzim()
	nRang := scan.NRang()
	rangeScale := scan.RangeScale()
	rangeStart := scan.RangeStart()

	candidate := make([][]bool, nAzim)
	for i := range candidate {
		candidate[i] = make([]bool, nRang)
	}
	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			r := rangeStart + float64(iRang)*rangeScale
			if r > rCellMax {
				continue
			}
			v := RealAt(moment, iAzim, iRang)
			candidate[iAzim][iRang] = qualifies(v)
		}
	}

	qualifiesAt := func(iAzim, iRang int) bool {
		if iRang < 0 || iRang >= nRang {
			return false
		}
		wa := ((iAzim % nAzim) + nAzim) % nAzim
		return candidate[wa][iRang]
	}

	nextID := int32(iCellStart)
	seen := make(map[int32]bool)

	// Phase 1: seed & merge, azimuth-major raster order.
	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			if !candidate[iAzim][iRang] {
				continue
			}

			neighborCount := 0
			for da := -1; da <= 1; da++ {
				for dr := -1; dr <= 1; dr++ {
					if da == 0 && dr == 0 {
						continue
					}
					if qualifiesAt(iAzim+da, iRang+dr) {
						neighborCount++
					}
				}
			}
			if neighborCount < nNeighborsMin {
				continue
			}

			// Already-visited neighbors, in order: top-left, top, top-right, left.
			type nb struct{ da, dr int }
			visited := []nb{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}}

			label := int32(-1)
			for _, n := range visited {
				na, nr := iAzim+n.da, iRang+n.dr
				if nr < 0 || nr >= nRang {
					continue
				}
				nl := cellMap.Get(na, nr)
				if nl < 0 {
					continue
				}
				if label < 0 {
					label = nl
				} else if nl != label {
					lo, hi := label, nl
					if hi < lo {
						lo, hi = hi, lo
					}
					cellMap.ReplaceAll(hi, lo)
					delete(seen, hi)
					label = lo
				}
			}

			if label < 0 {
				label = nextID
				nextID++
			}
			cellMap.Set(iAzim, iRang, label)
			seen[label] = true
		}
	}

	// Phase 2: seam fix. Unify labels across ray 0 <-> ray nAzim-1.
	for iRang := 0; iRang < nRang; iRang++ {
		l0 := cellMap.Get(0, iRang)
		l1 := cellMap.Get(nAzim-1, iRang)
		if l0 >= 0 && l1 >= 0 && l0 != l1 {
			lo, hi := l0, l1
			if hi < lo {
				lo, hi = hi, lo
			}
			cellMap.ReplaceAll(hi, lo)
			delete(seen, hi)
			seen[lo] = true
		}
	}

	return len(seen), nextID
}
