package profiler

import "fmt"

// Run orchestrates the full pipeline of spec.md §2 over one polar volume:
// ScanSelector, then per usable scan {CellFinder, CellAnalyzer,
// FringeGrower, TextureCalc}, then PointStore fill, GateCode
// classification, and ProfileEngine. It implements the error-kind policy
// of spec.md §7: a configuration error fails before any scan is touched;
// an unusable volume (no scans survive selection) returns an empty,
// all-NODATA profile alongside a non-nil error so the caller can
// distinguish "ran and found nothing" from "could not run"; a PointStore
// overrun is a fatal invariant breach that aborts the run.
func Run(volume PolarVolume, cfg Config) (*Profile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("profiler: invalid configuration: %w", err)
	}

	geom := NewGeometry(4.0 / 3.0)
	dualPolRequested := cfg.RhohvThresMin > 0
	selection := ScanSelector(volume, cfg, dualPolRequested)

	if selection.NScansUsed == 0 {
		emit(cfg.Diagnostics, SeverityError, "run", "no-usable-scans",
			"no scans in the volume qualified for use", nil)
		return emptyProfile(cfg), fmt.Errorf("profiler: volume unusable, no scans survived selection")
	}

	if !dealiasingAllowed(cfg, selection.NyquistMinUsed) {
		emit(cfg.Diagnostics, SeverityInfo, "run", "dealias-skipped-nyquist",
			"dealiasing skipped: nyquistMinUsed exceeds maxNyquistDealias",
			map[string]any{"nyquistMinUsed": selection.NyquistMinUsed, "maxNyquistDealias": cfg.MaxNyquistDealias})
		cfg.DealiasVrad = false
	}

	derived := DeriveConstants(cfg, volume.WavelengthCM())

	var clutter *ClutterMap
	if cfg.UseClutterMap {
		cm, err := OpenClutterMap(cfg.ClutterMapPath)
		if err != nil {
			return nil, fmt.Errorf("profiler: opening clutter map: %w", err)
		}
		defer cm.Close()
		clutter = cm
	}

	scans := volume.Scans()
	for i, scan := range scans {
		use := selection.Decisions[i]
		if !use.UseScan {
			continue
		}
		if err := processScan(scan, use, selection.DualPol, clutter, cfg, derived); err != nil {
			emit(cfg.Diagnostics, SeverityWarn, "run", "scan-processing-failed",
				"scan skipped after a processing error: %v", map[string]any{"scan": i}, err)
			use.UseScan = false
			selection.Decisions[i] = use
		}
	}

	ps, err := FillPointStore(volume, selection, geom, cfg, clutter)
	if err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}

	ClassifyGates(ps, cfg, derived)

	profile := RunProfileEngine(ps, cfg, derived)
	profile.RadarLon = volume.SiteLon()
	profile.RadarLat = volume.SiteLat()
	profile.RadarHeight = volume.SiteHeight()
	profile.RadarWavelength = derived.WavelengthCM
	if vcp, ok := volume.VCP(); ok {
		profile.VCP = vcp
		profile.HasVCP = true
	}

	return profile, nil
}

// processScan runs CellFinder (twice, dual-pol), CellAnalyzer,
// FringeGrower and TextureCalc over one usable scan, writing the CELL
// parameter (and, single-pol, TEX) back onto it; FillPointStore reads CELL
// (spec.md §4.3-§4.6).
func processScan(scan PolarScan, use ScanUse, dualPol bool, clutter *ClutterMap, cfg Config, derived DerivedConstants) error {
	dbzMoment, ok := scan.GetMoment(use.DBZName)
	if !ok {
		return fmt.Errorf("scan missing resolved reflectivity moment %q", use.DBZName)
	}
	vradMoment, ok := scan.GetMoment(use.VradName)
	if !ok {
		return fmt.Errorf("scan missing resolved radial-velocity moment %q", use.VradName)
	}

	cellMap := NewCellMap(scan.NAzim(), scan.NRang())
	nCandidates, nextID := CellFinder(scan, dbzMoment,
		func(v float64) bool { return v > cfg.DBZThresMin },
		cfg.RangeMax, cfg.NNeighborsMin, 2, cellMap)

	if dualPol && use.RhohvName != "" {
		if rhohvMoment, ok := scan.GetMoment(use.RhohvName); ok {
			var more int
			more, nextID = CellFinder(scan, rhohvMoment,
				func(v float64) bool { return v > cfg.RhohvThresMin },
				cfg.RangeMax, cfg.NNeighborsMin, int(nextID), cellMap)
			nCandidates += more
		}
	}

	useStaticClutter := cfg.UseClutterMap && clutter != nil
	_, _ = CellAnalyzer(scan, cellMap, dbzMoment, vradMoment, nil, useStaticClutter, clutter, cfg, derived, nCandidates, dualPol)

	FringeGrower(scan, cellMap, cfg.FringeDist)

	if !dualPol {
		TextureCalc(scan, vradMoment, cfg.NAzimNeighborhood, cfg.NRangNeighborhood, cfg.NCountMin)
	}

	cellOut := scan.EnsureMoment(use.CellName, 1, 0, -1, 0)
	for iAzim := 0; iAzim < scan.NAzim(); iAzim++ {
		for iRang := 0; iRang < scan.NRang(); iRang++ {
			cellOut.SetRaw(iAzim, iRang, float64(cellMap.Get(iAzim, iRang)))
		}
	}

	return nil
}

// dealiasingAllowed implements original_source/lib/libvol2bird.c:5488-5489:
// once every usable scan's Nyquist is known, dealiasing is force-disabled
// when nyquistMinUsed exceeds maxNyquistDealias, regardless of DealiasVrad.
func dealiasingAllowed(cfg Config, nyquistMinUsed float64) bool {
	return !(cfg.DealiasVrad && nyquistMinUsed > cfg.MaxNyquistDealias)
}

func emptyProfile(cfg Config) *Profile {
	rows := make([]ProfileRow, cfg.NLayers)
	for i := range rows {
		rows[i] = newRow(float64(i)*cfg.LayerThickness, float64(i+1)*cfg.LayerThickness)
	}
	allRows := make([]ProfileRow, cfg.NLayers)
	copy(allRows, rows)
	return &Profile{
		Birds: rows,
		All:   allRows,
		RCS:   cfg.BirdRadarCrossSection,
	}
}
