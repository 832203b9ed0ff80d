package profiler

import "testing"

func buildUsableScan(elevDeg, nyquist float64) *MemScan {
	scan := NewMemScan(elevDeg*3.14159/180, 0.017, 50, 500, 0, 36, 20)
	scan.EnsureMoment("DBZH", 0.5, -20, -999, -998)
	scan.EnsureMoment("VRADH", nyquist/127, 0, -999, -998)
	scan.SetNyquist(nyquist)
	return scan
}

func TestScanSelector_DropsBelowMinNyquist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinNyquist = 20
	low := buildUsableScan(0.5, 10)
	high := buildUsableScan(1.5, 25)
	volume := NewMemVolume(0, 0, 0, 5.3, low, high)

	selection := ScanSelector(volume, cfg, false)
	if selection.NScansUsed != 1 {
		t.Fatalf("expected exactly 1 scan to survive, got %d", selection.NScansUsed)
	}
	if selection.Decisions[0].UseScan {
		t.Error("low-Nyquist scan must be dropped")
	}
	if !selection.Decisions[1].UseScan {
		t.Error("high-Nyquist scan must survive")
	}
}

func TestScanSelector_NoQualifyingScansReturnsEmpty(t *testing.T) {
	cfg := DefaultConfig()
	scan := NewMemScan(0.5*3.14159/180, 0.017, 50, 500, 0, 36, 20)
	// No DBZ/VRAD moments at all.
	volume := NewMemVolume(0, 0, 0, 5.3, scan)

	selection := ScanSelector(volume, cfg, false)
	if selection.NScansUsed != 0 {
		t.Fatalf("expected no scans to survive, got %d", selection.NScansUsed)
	}
}

// buildScanWithInferredNyquist leaves the scan-scope Nyquist attribute
// unset so resolveNyquist must infer it from the VRAD moment's offset
// (spec.md §4.2's fallback resolution order).
func buildScanWithInferredNyquist(elevDeg, nyquist float64) *MemScan {
	scan := NewMemScan(elevDeg*3.14159/180, 0.017, 50, 500, 0, 36, 20)
	scan.EnsureMoment("DBZH", 0.5, -20, -999, -998)
	scan.EnsureMoment("VRADH", nyquist/127, -nyquist, -999, -998)
	return scan
}

// TestScanSelector_NyquistMinUsedCountsInferredScans is
// original_source/lib/libvol2bird.c:1036: nyquistMinUsed tracks the
// running minimum among all usable scans above cfg.MinNyquist, regardless
// of whether a scan's Nyquist was read from an attribute or inferred from
// the VRAD moment's offset.
func TestScanSelector_NyquistMinUsedCountsInferredScans(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinNyquist = 5

	attributeScan := buildUsableScan(0.5, 25)
	inferredScan := buildScanWithInferredNyquist(1.5, 12.5)
	volume := NewMemVolume(0, 0, 0, 5.3, attributeScan, inferredScan)

	selection := ScanSelector(volume, cfg, false)
	if selection.NScansUsed != 2 {
		t.Fatalf("expected both scans to be usable, got %d", selection.NScansUsed)
	}
	if selection.NyquistMinUsed != 12.5 {
		t.Errorf("expected the inferred scan's lower Nyquist (12.5) to set NyquistMinUsed, got %v", selection.NyquistMinUsed)
	}
}

// TestScanSelector_NyquistMinUsedFloorsAtMinNyquist mirrors
// original_source/lib/libvol2bird.c:1036's own floor: a usable scan's
// Nyquist below cfg.MinNyquist never lowers nyquistMinUsed (such a scan
// would have been dropped from use anyway, so this only matters as a
// defensive floor on the running minimum itself).
func TestScanSelector_NyquistMinUsedFloorsAtMinNyquist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinNyquist = 20

	high := buildUsableScan(0.5, 25)
	low := buildUsableScan(1.5, 10) // dropped by MinNyquist, must not count
	volume := NewMemVolume(0, 0, 0, 5.3, high, low)

	selection := ScanSelector(volume, cfg, false)
	if selection.NyquistMinUsed != 25 {
		t.Errorf("expected NyquistMinUsed=25 from the only usable scan, got %v", selection.NyquistMinUsed)
	}
}

func TestScanSelector_DualPolFallsBackWithoutRhohv(t *testing.T) {
	cfg := DefaultConfig()
	scan := buildUsableScan(0.5, 25)
	volume := NewMemVolume(0, 0, 0, 5.3, scan)

	selection := ScanSelector(volume, cfg, true)
	if selection.DualPol {
		t.Error("expected silent fallback to single-pol when no scan carries RHOHV")
	}
	if selection.NScansUsed != 1 {
		t.Fatalf("expected the scan to still be usable in single-pol mode, got %d", selection.NScansUsed)
	}
}
