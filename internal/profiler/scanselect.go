package profiler

import "math"

// ScanUse records, for one scan, whether it is usable and the resolved
// moment names to read from it (spec.md §3/§4.2).
type ScanUse struct {
	UseScan bool

	DBZName   string
	VradName  string
	RhohvName string // empty if not dual-pol / not found
	WradName  string // empty if absent

	CellName  string
	TexName   string
	ClutName  string

	Nyquist       float64
	NyquistInferred bool
}

// ScanSelection is the result of running ScanSelector over a volume.
type ScanSelection struct {
	Decisions     []ScanUse
	NScansUsed    int
	DualPol       bool
	NyquistMin     float64
	NyquistMinUsed float64
	NyquistMax     float64
}

var dbzAliases = []string{"DBZH", "DBZV"}
var vradAliases = []string{"VRAD", "VRADH", "VRADV"}
var rhohvAliases = []string{"RHOHV"}

// resolveMoment implements the inheritance-free MomentResolver design note
// (§9): a single priority list, first match wins.
func resolveMoment(scan PolarScan, preferred string, fallbacks []string) (string, bool) {
	candidates := make([]string, 0, len(fallbacks)+1)
	if preferred != "" {
		candidates = append(candidates, preferred)
	}
	candidates = append(candidates, fallbacks...)
	for _, name := range candidates {
		if _, ok := scan.GetMoment(name); ok {
			return name, true
		}
	}
	return "", false
}

// ScanSelector chooses, for every scan in the volume, whether it qualifies
// for use and resolves its moment aliases (spec.md §4.2). dualPolRequested
// selects whether RHOHV is required; ScanSelector silently falls back to
// single-pol if no scan actually carries RHOHV.
func ScanSelector(volume PolarVolume, cfg Config, dualPolRequested bool) ScanSelection {
	scans := volume.Scans()
	decisions := make([]ScanUse, len(scans))

	anyRhohv := false
	for _, scan := range scans {
		if name, ok := resolveMoment(scan, "", rhohvAliases); ok {
			_ = name
			anyRhohv = true
			break
		}
	}
	dualPol := dualPolRequested && anyRhohv

	nyquistMin := math.Inf(1)
	nyquistMax := math.Inf(-1)
	nyquistMinUsed := math.Inf(1)
	nScansUsed := 0

	for i, scan := range scans {
		var use ScanUse

		dbzName, dbzOK := resolveMoment(scan, cfg.DBZType, dbzAliases)
		vradName, vradOK := resolveMoment(scan, "", vradAliases)

		if !dbzOK || !vradOK {
			decisions[i] = use
			continue
		}
		if dualPol {
			if name, ok := resolveMoment(scan, "", rhohvAliases); ok {
				use.RhohvName = name
			} else {
				decisions[i] = use
				continue
			}
		}

		elevDeg := scan.ElevationRad() * 180 / math.Pi
		if elevDeg < cfg.ElevMin || elevDeg > cfg.ElevMax {
			decisions[i] = use
			continue
		}
		if scan.RangeScale() < 1.0 {
			decisions[i] = use
			continue
		}

		nyquist, inferred := resolveNyquist(scan, vradName)
		if nyquist < cfg.MinNyquist {
			decisions[i] = use
			continue
		}
		if inferred {
			scan.SetNyquist(nyquist)
		}

		use.UseScan = true
		use.DBZName = dbzName
		use.VradName = vradName
		use.WradName, _ = resolveMoment(scan, "", []string{"WRAD"})
		use.CellName = "CELL"
		use.TexName = "TEX"
		use.ClutName = "CLUT"
		use.Nyquist = nyquist
		use.NyquistInferred = inferred

		decisions[i] = use
		nScansUsed++

		if nyquist < nyquistMin {
			nyquistMin = nyquist
		}
		if nyquist > nyquistMax {
			nyquistMax = nyquist
		}
		if nyquist > cfg.MinNyquist && nyquist < nyquistMinUsed {
			nyquistMinUsed = nyquist
		}
	}

	if nScansUsed == 0 {
		return ScanSelection{}
	}
	if math.IsInf(nyquistMinUsed, 1) {
		nyquistMinUsed = nyquistMin
	}

	return ScanSelection{
		Decisions:      decisions,
		NScansUsed:     nScansUsed,
		DualPol:        dualPol,
		NyquistMin:     nyquistMin,
		NyquistMinUsed: nyquistMinUsed,
		NyquistMax:     nyquistMax,
	}
}

// resolveNyquist implements the resolution order of spec.md §4.2: scan
// attribute, then volume attribute (both surfaced the same way through
// PolarScan.Nyquist() — production backends are expected to copy a
// volume-scope Nyquist attribute down onto each scan before handing it to
// the core), then the absolute value of the radial-velocity moment's
// offset (used when the de-aliased form of the quantity is absent, since
// an aliased moment's offset equals its Nyquist interval).
func resolveNyquist(scan PolarScan, vradName string) (nyquist float64, inferred bool) {
	if v := scan.Nyquist(); v > 0 {
		return v, false
	}
	if m, ok := scan.GetMoment(vradName); ok {
		return math.Abs(m.Offset()), true
	}
	return 0, true
}
