package profiler

import (
	"math"

	"github.com/google/uuid"
)

// svdTol is the fixed relative singular-value cutoff used by VVPFit
// throughout a run (SVDTOL in original_source/lib/constants.h).
const svdTol = 1e-5

// ProfileNoData marks a layer/field the run never sampled; ProfileUndetect
// marks a layer that was sampled but a fit or aggregate could not be
// computed (spec.md §3's ProfileRow sentinels). Both are non-NaN so they
// compare equal to themselves and to each other only by value, unlike NaN.
var (
	ProfileNoData   = math.Inf(-1)
	ProfileUndetect = math.Inf(1)
)

// ProfileRow is one altitude layer of one profile type (spec.md §3).
type ProfileRow struct {
	AltMin, AltMax float64
	U, V, W        float64
	HSpeed, HDir   float64
	Residual       float64
	HasGap         bool
	DbzAvg         float64
	NPoints        int
	Eta            float64
	Density        float64
	NPointsZ       int
}

func newRow(altMin, altMax float64) ProfileRow {
	return ProfileRow{
		AltMin: altMin, AltMax: altMax,
		U: ProfileNoData, V: ProfileNoData, W: ProfileNoData,
		HSpeed: ProfileNoData, HDir: ProfileNoData, Residual: ProfileNoData,
		DbzAvg: ProfileNoData, Eta: ProfileNoData, Density: ProfileNoData,
	}
}

// ProfileType selects which scatterer population a pass targets. Type 2
// (non-birds) is reserved in the source and never computed here.
type ProfileType int

const (
	ProfileTypeBirds ProfileType = 1
	ProfileTypeAll   ProfileType = 3
)

// Profile is the run-level wrapper around the three profile-type tables
// (only Birds and All are populated; type 2 is reserved), carrying the
// metadata an external CSV/JSON/HDF5 emitter needs without re-deriving it
// (SPEC_FULL.md §5's supplemented JSON/CSV export shape).
type Profile struct {
	RunID string

	Birds []ProfileRow
	All   []ProfileRow

	RCS             float64
	SdVvpThreshold  float64
	VCP             int
	HasVCP          bool
	RadarLon        float64
	RadarLat        float64
	RadarHeight     float64
	RadarWavelength float64
	SourceFile      string
}

// includeGate implements the truth table of spec.md §4.11: for each
// gate-code bit that is set, decide whether the gate is still included
// for this profile type and quantity (0=reflectivity, 1=velocity). Bits
// left clear never exclude a gate.
func includeGate(profileType ProfileType, quantityType int, code GateCode, requireVrad bool) bool {
	if code.Has(BitStaticClutter) {
		return false
	}
	if code.Has(BitDynamicClutter) && profileType == ProfileTypeBirds {
		return false
	}
	if code.Has(BitClutterFringe) && profileType == ProfileTypeBirds {
		return false
	}
	if code.Has(BitVradMissing) {
		if quantityType == 1 {
			return false
		}
		if quantityType == 0 && requireVrad {
			return false
		}
	}
	if code.Has(BitDbzTooHigh) && profileType == ProfileTypeBirds && quantityType == 0 {
		return false
	}
	if code.Has(BitVradTooLow) {
		return false
	}
	if code.Has(BitVDifMax) && quantityType == 1 {
		return false
	}
	if code.Has(BitAzimOutOfRange) && quantityType == 0 {
		return false
	}
	return true
}

// hasAzimuthGap partitions [0,360) into nBinsGap equal bins and reports
// whether any two cyclically-adjacent bins both hold fewer than
// nObsGapMin observations (spec.md §4.11).
func hasAzimuthGap(azimuths []float64, nBinsGap, nObsGapMin int) bool {
	if nBinsGap <= 0 {
		return false
	}
	counts := make([]int, nBinsGap)
	binWidth := 360.0 / float64(nBinsGap)
	for _, a := range azimuths {
		b := int(math.Mod(a, 360) / binWidth)
		if b < 0 {
			b += nBinsGap
		}
		if b >= nBinsGap {
			b = nBinsGap - 1
		}
		counts[b]++
	}
	for i := 0; i < nBinsGap; i++ {
		j := (i + 1) % nBinsGap
		if counts[i] < nObsGapMin && counts[j] < nObsGapMin {
			return true
		}
	}
	return false
}

// RunProfileEngine orchestrates spec.md §4.11: iterate profile types
// {all, birds} in that order over every layer, running the reflectivity
// pass then up to two velocity (Dealiaser + VVPFit, with outlier
// rejection) passes, and forcing bird density to zero where the all-
// scatterer residual says the layer is not dominated by biological
// targets.
func RunProfileEngine(ps *PointStore, cfg Config, derived DerivedConstants) *Profile {
	nLayers := len(ps.IndexFrom)
	birds := make([]ProfileRow, nLayers)
	all := make([]ProfileRow, nLayers)
	scatterersAreNotBirds := make([]bool, nLayers)
	dealiasedOnce := make([]bool, nLayers)

	for _, pt := range []ProfileType{ProfileTypeAll, ProfileTypeBirds} {
		rows := all
		if pt == ProfileTypeBirds {
			rows = birds
		}

		for layer := 0; layer < nLayers; layer++ {
			altMin := float64(layer) * cfg.LayerThickness
			altMax := altMin + cfg.LayerThickness
			row := newRow(altMin, altMax)
			points := ps.Layer(layer)

			runReflectivityPass(&row, pt, points, cfg, derived, scatterersAreNotBirds[layer])

			converged := runVelocityPasses(&row, pt, layer, points, cfg, &dealiasedOnce[layer])
			if converged && pt == ProfileTypeAll {
				scatterersAreNotBirds[layer] = row.Residual < derived.StdDevMinBird
			}

			rows[layer] = row
		}
	}

	runID := uuid.New().String()
	return &Profile{
		RunID:          runID,
		Birds:          birds,
		All:            all,
		RCS:            cfg.BirdRadarCrossSection,
		SdVvpThreshold: derived.StdDevMinBird,
	}
}

func runReflectivityPass(row *ProfileRow, pt ProfileType, points []Point, cfg Config, derived DerivedConstants, notBirds bool) {
	sum := 0.0
	count := 0
	for i := range points {
		p := &points[i]
		if !includeGate(pt, 0, p.GateCode, cfg.RequireVrad) {
			continue
		}
		if math.IsNaN(p.Dbz) {
			continue
		}
		sum += pow10(p.Dbz / 10)
		count++
	}
	row.NPointsZ = count

	if count < cfg.NPointsIncludedMin {
		row.DbzAvg = ProfileUndetect
		row.Eta = ProfileUndetect
		if pt == ProfileTypeBirds {
			row.Density = ProfileUndetect
		}
		return
	}

	undbzAvg := sum / float64(count)
	row.DbzAvg = 10 * log10(undbzAvg)
	row.Eta = derived.DbzFactor * undbzAvg
	if pt == ProfileTypeBirds {
		if notBirds {
			row.Density = 0
		} else {
			row.Density = row.Eta / cfg.BirdRadarCrossSection
		}
	}
}

// runVelocityPasses runs the dealias + VVPFit (with one outlier-rejection
// refit) sequence for one layer/profile-type and fills in row's wind
// fields. It returns whether the fit converged (used to gate the
// scatterersAreNotBirds residual check, which only applies after a
// successful all-scatterer fit).
func runVelocityPasses(row *ProfileRow, pt ProfileType, layer int, points []Point, cfg Config, dealiasedOnce *bool) bool {
	include := make([]bool, len(points))
	var azimuths []float64
	nIncluded := 0
	for i := range points {
		ok := includeGate(pt, 1, points[i].GateCode, cfg.RequireVrad)
		include[i] = ok
		if ok {
			azimuths = append(azimuths, points[i].Azim)
			nIncluded++
		}
	}
	row.NPoints = nIncluded
	if nIncluded == 0 {
		return false
	}

	// The layer is sampled: until a fit succeeds, its wind fields are UNDETECT.
	row.U, row.V, row.W = ProfileUndetect, ProfileUndetect, ProfileUndetect
	row.HSpeed, row.HDir, row.Residual = ProfileUndetect, ProfileUndetect, ProfileUndetect

	if hasAzimuthGap(azimuths, cfg.NBinsGap, cfg.NObsGapMin) {
		row.HasGap = true
		return false
	}

	if cfg.DealiasVrad && (!*dealiasedOnce || !cfg.DealiasRecycle) {
		Dealiaser(points, include)
		*dealiasedOnce = true
	}

	fit := VVPFit(points, include, cfg.ChisqMin, svdTol)
	if !fit.Rejected {
		FlagOutliers(points, fit, cfg.AbsVDifMax)
		include2 := make([]bool, len(points))
		for i := range points {
			include2[i] = includeGate(pt, 1, points[i].GateCode, cfg.RequireVrad)
		}
		if refit := VVPFit(points, include2, cfg.ChisqMin, svdTol); !refit.Rejected {
			fit = refit
		}
	}

	if fit.Rejected {
		return false
	}

	row.U, row.V, row.W = fit.U, fit.V, fit.W
	row.HSpeed = math.Hypot(fit.U, fit.V)
	dir := math.Atan2(fit.U, fit.V) * 180 / math.Pi
	if dir < 0 {
		dir += 360
	}
	row.HDir = dir
	row.Residual = fit.Residual
	return true
}
