package profiler

import "fmt"

// Config collects every threshold and option named in spec.md §6. It
// follows the teacher's config-builder idiom (internal/lidar/config.go's
// BackgroundConfig/DefaultBackgroundConfig/Validate triad): a plain struct
// with a defaults constructor and a Validate method, no hidden global
// state.
type Config struct {
	// Geometry
	NLayers        int
	LayerThickness float64 // metres
	RangeMin       float64 // metres
	RangeMax       float64 // metres
	AzimMin        float64 // degrees
	AzimMax        float64 // degrees
	ElevMin        float64 // degrees
	ElevMax        float64 // degrees

	// Moments
	DBZType        string // preferred reflectivity quantity name
	RequireVrad    bool
	RhohvThresMin  float64
	DBZThresMin    float64

	// Physics
	RadarWavelengthCM    float64 // overridden by volume attribute when present
	BirdRadarCrossSection float64 // cm^2
	StdDevMinBird        float64 // m/s; <0 means "use band default"
	CellEtaMin           float64
	EtaMax               float64
	RefractiveIndex      float64

	// Dealiasing
	DealiasVrad        bool
	DealiasRecycle     bool
	MinNyquist         float64
	MaxNyquistDealias  float64

	// Clutter
	UseClutterMap   bool
	ClutterValueMin float64
	ClutterMapPath  string

	// Segmentation (MistNet-style adapter)
	UseMistNet          bool
	MistNetElevs        []float64
	MistNetElevsOnly    bool
	MistNetPath         string

	// Misc thresholds (original_source/lib/constants.h)
	AreaCellMin            float64
	ChisqMin               float64
	FringeDist             float64
	NBinsGap               int
	NObsGapMin             int
	NNeighborsMin          int
	NCountMin              int
	VradMin                float64
	AbsVDifMax             float64
	NAzimNeighborhood      int
	NRangNeighborhood      int
	NPointsIncludedMin     int
	CellClutterFractionMax float64
	CellStdDevMax          float64

	// Diagnostics sink; nil disables diagnostic output.
	Diagnostics Sink
}

// DefaultConfig returns vol2bird's documented defaults
// (original_source/lib/constants.h), translated to SI/degree units.
func DefaultConfig() Config {
	return Config{
		NLayers:        30,
		LayerThickness: 200.0,
		RangeMin:       5000.0,
		RangeMax:       25000.0,
		AzimMin:        0.0,
		AzimMax:        360.0,
		ElevMin:        0.0,
		ElevMax:        90.0,

		DBZType:       "DBZH",
		RequireVrad:   false,
		RhohvThresMin: 0.95,
		DBZThresMin:   0.0, // DBZMIN

		RadarWavelengthCM:     5.3,
		BirdRadarCrossSection: 11.0,
		StdDevMinBird:         -1, // band default
		CellEtaMin:            compositeEtaFromDbz(15.0, 0.964, 5.3),
		EtaMax:                compositeEtaFromDbz(20.0, 0.964, 5.3),
		RefractiveIndex:       0.964,

		DealiasVrad:       true,
		DealiasRecycle:    true,
		MinNyquist:        20.0,
		MaxNyquistDealias: 1e9,

		UseClutterMap:   false,
		ClutterValueMin: -10.0, // DBZCLUTTER

		UseMistNet:       false,
		MistNetElevsOnly: false,

		AreaCellMin:            4.0, // AREACELL, km^2
		ChisqMin:               1e-5,
		FringeDist:             5000.0,
		NBinsGap:               8,
		NObsGapMin:             5,
		NNeighborsMin:          5,
		NCountMin:              4,
		VradMin:                1.0,
		AbsVDifMax:             10.0,
		NAzimNeighborhood:      3,
		NRangNeighborhood:      3,
		NPointsIncludedMin:     25, // NDBZMIN
		CellClutterFractionMax: 0.5,
		CellStdDevMax:          5.0, // STDEVCELL
	}
}

// compositeEtaFromDbz inverts DeriveConstants' dBZ-from-eta formula, used
// only to express CellEtaMin/EtaMax defaults in the units the source
// states them (dBZ) while storing them internally as eta (cm^2/km^3).
func compositeEtaFromDbz(dbz, refracIndex, wavelengthCM float64) float64 {
	dbzFactor := dbzFactorFor(refracIndex, wavelengthCM)
	return dbzFactor * pow10(dbz/10)
}

// Validate rejects out-of-range configuration before a run starts
// (spec.md §7's "Configuration invalid" error kind: fail initialization
// with a single diagnostic, no partial run).
func (c Config) Validate() error {
	if c.NLayers <= 0 {
		return fmt.Errorf("NLayers must be positive, got %d", c.NLayers)
	}
	if c.LayerThickness <= 0 {
		return fmt.Errorf("LayerThickness must be positive, got %f", c.LayerThickness)
	}
	if c.RangeMin < 0 || c.RangeMax <= c.RangeMin {
		return fmt.Errorf("RangeMin/RangeMax invalid: %f/%f", c.RangeMin, c.RangeMax)
	}
	if c.ElevMin < 0 || c.ElevMax > 90 || c.ElevMin > c.ElevMax {
		return fmt.Errorf("ElevMin/ElevMax invalid: %f/%f", c.ElevMin, c.ElevMax)
	}
	if c.RadarWavelengthCM <= 0 {
		return fmt.Errorf("RadarWavelengthCM must be positive, got %f", c.RadarWavelengthCM)
	}
	if c.BirdRadarCrossSection <= 0 {
		return fmt.Errorf("BirdRadarCrossSection must be positive, got %f", c.BirdRadarCrossSection)
	}
	if c.MinNyquist <= 0 {
		return fmt.Errorf("MinNyquist must be positive, got %f", c.MinNyquist)
	}
	if c.NBinsGap <= 0 {
		return fmt.Errorf("NBinsGap must be positive, got %d", c.NBinsGap)
	}
	if c.UseClutterMap && c.ClutterMapPath == "" {
		return fmt.Errorf("UseClutterMap set but ClutterMapPath is empty")
	}
	if c.UseMistNet && c.MistNetPath == "" {
		return fmt.Errorf("UseMistNet set but MistNetPath is empty")
	}
	return nil
}
