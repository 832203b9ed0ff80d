package profiler

import "math"

// DerivedConstants are computed once per run from the resolved wavelength
// and configuration (spec.md §3 "Derived constants").
type DerivedConstants struct {
	DbzFactor     float64 // Z -> eta conversion factor, mm^6/m^3 <-> cm^2/km^3
	DbzMax        float64 // per-gate bird dBZ ceiling
	CellDbzMin    float64
	StdDevMinBird float64 // m/s
	WavelengthCM  float64 // resolved wavelength actually used
}

func pow10(x float64) float64 { return math.Pow(10, x) }

func log10(x float64) float64 { return math.Log10(x) }

// dbzFactorFor computes dbzFactor = refracIndex^2 * 1000 * pi^5 / wavelength^4
// (wavelength in cm).
func dbzFactorFor(refracIndex, wavelengthCM float64) float64 {
	return refracIndex * refracIndex * 1000.0 * math.Pow(math.Pi, 5) / math.Pow(wavelengthCM, 4)
}

// DeriveConstants resolves the wavelength to use (a volume attribute
// overrides the configured default, spec.md §6/§8 scenario 6), then
// derives dbzFactor, dbzMax, cellDbzMin and the band-default
// stdDevMinBird (2 m/s for C-band, wavelength<7.5cm; 1 m/s for S-band
// otherwise) unless the user configured an explicit (non-negative) value.
func DeriveConstants(cfg Config, volumeWavelengthCM float64) DerivedConstants {
	wavelength := cfg.RadarWavelengthCM
	if volumeWavelengthCM > 0 {
		wavelength = volumeWavelengthCM
	}

	dbzFactor := dbzFactorFor(cfg.RefractiveIndex, wavelength)

	stdDevMinBird := cfg.StdDevMinBird
	if stdDevMinBird < 0 {
		if wavelength < 7.5 {
			stdDevMinBird = 2.0
		} else {
			stdDevMinBird = 1.0
		}
	}

	return DerivedConstants{
		DbzFactor:     dbzFactor,
		DbzMax:        10 * log10(cfg.EtaMax/dbzFactor),
		CellDbzMin:    10 * log10(cfg.CellEtaMin/dbzFactor),
		StdDevMinBird: stdDevMinBird,
		WavelengthCM:  wavelength,
	}
}
