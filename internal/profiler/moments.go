// Package profiler extracts a vertical profile of biological scatterers
// (chiefly migrating birds) from a single polar radar volume.
package profiler

import "math"

// Sample is the tri-state value read from a moment raster: a real
// measurement, an explicit "undetect" (instrument looked but saw nothing),
// or "nodata" (no measurement attempted). Hot loops collapse this to NaN
// once a gate has been read; the tri-state only matters at the read
// boundary where gain/offset/nodata/undetect are applied.
type Sample struct {
	Value  float64
	Detect bool // false for both Undetect and NoData
}

// Real returns the sample as a float64, NaN for Undetect/NoData.
func (s Sample) Real() float64 {
	if !s.Detect {
		return math.NaN()
	}
	return s.Value
}

// Moment is a read-only view over one named parameter of a scan (e.g.
// "DBZH", "VRADH"): its encoding and its raster of encoded samples.
type Moment interface {
	Gain() float64
	Offset() float64
	Nodata() float64
	Undetect() float64
	// Raw returns the raw encoded value at (iAzim, iRang).
	Raw(iAzim, iRang int) float64
}

// At decodes the raw sample at (iAzim, iRang) into its tri-state form.
func At(m Moment, iAzim, iRang int) Sample {
	raw := m.Raw(iAzim, iRang)
	if raw == m.Nodata() || raw == m.Undetect() {
		return Sample{Detect: false}
	}
	return Sample{Value: m.Gain()*raw + m.Offset(), Detect: true}
}

// RealAt decodes straight to a real-valued float64, NaN for missing data.
// This is the hot-loop shortcut referenced in the design notes: most of the
// core works in plain float64/NaN rather than threading the Sample type
// through every inner loop.
func RealAt(m Moment, iAzim, iRang int) float64 {
	return At(m, iAzim, iRang).Real()
}

// MutableMoment is a Moment that additionally supports writing derived
// parameters (TEX, CELL, CLUT) back onto a scan.
type MutableMoment interface {
	Moment
	SetRaw(iAzim, iRang int, raw float64)
}

// PolarScan is a read-only view of one elevation sweep. Decoder-backed
// implementations own nothing; such a view is invalidated the moment its
// backing store (an ODIM/IRIS/NEXRAD decoder, in production) drops it.
// MemScan is the owned, in-memory implementation.
type PolarScan interface {
	ElevationRad() float64
	BeamWidthRad() float64
	AntennaHeight() float64 // metres, above sea level
	RangeScale() float64    // metres per range bin
	RangeStart() float64    // metres, range of first bin
	NAzim() int
	NRang() int
	Nyquist() float64 // 0 if not present at scan scope
	SetNyquist(v float64)

	// GetMoment returns the named moment, or (nil, false) if absent.
	GetMoment(name string) (Moment, bool)
	// EnsureMoment returns the named moment for writing, allocating it
	// (per this scan's geometry, every sample set to nodata) if absent.
	EnsureMoment(name string, gain, offset, nodata, undetect float64) MutableMoment
}

// PolarVolume is an ordered sequence of scans by ascending elevation, plus
// site metadata.
type PolarVolume interface {
	Scans() []PolarScan
	SiteLon() float64
	SiteLat() float64
	SiteHeight() float64 // metres
	WavelengthCM() float64
	VCP() (int, bool)
}
