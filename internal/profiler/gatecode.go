package profiler

// GateCode packs the per-gate inclusion-decision bit flags (spec.md §3).
// Bits are independent: setting one never alters another (spec.md §8).
type GateCode uint16

const (
	BitStaticClutter   GateCode = 1 << 0 // static clutter map
	BitDynamicClutter  GateCode = 1 << 1 // dynamic cluttermap cell (no fringe)
	BitClutterFringe   GateCode = 1 << 2 // dynamic cluttermap fringe
	BitVradMissing     GateCode = 1 << 3 // vrad missing
	BitDbzTooHigh      GateCode = 1 << 4 // dbz too high for birds
	BitVradTooLow      GateCode = 1 << 5 // |vrad| < vradMin
	BitVDifMax         GateCode = 1 << 6 // vrad deviates from fit beyond absVDifMax
	BitAzimOutOfRange  GateCode = 1 << 7 // azimuth outside [azimMin, azimMax]
)

// Set returns the code with bit set (bit unaffected if already set).
func (c GateCode) Set(bit GateCode) GateCode { return c | bit }

// Clear returns the code with bit cleared.
func (c GateCode) Clear(bit GateCode) GateCode { return c &^ bit }

// Has reports whether bit is set.
func (c GateCode) Has(bit GateCode) bool { return c&bit != 0 }

// azimOutOfRange implements spec.md §4.8's wrap-aware predicate for bit 7.
// When azimMin < azimMax, "outside" means < min || > max. When azimMin >=
// azimMax the interval wraps through 0/360 and "outside" means the
// intersection of the two complementary conditions: azim < min && azim >
// max (i.e. strictly between max and min, the excluded wedge).
func azimOutOfRange(azimDeg, azimMin, azimMax float64) bool {
	if azimMin < azimMax {
		return azimDeg < azimMin || azimDeg > azimMax
	}
	return azimDeg < azimMin && azimDeg > azimMax
}
