package profiler

import (
	"math"
	"testing"
)

func TestGeometry_RangeHeightRoundTrip(t *testing.T) {
	geom := NewGeometry(4.0 / 3.0)

	for _, d := range []float64{0, 1000, 50000, 150000, 250000} {
		for _, elevDeg := range []float64{0, 5, 15, 30} {
			elevRad := elevDeg * math.Pi / 180
			r := geom.Range(d, elevRad)
			h := geom.HeightFromRange(r, elevRad)
			got := geom.Distance(r, elevRad, h)
			if math.Abs(got-d) > 1.0 {
				t.Errorf("distance(range(d=%f,e=%f),e,h) = %f, want within 1m of %f", d, elevDeg, got, d)
			}
		}
	}
}

func TestGeometry_BeamHeightIncreasesWithRange(t *testing.T) {
	geom := NewGeometry(4.0 / 3.0)
	elevRad := 1.0 * math.Pi / 180
	h1 := geom.BeamHeight(50, 10000, elevRad)
	h2 := geom.BeamHeight(50, 50000, elevRad)
	if h2 <= h1 {
		t.Errorf("expected beam height to increase with range, got h1=%f h2=%f", h1, h2)
	}
}
