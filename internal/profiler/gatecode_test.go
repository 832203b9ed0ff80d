package profiler

import "testing"

func TestGateCode_BitsAreIndependent(t *testing.T) {
	var c GateCode
	c = c.Set(BitStaticClutter)
	c = c.Set(BitVradMissing)

	if !c.Has(BitStaticClutter) || !c.Has(BitVradMissing) {
		t.Fatal("expected both set bits to read back set")
	}
	if c.Has(BitDynamicClutter) || c.Has(BitDbzTooHigh) {
		t.Fatal("unset bits must read back unset")
	}

	c = c.Clear(BitStaticClutter)
	if c.Has(BitStaticClutter) {
		t.Fatal("cleared bit still set")
	}
	if !c.Has(BitVradMissing) {
		t.Fatal("clearing one bit must not affect another")
	}
}

func TestAzimOutOfRange_NonWrapping(t *testing.T) {
	cases := []struct {
		azim, min, max float64
		want           bool
	}{
		{10, 0, 360, false},
		{-1, 0, 360, true},
		{361, 0, 360, true},
		{100, 50, 150, false},
		{40, 50, 150, true},
		{160, 50, 150, true},
	}
	for _, c := range cases {
		if got := azimOutOfRange(c.azim, c.min, c.max); got != c.want {
			t.Errorf("azimOutOfRange(%v,%v,%v) = %v, want %v", c.azim, c.min, c.max, got, c.want)
		}
	}
}

func TestAzimOutOfRange_Wrapping(t *testing.T) {
	// min=350, max=10: the included wedge wraps through 0; "outside" is the
	// complementary wedge strictly between max and min.
	cases := []struct {
		azim float64
		want bool
	}{
		{355, false}, // inside the wrap wedge
		{5, false},   // inside the wrap wedge
		{180, true},  // well inside the excluded wedge
		{11, true},
		{349, true},
	}
	for _, c := range cases {
		if got := azimOutOfRange(c.azim, 350, 10); got != c.want {
			t.Errorf("azimOutOfRange(%v,350,10) = %v, want %v", c.azim, got, c.want)
		}
	}
}
