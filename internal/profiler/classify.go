package profiler

import "math"

// ClassifyGates walks every point in the store and sets its GateCode bits
// per spec.md §4.8/§3. Bit 6 (vDifMax) is not set here: it depends on a
// VVPFit residual and is set by FlagOutliers after the first VVPFit pass.
func ClassifyGates(ps *PointStore, cfg Config, derived DerivedConstants) {
	for i := range ps.Points {
		p := &ps.Points[i]
		var code GateCode

		if cfg.UseClutterMap && p.ClutterValue > cfg.ClutterValueMin {
			code = code.Set(BitStaticClutter)
		}
		if p.Cell >= 2 {
			code = code.Set(BitDynamicClutter)
		} else if p.Cell == 1 {
			code = code.Set(BitClutterFringe)
		}
		if math.IsNaN(p.Vrad) {
			code = code.Set(BitVradMissing)
		}
		if !math.IsNaN(p.Dbz) && p.Dbz > derived.DbzMax {
			code = code.Set(BitDbzTooHigh)
		}
		if !math.IsNaN(p.Vrad) && math.Abs(p.Vrad) < cfg.VradMin {
			code = code.Set(BitVradTooLow)
		}
		if azimOutOfRange(p.Azim, cfg.AzimMin, cfg.AzimMax) {
			code = code.Set(BitAzimOutOfRange)
		}

		p.GateCode = code
	}
}
