package profiler

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SetMomentReal encodes a real-valued sample and writes it through m's
// gain/offset, the inverse of RealAt.
func SetMomentReal(m MutableMoment, iAzim, iRang int, value float64) {
	m.SetRaw(iAzim, iRang, (value-m.Offset())/m.Gain())
}

// texGain/texOffset/texNodata/texUndetect are the encoding parameters for
// the TEX parameter TextureCalc synthesizes onto a scan.
const (
	texGain     = 0.01
	texOffset   = 0.0
	texNodata   = -999.0
	texUndetect = -998.0
)

// TextureCalc computes, for every gate of a scan, the local standard
// deviation of radial velocity over a small azimuth x range window, single
// -pol only (spec.md §4.6). The result is written onto a new TEX moment
// allocated on scan.
//
// calcTexture's offset arithmetic is one of spec.md §9's open questions:
// the source re-adds a raw offset term into an already gain/offset-decoded
// difference. This implementation mirrors the literal intent (difference
// of two already-decoded real-unit values) rather than the literal C
// double-counting, since RealAt already applies gain/offset once at the
// read boundary; re-applying it here would not reproduce "the same
// physical quantity twice", it would silently shift every texture value
// by a second copy of the offset. See SPEC_FULL.md Decision 2.
func TextureCalc(scan PolarScan, vrad Moment, nAzimNeighborhood, nRangNeighborhood, nCountMin int) MutableMoment {
	nAzim := scan.NAzim()
	nRang := scan.NRang()
	tex := scan.EnsureMoment("TEX", texGain, texOffset, texNodata, texUndetect)

	aRadius := nAzimNeighborhood / 2
	rRadius := nRangNeighborhood / 2

	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			center := RealAt(vrad, iAzim, iRang)
			if math.IsNaN(center) {
				tex.SetRaw(iAzim, iRang, texNodata)
				continue
			}

			var diffs []float64
			for da := -aRadius; da <= aRadius; da++ {
				for dr := -rRadius; dr <= rRadius; dr++ {
					if da == 0 && dr == 0 {
						continue
					}
					nr := iRang + dr
					if nr < 0 || nr >= nRang {
						continue
					}
					local := RealAt(vrad, iAzim+da, nr)
					if math.IsNaN(local) {
						continue
					}
					diffs = append(diffs, center-local)
				}
			}

			if len(diffs) < nCountMin {
				tex.SetRaw(iAzim, iRang, texNodata)
				continue
			}

			// var = E[Δ²] - E[Δ]² (population variance, spec.md §4.6),
			// not gonum/stat's Bessel-corrected sample variance.
			mean := stat.Mean(diffs, nil)
			sq := make([]float64, len(diffs))
			for i, d := range diffs {
				sq[i] = d * d
			}
			meanSq := stat.Mean(sq, nil)
			variance := meanSq - mean*mean
			if variance < 0 {
				variance = 0
			}
			SetMomentReal(tex, iAzim, iRang, math.Sqrt(variance))
		}
	}

	return tex
}
