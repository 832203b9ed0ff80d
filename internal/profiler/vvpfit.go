package profiler

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// VVPFitResult is the outcome of fitting a horizontally-uniform wind to a
// layer's radial velocities (spec.md §4.10).
type VVPFitResult struct {
	U, V, W           float64
	VarU, VarV, VarW  float64
	Residual          float64 // chi = sqrt(chisq)
	Chisq             float64
	Rejected          bool // chisq < chisqMin: fit is degenerate/overfit
	IncludedIndices   []int
	Fitted            []float64 // fitted vrad for each included point, parallel to IncludedIndices
}

// VVPFit fits vrad = u*sin(azim)*cos(elev) + v*cos(azim)*cos(elev) +
// w*sin(elev) by SVD linear least squares over the given points
// (spec.md §4.10), using vradDealiased as the observed velocity. points
// with NaN vradDealiased are skipped, as is any point index excluded by
// include (nil means "consider every point"). svdTol is the relative
// singular-value cutoff (SVDTOL = 1e-5 in the source). Indices recorded
// in the result's IncludedIndices are indices into the points slice
// passed in, so FlagOutliers can mutate the same backing array.
func VVPFit(points []Point, include []bool, chisqMin, svdTol float64) VVPFitResult {
	var rows [][3]float64
	var obs []float64
	var idx []int

	for i, p := range points {
		if include != nil && !include[i] {
			continue
		}
		if math.IsNaN(p.VradDealiased) {
			continue
		}
		azimRad := p.Azim * math.Pi / 180
		elevRad := p.Elev * math.Pi / 180
		sinA, cosA := math.Sin(azimRad), math.Cos(azimRad)
		cosE, sinE := math.Cos(elevRad), math.Sin(elevRad)
		rows = append(rows, [3]float64{sinA * cosE, cosA * cosE, sinE})
		obs = append(obs, p.VradDealiased)
		idx = append(idx, i)
	}

	n := len(rows)
	if n < 4 {
		return VVPFitResult{Rejected: true}
	}

	a := mat.NewDense(n, 3, nil)
	for i, r := range rows {
		a.SetRow(i, r[:])
	}
	b := mat.NewVecDense(n, obs)

	var svd mat.SVD
	ok := svd.Factorize(a, mat.SVDThin)
	if !ok {
		return VVPFitResult{Rejected: true}
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	maxSV := 0.0
	for _, s := range values {
		if s > maxSV {
			maxSV = s
		}
	}
	cutoff := svdTol * maxSV

	// x = V * diag(1/w_i, w_i>cutoff) * U^T * b  (Numerical Recipes svbksb)
	utb := make([]float64, len(values))
	for j := range values {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += u.At(i, j) * b.AtVec(i)
		}
		if values[j] > cutoff {
			utb[j] = sum / values[j]
		}
	}

	params := make([]float64, 3)
	for k := 0; k < 3; k++ {
		sum := 0.0
		for j := range values {
			sum += v.At(k, j) * utb[j]
		}
		params[k] = sum
	}

	fitted := make([]float64, n)
	sqSum := 0.0
	for i, r := range rows {
		f := r[0]*params[0] + r[1]*params[1] + r[2]*params[2]
		fitted[i] = f
		d := f - obs[i]
		sqSum += d * d
	}
	chisq := sqSum / float64(n)

	// Parameter variance, Numerical Recipes svdvar: var_k = sum_i (V[k][i]/w[i])^2
	// over retained singular values, scaled by chisq.
	variances := make([]float64, 3)
	for k := 0; k < 3; k++ {
		sum := 0.0
		for j := range values {
			if values[j] > cutoff {
				term := v.At(k, j) / values[j]
				sum += term * term
			}
		}
		variances[k] = sum * chisq
	}

	result := VVPFitResult{
		U: params[0], V: params[1], W: params[2],
		VarU: variances[0], VarV: variances[1], VarW: variances[2],
		Chisq:           chisq,
		Residual:        math.Sqrt(chisq),
		IncludedIndices: idx,
		Fitted:          fitted,
	}
	if chisq < chisqMin {
		result.Rejected = true
	}
	return result
}

// FlagOutliers sets GateCode bit 6 (vDifMax) on every included point whose
// fit residual exceeds absVDifMax, to be excluded from the second VVPFit
// pass (spec.md §4.10).
func FlagOutliers(points []Point, result VVPFitResult, absVDifMax float64) {
	for k, pointIdx := range result.IncludedIndices {
		diff := math.Abs(result.Fitted[k] - points[pointIdx].VradDealiased)
		if diff > absVDifMax {
			points[pointIdx].GateCode = points[pointIdx].GateCode.Set(BitVDifMax)
		}
	}
}
