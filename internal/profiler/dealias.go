package profiler

import "math"

// Dealiasing grid-search and simplex tuning constants, from
// original_source/lib/libdealias.h (NF, VAF, VMAX) and libdealias.c's
// simplex call (initial step 1, termination size 1e-2, 100 iterations).
const (
	dealiasNF       = 40   // azimuthal grid-search steps
	dealiasVAF      = 4    // speed steps per azimuthal step
	dealiasVMax     = 48.0 // m/s, maximum test speed
	simplexInitStep = 1.0
	simplexTol      = 1e-2
	simplexMaxIter  = 100
)

// DealiasResult is the outcome of running the torus-mapping unfold over
// one layer's points (spec.md §4.9).
type DealiasResult struct {
	Converged bool
	U, V      float64
}

// Dealiaser unfolds radial-velocity aliasing for a layer's points by
// torus-mapped simplex minimization (spec.md §4.9, Haase et al. 2004
// JAOT). points' VradDealiased fields are updated in place with the
// unfolded velocity; points with NaN Vrad are left untouched. On simplex
// non-convergence the points are left unchanged and Converged is false
// (spec.md §7's numerical-failure policy: the caller treats this the same
// as not running the dealiaser for that layer).
// include, when non-nil, restricts consideration to points[i] where
// include[i] is true (the layer's velocity-pass gate-code selection,
// spec.md §4.11 step 2); a nil include considers every point.
func Dealiaser(points []Point, include []bool) DealiasResult {
	type obs struct {
		vo, nyquist      float64
		sinAzim, cosAzim float64
		cosElev          float64
		idx              int
	}

	var obss []obs
	nyquistMin := math.Inf(1)
	for i, p := range points {
		if include != nil && !include[i] {
			continue
		}
		if math.IsNaN(p.Vrad) || p.Nyquist <= 0 {
			continue
		}
		azimRad := p.Azim * math.Pi / 180
		elevRad := p.Elev * math.Pi / 180
		obss = append(obss, obs{
			vo: p.Vrad, nyquist: p.Nyquist,
			sinAzim: math.Sin(azimRad), cosAzim: math.Cos(azimRad),
			cosElev: math.Cos(elevRad),
			idx:     i,
		})
		if p.Nyquist < nyquistMin {
			nyquistMin = p.Nyquist
		}
	}
	if len(obss) == 0 || math.IsInf(nyquistMin, 1) {
		return DealiasResult{Converged: false}
	}

	x := make([]float64, len(obss))
	y := make([]float64, len(obss))
	for i, o := range obss {
		x[i] = o.nyquist / math.Pi * math.Cos(o.vo*math.Pi/o.nyquist)
		y[i] = o.nyquist / math.Pi * math.Sin(o.vo*math.Pi/o.nyquist)
	}

	cost := func(u, v float64) float64 {
		sum := 0.0
		for i, o := range obss {
			vm := (u*o.sinAzim + v*o.cosAzim) * o.cosElev
			xt := o.nyquist / math.Pi * math.Cos(vm*math.Pi/o.nyquist)
			yt := o.nyquist / math.Pi * math.Sin(vm*math.Pi/o.nyquist)
			e := math.Abs(xt-x[i]) + math.Abs(yt-y[i])
			if !math.IsNaN(e) {
				sum += e
			}
		}
		return sum
	}

	// Grid search: DEALIAS_NF azimuthal steps x DEALIAS_VAF speeds, scaled
	// by dealiasVMax/dealiasVAF, picking the grid minimum as the simplex
	// seed (deterministic given the same input, spec.md §5).
	bestCost := math.Inf(1)
	var bestU, bestV float64
	for i := 0; i < dealiasNF; i++ {
		for j := 0; j < dealiasVAF; j++ {
			speed := dealiasVMax / dealiasVAF * float64(j+1)
			angle := 2 * math.Pi / dealiasNF * float64(i)
			u := speed * math.Sin(angle)
			v := speed * math.Cos(angle)
			c := cost(u, v)
			if c < bestCost {
				bestCost = c
				bestU, bestV = u, v
			}
		}
	}

	u, v, converged := nelderMead2D(cost, bestU, bestV, simplexInitStep, simplexTol, simplexMaxIter)
	if !converged {
		return DealiasResult{Converged: false}
	}

	// MVA = 2*ceil(VMAX/(2*nyquistMin)): maximum number of folds to test.
	mva := 2 * math.Ceil(dealiasVMax/(2*nyquistMin))

	for _, o := range obss {
		vt := (u*o.sinAzim + v*o.cosAzim) * o.cosElev
		diffVTest := vt - o.vo

		min2 := math.Inf(1)
		best := points[o.idx].Vrad
		for i := 0.0; i < mva+1; i++ {
			dv := o.nyquist * (2*i - mva)
			d := math.Abs(dv - diffVTest)
			if d < min2 {
				min2 = d
				best = o.vo + dv
			}
		}
		points[o.idx].VradDealiased = best
	}

	return DealiasResult{Converged: true, U: u, V: v}
}

// nelderMead2D is a direct port of the GSL nmsimplex2 algorithm used by
// the source (original_source/lib/libdealias.c: fit_field_gsl), scoped to
// the 2-parameter (u,v) case. It terminates when the simplex's mean
// vertex-to-centroid distance drops to tol or after maxIter iterations,
// returning ok=false on non-convergence (spec.md §4.9 step 2).
func nelderMead2D(f func(x, y float64) float64, x0, y0, step, tol float64, maxIter int) (x, y float64, ok bool) {
	type point struct {
		x, y, f float64
	}
	simplex := [3]point{
		{x0, y0, f(x0, y0)},
		{x0 + step, y0, f(x0+step, y0)},
		{x0, y0 + step, f(x0, y0+step)},
	}

	sortSimplex := func() {
		for i := 1; i < 3; i++ {
			for j := i; j > 0 && simplex[j].f < simplex[j-1].f; j-- {
				simplex[j], simplex[j-1] = simplex[j-1], simplex[j]
			}
		}
	}
	sortSimplex()

	simplexSize := func() float64 {
		cx := (simplex[0].x + simplex[1].x + simplex[2].x) / 3
		cy := (simplex[0].y + simplex[1].y + simplex[2].y) / 3
		sum := 0.0
		for _, p := range simplex {
			dx, dy := p.x-cx, p.y-cy
			sum += math.Sqrt(dx*dx + dy*dy)
		}
		return sum / 3
	}

	const (
		alpha = 1.0 // reflection
		gamma = 2.0 // expansion
		rho   = 0.5 // contraction
		sigma = 0.5 // shrink
	)

	for iter := 0; iter < maxIter; iter++ {
		if simplexSize() <= tol {
			return simplex[0].x, simplex[0].y, true
		}

		cx := (simplex[0].x + simplex[1].x) / 2
		cy := (simplex[0].y + simplex[1].y) / 2

		worst := simplex[2]
		reflected := point{cx + alpha*(cx-worst.x), cy + alpha*(cy-worst.y), 0}
		reflected.f = f(reflected.x, reflected.y)

		switch {
		case reflected.f < simplex[0].f:
			expanded := point{cx + gamma*(reflected.x-cx), cy + gamma*(reflected.y-cy), 0}
			expanded.f = f(expanded.x, expanded.y)
			if expanded.f < reflected.f {
				simplex[2] = expanded
			} else {
				simplex[2] = reflected
			}
		case reflected.f < simplex[1].f:
			simplex[2] = reflected
		default:
			contracted := point{cx + rho*(worst.x-cx), cy + rho*(worst.y-cy), 0}
			contracted.f = f(contracted.x, contracted.y)
			if contracted.f < worst.f {
				simplex[2] = contracted
			} else {
				for k := 1; k < 3; k++ {
					simplex[k].x = simplex[0].x + sigma*(simplex[k].x-simplex[0].x)
					simplex[k].y = simplex[0].y + sigma*(simplex[k].y-simplex[0].y)
					simplex[k].f = f(simplex[k].x, simplex[k].y)
				}
			}
		}
		sortSimplex()
	}

	return simplex[0].x, simplex[0].y, simplexSize() <= tol
}
