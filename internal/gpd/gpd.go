// Package gpd fits a Generalized Pareto Distribution to a window of positive
// excess values via Grimshaw's likelihood-maximizing root-finding method,
// falling back to method-of-moments when the root search fails or yields a
// non-finite likelihood.
//
// This generalizes a VaR threshold-then-tail-model split (compute a
// threshold, then characterize the conditional tail beyond it) from an
// empirical-quantile tail model to a fitted parametric one.
package gpd

import (
	"math"
	"sort"

	"github.com/victoralfred/spot/internal/fastmath"
)

const (
	maxIterations  = 150
	convergenceTol = 1e-12
	bracketEps     = 1e-9
	scanSteps      = 60
)

// Fit estimates the GPD shape (gamma) and scale (sigma) parameters for the
// given positive excess values y. sigma is > 0 on return for any non-empty
// y of positive values; an empty y returns (0, 0, true). Fit never
// returns an error; when both the root search and the method-of-moments
// fallback would otherwise be invalid, it returns (0, mean(y)) as the most
// conservative estimate (spec.md §4.4's failure fallback, applied
// recursively).
//
// usedFallback reports whether the method-of-moments fallback was used
// instead of a Grimshaw root, so callers can log it as a diagnostic signal.
func Fit(y []float64) (gamma, sigma float64, usedFallback bool) {
	n := len(y)
	if n == 0 {
		return 0, 0, true
	}

	yMin, yMax, mean, variance := aggregates(y)

	roots := grimshawRoots(y, n, yMin, yMax, mean)
	if len(roots) == 0 {
		return methodOfMoments(mean, variance)
	}

	bestGamma, bestSigma, bestLL, _ := candidate(0, mean, y, n)

	for _, root := range roots {
		g, s, ll, ok := candidate(root, 0, y, n)
		if !ok {
			continue
		}
		if ll > bestLL {
			bestGamma, bestSigma, bestLL = g, s, ll
		}
	}

	if math.IsInf(bestLL, -1) || math.IsNaN(bestLL) {
		return methodOfMoments(mean, variance)
	}

	return bestGamma, bestSigma, false
}

// candidate turns a Grimshaw root x into a (gamma, sigma, log-likelihood)
// triple. x == 0 is the trivial root, for which meanIfTrivial supplies
// sigma directly (gamma = 0/0 is undefined, so it can't be computed from x
// the way every other root is). ok is false when sigma would not be
// positive.
func candidate(x float64, meanIfTrivial float64, y []float64, n int) (gamma, sigma, ll float64, ok bool) {
	if x == 0 {
		gamma, sigma = 0, meanIfTrivial
	} else {
		v := 1.0
		for _, yi := range y {
			v += fastmath.Log1p(x * yi)
		}
		v /= float64(n)
		gamma = v - 1
		sigma = gamma / x
	}

	if !(sigma > 0) {
		return 0, 0, math.Inf(-1), false
	}

	return gamma, sigma, logLikelihood(gamma, sigma, y, n), true
}

func logLikelihood(gamma, sigma float64, y []float64, n int) float64 {
	if sigma <= 0 {
		return math.Inf(-1)
	}

	if math.Abs(gamma) < 1e-12 {
		sum := 0.0
		for _, yi := range y {
			sum += yi
		}
		return -float64(n)*fastmath.Log(sigma) - sum/sigma
	}

	sum := 0.0
	for _, yi := range y {
		t := gamma * yi / sigma
		if 1+t <= 0 {
			return math.Inf(-1)
		}
		sum += fastmath.Log1p(t)
	}
	return -float64(n)*fastmath.Log(sigma) - (1+1/gamma)*sum
}

// grimshawRoots searches the two classical Grimshaw brackets for roots of
// w(x) = u(x)*v(x) - 1 and returns every root found.
func grimshawRoots(y []float64, n int, yMin, yMax, mean float64) []float64 {
	w := func(x float64) float64 {
		u, v := 0.0, 0.0
		for _, yi := range y {
			xy := x * yi
			u += 1 / (1 + xy)
			v += fastmath.Log1p(xy)
		}
		u /= float64(n)
		v = 1 + v/float64(n)
		return u*v - 1
	}

	var roots []float64

	if yMax > 0 {
		lo := -1/yMax + bracketEps/yMax
		hi := -bracketEps
		if lo < hi {
			roots = append(roots, scanBracket(w, lo, hi)...)
		}
	}

	if mean > yMin {
		// y_min ~ 0 would blow up the classical bound; cap it to a large
		// finite value instead of skipping the bracket outright, per
		// spec.md §4.4.
		minForBound := yMin
		if minForBound < 1e-12 {
			minForBound = 1e-12
		}
		upper := 2 * (mean - yMin) / (minForBound * mean)
		if upper > 1e8 {
			upper = 1e8
		}
		if upper > bracketEps {
			roots = append(roots, scanBracket(w, bracketEps, upper)...)
		}
	}

	return roots
}

// scanBracket isolates sign changes of w across [lo, hi] by sampling, then
// refines each bracketed interval with hybrid bisection/Newton.
func scanBracket(w func(float64) float64, lo, hi float64) []float64 {
	var roots []float64

	step := (hi - lo) / scanSteps
	prevX := lo
	prevW := w(lo)
	for i := 1; i <= scanSteps; i++ {
		x := lo + step*float64(i)
		fx := w(x)
		if prevW == 0 {
			roots = append(roots, prevX)
		} else if (prevW < 0) != (fx < 0) {
			if root, ok := refine(w, prevX, x); ok {
				roots = append(roots, root)
			}
		}
		prevX, prevW = x, fx
	}

	return roots
}

// refine applies hybrid bisection/Newton root finding within [a,b], where
// w(a) and w(b) have opposite signs (or one is exactly zero).
func refine(w func(float64) float64, a, b float64) (float64, bool) {
	fa, fb := w(a), w(b)
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}
	if (fa < 0) == (fb < 0) {
		return 0, false
	}

	x := (a + b) / 2
	fx := w(x)

	for i := 0; i < maxIterations; i++ {
		if math.Abs(fx) < convergenceTol || (b-a) < convergenceTol*math.Max(1, math.Abs(x)) {
			return x, true
		}

		h := 1e-6 * math.Max(1, math.Abs(x))
		deriv := (w(x+h) - w(x-h)) / (2 * h)

		used := false
		if deriv != 0 {
			nx := x - fx/deriv
			if nx > a && nx < b {
				nfx := w(nx)
				if math.Abs(nfx) < math.Abs(fx)/2 {
					x, fx = nx, nfx
					used = true
				}
			}
		}

		if !used {
			if (fx < 0) == (fa < 0) {
				a, fa = x, fx
			} else {
				b, fb = x, fx
			}
			x = (a + b) / 2
			fx = w(x)
		}
	}

	return x, true
}

func methodOfMoments(mean, variance float64) (gamma, sigma float64, usedFallback bool) {
	if variance <= 0 {
		return 0, mean, true
	}

	ratio := mean * mean / variance
	gamma = 0.5 * (ratio - 1)
	sigma = 0.5 * mean * (ratio + 1)
	if sigma <= 0 {
		return 0, mean, true
	}
	return gamma, sigma, true
}

func aggregates(y []float64) (min, max, mean, variance float64) {
	sorted := append([]float64(nil), y...)
	sort.Float64s(sorted)
	min, max = sorted[0], sorted[len(sorted)-1]

	sum, sumSq := 0.0, 0.0
	for _, v := range y {
		sum += v
		sumSq += v * v
	}
	n := float64(len(y))
	mean = sum / n
	variance = sumSq/n - mean*mean
	return
}
