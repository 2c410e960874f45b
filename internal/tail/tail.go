// Package tail bundles a window of excess magnitudes (internal/peaks) with
// the Generalized Pareto parameters fitted to them (internal/gpd), and
// exposes the GPD quantile and survival-probability formulas. Spot uses the
// quantile to derive its anomaly threshold.
//
// This plays the role a streaming CVaR calculator gives its
// tail-expectation state: a small struct that owns a statistics window and
// the derived model built from it, refit incrementally as new data
// arrives.
package tail

import (
	"math"

	"github.com/victoralfred/spot/internal/fastmath"
	"github.com/victoralfred/spot/internal/gpd"
	"github.com/victoralfred/spot/internal/peaks"
)

// Tail holds a capped window of excess magnitudes and the GPD parameters
// last fitted to it.
type Tail struct {
	peaks *peaks.Peaks
	gamma float64
	sigma float64
}

// New allocates a Tail with its own excess window of the given capacity.
func New(capacity int) *Tail {
	return &Tail{peaks: peaks.New(capacity)}
}

// Push records a new excess magnitude in the window without refitting.
func (t *Tail) Push(y float64) {
	t.peaks.Push(y)
}

// Count returns the number of excesses currently in the window.
func (t *Tail) Count() int {
	return t.peaks.Count()
}

// Mean returns the window's mean excess; ok is false when the window is
// empty.
func (t *Tail) Mean() (float64, bool) {
	return t.peaks.Mean()
}

// Variance returns the window's biased excess variance; ok is false when the
// window is empty.
func (t *Tail) Variance() (float64, bool) {
	return t.peaks.Variance()
}

// Fit refits gamma and sigma from the current excess window via
// internal/gpd. It is a no-op, leaving the last-fitted gamma/sigma in place,
// when the window is empty (spec.md's numerical-failure rule: on failure to
// produce a usable fit, retain the last good parameters rather than reset to
// zero).
func (t *Tail) Fit() (usedFallback bool) {
	y := t.peaks.Values()
	if len(y) == 0 {
		return false
	}
	gamma, sigma, fellBack := gpd.Fit(y)
	t.gamma, t.sigma = gamma, sigma
	return fellBack
}

// Parameters returns the gamma (shape) and sigma (scale) last fitted.
func (t *Tail) Parameters() (gamma, sigma float64) {
	return t.gamma, t.sigma
}

// Quantile returns the excess magnitude y such that P(Y > y) == r, per the
// GPD survival function's inverse (spec.md §4.5):
//
//	y = (sigma/gamma) * (r^-gamma - 1),  |gamma| > 1e-12
//	y = -sigma * ln(r),                  otherwise
//
// r must lie in (0, 1].
func (t *Tail) Quantile(r float64) float64 {
	if math.Abs(t.gamma) > 1e-12 {
		return (t.sigma / t.gamma) * (math.Pow(r, -t.gamma) - 1)
	}
	return -t.sigma * fastmath.Log(r)
}

// Probability returns the GPD tail survival probability P(Y > y) for a
// non-negative excess magnitude y, the inverse of Quantile:
//
//	P(Y > y) = (1 + gamma*y/sigma)^(-1/gamma),  |gamma| > 1e-12
//	P(Y > y) = exp(-y/sigma),                    otherwise
//
// Returns 0 when gamma < 0 and y exceeds the distribution's finite support
// bound -sigma/gamma.
func (t *Tail) Probability(y float64) float64 {
	if math.Abs(t.gamma) <= 1e-12 {
		return fastmath.Exp(-y / t.sigma)
	}
	base := 1 + t.gamma*y/t.sigma
	if base <= 0 {
		return 0
	}
	return fastmath.Exp(-fastmath.Log(base) / t.gamma)
}

// Snapshot is the plain-field persisted form of a Tail.
type Snapshot struct {
	Peaks peaks.Snapshot
	Gamma float64
	Sigma float64
}

// Snapshot captures the current plain-field state.
func (t *Tail) Snapshot() Snapshot {
	return Snapshot{
		Peaks: t.peaks.Snapshot(),
		Gamma: t.gamma,
		Sigma: t.sigma,
	}
}

// FromSnapshot restores a Tail previously captured by Snapshot.
func FromSnapshot(snap Snapshot) *Tail {
	return &Tail{
		peaks: peaks.FromSnapshot(snap.Peaks),
		gamma: snap.Gamma,
		sigma: snap.Sigma,
	}
}
