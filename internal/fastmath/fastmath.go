// Package fastmath isolates the numerically sensitive primitives the GPD
// fitter leans on: callers should never reach for math.Log1p/math.Log
// directly inside internal/gpd, so that a precision-motivated swap (see
// spec.md's open question on log1p backend drift) only ever touches this
// file.
package fastmath

import "math"

// Log1p returns ln(1+x), using the standard library's correctly-rounded
// implementation. There is no ecosystem replacement that improves on
// math.Log1p for this; keeping it a thin wrapper here is a deliberate,
// documented choice (see DESIGN.md), not an oversight.
func Log1p(x float64) float64 {
	return math.Log1p(x)
}

// Log returns the natural logarithm of x.
func Log(x float64) float64 {
	return math.Log(x)
}

// Exp returns e**x.
func Exp(x float64) float64 {
	return math.Exp(x)
}
