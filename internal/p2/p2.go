// Package p2 implements the Jain-Chlamtac P² algorithm for streaming,
// constant-memory quantile estimation, generalized from a single-quantile
// VaR estimator into a reusable estimator for any target probability in
// (0,1).
package p2

import "sort"

// Estimator tracks a streaming estimate of a single target quantile using
// five markers. It is not safe for concurrent use; callers needing
// concurrent access must provide external synchronization at the call
// site, since Spot already establishes a single-writer contract for the
// whole detector.
type Estimator struct {
	p float64

	// heights holds the five marker heights once m >= 5; before that,
	// init holds the raw samples received so far.
	heights [5]float64
	init    [5]float64

	positions [5]float64 // actual marker positions (1-based ranks)
	desired   [5]float64 // desired marker positions (may be fractional)
	increment [5]float64 // desired position increment per sample

	m int // samples observed
}

// New constructs an Estimator targeting probability p, which must lie in
// (0, 1).
func New(p float64) *Estimator {
	if p <= 0 || p >= 1 {
		panic("p2: target probability must be in (0,1)")
	}
	e := &Estimator{p: p}
	e.increment = [5]float64{0, p / 2, p, (1 + p) / 2, 1}
	return e
}

// Update feeds a new sample into the estimator.
func (e *Estimator) Update(x float64) {
	e.m++

	if e.m <= 5 {
		e.init[e.m-1] = x
		if e.m == 5 {
			e.initializeMarkers()
		}
		return
	}

	k := e.locateCell(x)

	for i := k + 1; i < 5; i++ {
		e.positions[i]++
	}
	for i := 0; i < 5; i++ {
		e.desired[i] += e.increment[i]
	}

	for i := 1; i < 4; i++ {
		d := e.desired[i] - e.positions[i]
		if (d >= 1 && e.positions[i+1]-e.positions[i] > 1) ||
			(d <= -1 && e.positions[i-1]-e.positions[i] < -1) {
			sign := 1.0
			if d < 0 {
				sign = -1.0
			}
			e.adjustMarker(i, sign)
		}
	}
}

// locateCell finds the interval [h_k, h_{k+1}) containing x, extending the
// outer markers if x falls outside the currently observed range. Returns k
// in {0,1,2,3}, matching spec.md's cell numbering (cell 1..4, 0-based here).
func (e *Estimator) locateCell(x float64) int {
	switch {
	case x < e.heights[0]:
		e.heights[0] = x
		return 0
	case x >= e.heights[4]:
		e.heights[4] = x
		return 3
	default:
		for i := 0; i < 4; i++ {
			if x < e.heights[i+1] {
				return i
			}
		}
		return 3
	}
}

func (e *Estimator) adjustMarker(i int, sign float64) {
	newHeight := e.parabolic(i, sign)
	if e.heights[i-1] < newHeight && newHeight < e.heights[i+1] {
		e.heights[i] = newHeight
	} else {
		e.heights[i] = e.linear(i, sign)
	}
	e.positions[i] += sign
}

func (e *Estimator) parabolic(i int, d float64) float64 {
	pPrev, pCur, pNext := e.positions[i-1], e.positions[i], e.positions[i+1]
	hPrev, hCur, hNext := e.heights[i-1], e.heights[i], e.heights[i+1]
	return hCur + d/(pNext-pPrev)*(
		(pCur-pPrev+d)*(hNext-hCur)/(pNext-pCur)+
			(pNext-pCur-d)*(hCur-hPrev)/(pCur-pPrev))
}

func (e *Estimator) linear(i int, d float64) float64 {
	j := i
	if d > 0 {
		j = i + 1
	} else {
		j = i - 1
	}
	return e.heights[i] + d*(e.heights[j]-e.heights[i])/(e.positions[j]-e.positions[i])
}

func (e *Estimator) initializeMarkers() {
	sorted := e.init
	sort.Float64s(sorted[:])
	e.heights = sorted

	for i := 0; i < 5; i++ {
		e.positions[i] = float64(i + 1)
	}
	e.desired[0] = 1
	e.desired[1] = 1 + 2*e.p
	e.desired[2] = 1 + 4*e.p
	e.desired[3] = 3 + 2*e.p
	e.desired[4] = 5
}

// Quantile returns the current estimate of the target quantile: the center
// marker's height once at least 5 samples have been observed, or the
// current maximum as a defensive fallback before that (spec.md §4.2).
func (e *Estimator) Quantile() float64 {
	if e.m < 5 {
		max := e.init[0]
		for i := 1; i < e.m; i++ {
			if e.init[i] > max {
				max = e.init[i]
			}
		}
		return max
	}
	return e.heights[2]
}

// Count returns the number of samples observed so far.
func (e *Estimator) Count() int {
	return e.m
}

// Snapshot is the plain-field persisted form of an Estimator.
type Snapshot struct {
	P         float64
	Heights   [5]float64
	Init      [5]float64
	Positions [5]float64
	Desired   [5]float64
	Increment [5]float64
	M         int
}

// Snapshot captures the estimator's current plain-field state.
func (e *Estimator) Snapshot() Snapshot {
	return Snapshot{
		P:         e.p,
		Heights:   e.heights,
		Init:      e.init,
		Positions: e.positions,
		Desired:   e.desired,
		Increment: e.increment,
		M:         e.m,
	}
}

// FromSnapshot restores an Estimator previously captured by Snapshot.
func FromSnapshot(snap Snapshot) *Estimator {
	return &Estimator{
		p:         snap.P,
		heights:   snap.Heights,
		init:      snap.Init,
		positions: snap.Positions,
		desired:   snap.Desired,
		increment: snap.Increment,
		m:         snap.M,
	}
}
