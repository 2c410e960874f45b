// Package peaks maintains running summary statistics (sum, sum-of-squares,
// min) over the excess magnitudes currently stored in a fixed-capacity
// ubend.Buffer, generalized from the threshold/tail split used by a
// streaming VaR/CVaR calculator's tail-expectation bookkeeping, where tail
// statistics are likewise maintained incrementally rather than recomputed
// from scratch on access.
package peaks

import "github.com/victoralfred/spot/internal/ubend"

// Peaks wraps a ubend.Buffer and keeps its sum, sum-of-squares, and minimum
// in sync with every push, including evictions.
type Peaks struct {
	buf   *ubend.Buffer
	sum   float64
	sumSq float64
	min   float64
}

// New allocates a Peaks with its own Ubend of the given capacity.
func New(capacity int) *Peaks {
	return &Peaks{buf: ubend.New(capacity)}
}

// Push inserts x, updating the running aggregates. If the buffer was full,
// the evicted value's contribution is subtracted first; if the evicted
// value was the running minimum, min is recomputed by scanning the buffer
// (spec.md §4.3).
func (p *Peaks) Push(x float64) {
	evicted, ok := p.buf.Push(x)
	if ok {
		p.sum -= evicted
		p.sumSq -= evicted * evicted
		if evicted == p.min {
			p.min = scanMin(p.buf)
		}
	}

	p.sum += x
	p.sumSq += x * x
	if p.buf.Len() == 1 {
		p.min = x
	} else if x < p.min {
		p.min = x
	}
}

func scanMin(buf *ubend.Buffer) float64 {
	min := 0.0
	first := true
	buf.Each(func(v float64) {
		if first || v < min {
			min = v
			first = false
		}
	})
	return min
}

// Count returns the number of excesses currently stored.
func (p *Peaks) Count() int {
	return p.buf.Len()
}

// Mean returns sum/count. The second return value is false if count is
// zero, since the mean is undefined for an empty window.
func (p *Peaks) Mean() (float64, bool) {
	n := p.Count()
	if n == 0 {
		return 0, false
	}
	return p.sum / float64(n), true
}

// Variance returns the biased population variance sumSq/n - mean^2. The
// second return value is false if count is zero.
func (p *Peaks) Variance() (float64, bool) {
	n := p.Count()
	if n == 0 {
		return 0, false
	}
	mean := p.sum / float64(n)
	return p.sumSq/float64(n) - mean*mean, true
}

// Min returns the running minimum of the currently live excesses. Undefined
// (returns 0) if Count() == 0; callers must check Count first.
func (p *Peaks) Min() float64 {
	return p.min
}

// Sum returns the running sum of the currently live excesses.
func (p *Peaks) Sum() float64 {
	return p.sum
}

// SumSquares returns the running sum of squares of the currently live
// excesses.
func (p *Peaks) SumSquares() float64 {
	return p.sumSq
}

// Each calls fn once per live excess value, in storage order, for callers
// that need a full pass over the live values (e.g. to find the maximum,
// which Peaks itself does not track).
func (p *Peaks) Each(fn func(float64)) {
	p.buf.Each(fn)
}

// Values returns a fresh slice holding every currently live excess value, in
// storage order. The GPD fitter needs the full window as a slice rather than
// a callback since it scans it multiple times (bracket search, refinement,
// likelihood evaluation).
func (p *Peaks) Values() []float64 {
	out := make([]float64, 0, p.Count())
	p.buf.Each(func(v float64) {
		out = append(out, v)
	})
	return out
}

// Snapshot is the plain-field persisted form of a Peaks.
type Snapshot struct {
	Buffer ubend.Snapshot
	Sum    float64
	SumSq  float64
	Min    float64
}

// Snapshot captures the current plain-field state.
func (p *Peaks) Snapshot() Snapshot {
	return Snapshot{
		Buffer: p.buf.Snapshot(),
		Sum:    p.sum,
		SumSq:  p.sumSq,
		Min:    p.min,
	}
}

// FromSnapshot restores a Peaks previously captured by Snapshot.
func FromSnapshot(snap Snapshot) *Peaks {
	return &Peaks{
		buf:   ubend.FromSnapshot(snap.Buffer),
		sum:   snap.Sum,
		sumSq: snap.SumSq,
		min:   snap.Min,
	}
}
