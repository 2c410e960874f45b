// Package spot implements SPOT (Streaming Peaks Over Threshold), an online
// anomaly detector for univariate real-valued time series. A Spot learns the
// extreme tail of a distribution from a finite training sample via the
// Generalized Pareto Distribution, then classifies each subsequent value as
// Normal, Excess, or Anomaly while continuously refitting its tail model.
//
// Spot plays the role a streaming CVaR calculator plays in a risk engine:
// a top-level aggregate that owns a threshold, a running summary window,
// and a fitted tail model, and sequences fit/update/query operations over
// them.
package spot

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/victoralfred/spot/internal/p2"
	"github.com/victoralfred/spot/internal/tail"
)

// Spot is the top-level streaming anomaly detector. Not safe for concurrent
// use; callers needing concurrent access must provide external
// synchronization (single-writer contract, spec.md §5).
type Spot struct {
	id     uuid.UUID
	config Config
	logger *zap.Logger

	n  uint64
	nt uint64
	t  float64
	z  float64

	fitted bool

	p2   *p2.Estimator
	tail *tail.Tail
}

// NewSpot constructs an unfitted Spot. Returns an ErrInvalidConfig
// *SpotError if cfg violates a §3 constraint.
func NewSpot(cfg Config) (*Spot, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Spot{
		id:     uuid.New(),
		config: cfg,
		logger: cfg.logger(),
		t:      math.NaN(),
		z:      math.NaN(),
		p2:     p2.New(cfg.Level),
		tail:   tail.New(cfg.MaxExcess),
	}, nil
}

func (s *Spot) mirror(x float64) float64 {
	if s.config.LowTail {
		return -x
	}
	return x
}

func (s *Spot) excessProbability() float64 {
	return s.config.Q / (1 - s.config.Level)
}

// Fit trains the detector on a batch of samples. Training does not
// increment N or Nt. Returns:
//   - ErrInsufficientData if len(samples) is below max(5, 1/(1-level)).
//   - ErrInsufficientTail if fewer than 5 samples exceed the fitted
//     tail-entry threshold.
func (s *Spot) Fit(samples []float64) error {
	minSamples := int(math.Ceil(1 / (1 - s.config.Level)))
	if minSamples < 5 {
		minSamples = 5
	}
	if len(samples) < minSamples {
		return newError(ErrInsufficientData, "Fit", "not enough training samples")
	}

	for _, raw := range samples {
		s.p2.Update(s.mirror(raw))
	}
	s.t = s.p2.Quantile()

	for _, raw := range samples {
		v := s.mirror(raw)
		if v > s.t {
			s.tail.Push(v - s.t)
		}
	}

	if s.tail.Count() < 5 {
		return newError(ErrInsufficientTail, "Fit", "fewer than 5 training excesses above the tail-entry threshold")
	}

	if fellBack := s.tail.Fit(); fellBack {
		s.logger.Debug("gpd fit fell back to method of moments during training")
	}
	if _, sigma := s.tail.Parameters(); sigma <= 0 {
		return newError(ErrNumericalFailure, "Fit", "gpd fitter produced a non-positive scale")
	}

	s.z = s.t + s.tail.Quantile(s.excessProbability())
	s.fitted = true
	return nil
}

// Step classifies a single value and folds it into the tail model when it
// is an Excess or a retained Anomaly. Step panics if called before Fit
// succeeds — like the reference state machine, Step is only a valid
// operation in the Fitted state, and the Go signature mandated by the
// external interface (spec.md §6) leaves Step infallible, so a precondition
// violation here is a programming error rather than a recoverable one.
func (s *Spot) Step(x float64) Status {
	if !s.fitted {
		panic(newError(ErrNotFitted, "Step", "step called before a successful fit"))
	}

	s.n++

	v := s.mirror(x)
	if v <= s.t {
		return Normal
	}

	if v > s.z {
		if s.config.DiscardAnomalies {
			s.nt++
			return Anomaly
		}
		s.acceptExcess(v)
		s.nt++
		return Anomaly
	}

	s.acceptExcess(v)
	s.nt++
	return Excess
}

// acceptExcess pushes a new excess into the tail window and refits. On
// numerical failure, (gamma, sigma) and therefore z are left at their
// previous values rather than reset, per spec.md §7's error policy.
func (s *Spot) acceptExcess(v float64) {
	prevGamma, prevSigma := s.tail.Parameters()
	s.tail.Push(v - s.t)
	fellBack := s.tail.Fit()
	gamma, sigma := s.tail.Parameters()
	if sigma <= 0 {
		s.logger.Warn("gpd refit produced a non-positive scale; retaining previous tail parameters",
			zap.Float64("gamma", gamma), zap.Float64("sigma", sigma))
		snap := s.tail.Snapshot()
		snap.Gamma, snap.Sigma = prevGamma, prevSigma
		s.tail = tail.FromSnapshot(snap)
		return
	}
	if fellBack {
		s.logger.Debug("gpd refit fell back to method of moments")
	}
	s.z = s.t + s.tail.Quantile(s.excessProbability())
}

// N returns the total number of observations passed to Step.
func (s *Spot) N() uint64 { return s.n }

// Nt returns the count of observed excesses, including anomalies discarded
// from the peaks buffer (spec.md §9's resolved open question: nt increments
// on every tail event).
func (s *Spot) Nt() uint64 { return s.nt }

// AnomalyThreshold returns z on the original (unmirrored) scale.
func (s *Spot) AnomalyThreshold() float64 { return s.mirror(s.z) }

// ExcessThreshold returns t on the original (unmirrored) scale.
func (s *Spot) ExcessThreshold() float64 { return s.mirror(s.t) }

// TailParameters returns the last-fitted GPD shape and scale.
func (s *Spot) TailParameters() (gamma, sigma float64) {
	return s.tail.Parameters()
}

// PeaksMean returns the mean of the currently stored excesses; ok is false
// when the window is empty.
func (s *Spot) PeaksMean() (mean float64, ok bool) {
	return s.tail.Mean()
}

// PeaksVariance returns the biased variance of the currently stored
// excesses; ok is false when the window is empty.
func (s *Spot) PeaksVariance() (variance float64, ok bool) {
	return s.tail.Variance()
}

// Fitted reports whether Fit has completed successfully.
func (s *Spot) Fitted() bool { return s.fitted }

// ID returns the detector's identifier, generated once at construction, for
// correlating log lines across many Spot instances.
func (s *Spot) ID() uuid.UUID { return s.id }
