package spot

import "go.uber.org/zap"

// Config controls a Spot detector's tail model and anomaly policy.
//
// Defaults (DefaultConfig) reproduce the reference defaults: Q=1e-4,
// LowTail=false, DiscardAnomalies=true, Level=0.998, MaxExcess=200.
type Config struct {
	// Q is the tail probability at which a value becomes an Anomaly.
	// Smaller values are more conservative.
	Q float64
	// LowTail, when true, detects extremes in the lower tail by mirroring
	// every value around 0 internally.
	LowTail bool
	// DiscardAnomalies, when true, excludes anomalous excesses from the
	// peaks buffer so the tail model is not corrupted by outliers.
	DiscardAnomalies bool
	// Level is the tail-entry quantile: the threshold t is set to this
	// quantile of the training sample.
	Level float64
	// MaxExcess is the capacity of the peaks ring buffer.
	MaxExcess int

	// Logger receives diagnostic events (fallback to method-of-moments,
	// numerical-failure retention of stale parameters). A nil Logger is
	// replaced with zap.NewNop() so callers never need a nil check.
	Logger *zap.Logger
}

// DefaultConfig returns the reference default configuration.
func DefaultConfig() Config {
	return Config{
		Q:                1e-4,
		LowTail:          false,
		DiscardAnomalies: true,
		Level:            0.998,
		MaxExcess:        200,
	}
}

// validate checks the §3 construction constraints, returning an
// ErrInvalidConfig SpotError describing the first violation found.
func (c Config) validate() error {
	if !(c.Level > 0 && c.Level < 1) {
		return newError(ErrInvalidConfig, "NewSpot", "level must satisfy 0 < level < 1")
	}
	if !(c.Q > 0 && c.Q < 1-c.Level) {
		return newError(ErrInvalidConfig, "NewSpot", "q must satisfy 0 < q < 1-level")
	}
	if c.MaxExcess < 5 {
		return newError(ErrInvalidConfig, "NewSpot", "max_excess must be >= 5")
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
