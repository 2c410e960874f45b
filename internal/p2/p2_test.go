package p2

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnInvalidProbability(t *testing.T) {
	assert.Panics(t, func() { New(0) })
	assert.Panics(t, func() { New(1) })
	assert.Panics(t, func() { New(-0.5) })
}

func TestQuantile_FallsBackToMaxBeforeFiveSamples(t *testing.T) {
	e := New(0.5)
	e.Update(3)
	e.Update(1)
	e.Update(2)
	assert.Equal(t, 3.0, e.Quantile())
}

func TestQuantile_MarkersSortedAfterFiveSamples(t *testing.T) {
	e := New(0.5)
	for _, v := range []float64{5, 1, 4, 2, 3} {
		e.Update(v)
	}
	assert.Equal(t, [5]float64{1, 2, 3, 4, 5}, e.heights)
	assert.Equal(t, 3.0, e.Quantile())
}

func TestUpdate_PositionsStayMonotoneNonDecreasing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New(0.9)
	for i := 0; i < 2000; i++ {
		e.Update(rng.NormFloat64())
		if e.Count() >= 5 {
			for i := 1; i < 5; i++ {
				assert.GreaterOrEqual(t, e.positions[i], e.positions[i-1])
			}
			for i := 1; i < 5; i++ {
				assert.GreaterOrEqual(t, e.heights[i], e.heights[i-1])
			}
		}
	}
}

func TestQuantile_ApproximatesUniformQuantile(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 20000
	samples := make([]float64, n)
	e := New(0.9)
	for i := range samples {
		v := rng.Float64()
		samples[i] = v
		e.Update(v)
	}

	sort.Float64s(samples)
	exact := samples[int(0.9*float64(n))]

	got := e.Quantile()
	assert.InDelta(t, exact, got, 0.02)
}

func TestQuantile_MarkerOneAndFiveTrackMinMax(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	e := New(0.5)
	min, max := math.Inf(1), math.Inf(-1)
	for i := 0; i < 500; i++ {
		v := rng.NormFloat64()
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		e.Update(v)
	}
	assert.Equal(t, min, e.heights[0])
	assert.Equal(t, max, e.heights[4])
}

func TestSnapshotRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	e := New(0.95)
	for i := 0; i < 500; i++ {
		e.Update(rng.NormFloat64())
	}

	snap := e.Snapshot()
	restored := FromSnapshot(snap)
	require.Equal(t, e.Quantile(), restored.Quantile())

	e.Update(123.0)
	restored.Update(123.0)
	assert.Equal(t, e.Quantile(), restored.Quantile())
}
