package fastmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog1p_MatchesDefinitionNearZero(t *testing.T) {
	x := 1e-10
	got := Log1p(x)
	// math.Log(1+x) loses precision for tiny x; Log1p should not.
	assert.InDelta(t, x, got, 1e-12)
}

func TestLog_MatchesStdlib(t *testing.T) {
	assert.Equal(t, math.Log(2.5), Log(2.5))
}

func TestExp_MatchesStdlib(t *testing.T) {
	assert.Equal(t, math.Exp(1.25), Exp(1.25))
}
