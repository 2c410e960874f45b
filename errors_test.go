package spot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpotError_UnwrapExposesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	e := &SpotError{Kind: ErrNumericalFailure, Op: "Fit", Message: "boom", Cause: cause}

	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "boom")
	assert.Contains(t, e.Error(), "underlying failure")
}

func TestSpotError_AsMatchesByKind(t *testing.T) {
	err := error(newError(ErrInvalidConfig, "NewSpot", "q out of range"))

	var spotErr *SpotError
	assert.ErrorAs(t, err, &spotErr)
	assert.Equal(t, ErrInvalidConfig, spotErr.Kind)
}
