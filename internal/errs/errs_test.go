package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKind(t *testing.T) {
	err := Validation("mentalNoise", "must be in [0,10], got %v", 11)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrMissingInput))
	assert.False(t, errors.Is(err, ErrUpstream))
	assert.False(t, errors.Is(err, ErrInvariant))
}

func TestIsSurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("build profile: %w", MissingInput("design", "Chiron"))

	require.True(t, errors.Is(wrapped, ErrMissingInput))
	assert.Equal(t, KindMissingInput, KindOf(wrapped))
	assert.Equal(t, "Chiron", FieldOf(wrapped))
}

func TestUpstreamUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Upstream("positions", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorFormat(t *testing.T) {
	err := Invariant("sli[3]", 120, 0, 100)
	assert.Equal(t, "invariant: sli[3]: value 120 outside [0, 100]", err.Error())

	bare := &Error{Kind: KindValidation}
	assert.Equal(t, "validation", bare.Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "", FieldOf(nil))
}
