package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Validation, KindOf(Validationf("bad input")))
	assert.Equal(t, Conflict, KindOf(Conflictf("slot taken")))
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(0), KindOf(nil))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := NotFoundf("booking not found")
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.True(t, IsKind(wrapped, NotFound))
	assert.False(t, IsKind(wrapped, Conflict))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Transient, "scheduling store unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "scheduling store unreachable: connection refused", err.Error())
	assert.Equal(t, "transient", err.Kind.String())
}
