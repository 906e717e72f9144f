package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs_MatchesByKind(t *testing.T) {
	err := Forbidden("not yours")

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestErrorIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("transition: %w", InvalidTransition("already approved"))

	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestFieldsOf(t *testing.T) {
	err := ValidationField("requested_amount", "must be greater than 0")

	assert.Equal(t, map[string]string{"requested_amount": "must be greater than 0"}, FieldsOf(err))
	assert.Nil(t, FieldsOf(NotFound("x")))
}

func TestInternal_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load request", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection reset")
}
