package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	err := NewUserError("bad prep duration", "Use a duration like '30m'")
	assert.Equal(t, "bad prep duration", err.Error())
	assert.True(t, IsUserError(err))
	assert.False(t, IsSystemError(err))

	withField := NewUserErrorWithField("interval", "-2m", "Invalid interval", "Use a positive duration")
	assert.Equal(t, "Invalid interval: '-2m'", withField.Error())
}

func TestSystemErrorUnwrap(t *testing.T) {
	cause := ErrSubstrateUnavailable
	err := NewSystemErrorWithOp("schedule", "substrate rejected alert", cause)
	assert.Equal(t, "substrate rejected alert during schedule", err.Error())
	assert.True(t, Is(err, ErrSubstrateUnavailable))

	ue, ok := AsUserError(err)
	assert.False(t, ok)
	assert.Nil(t, ue)

	se, ok := AsSystemError(err)
	assert.True(t, ok)
	assert.Equal(t, "schedule", se.Op)
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	wrapped := Wrap(ErrTripNotFound, "loading trip")
	assert.True(t, Is(wrapped, ErrTripNotFound))
	assert.Equal(t, "loading trip: trip not found", wrapped.Error())

	wrappedf := Wrapf(ErrAlertNotFound, "cancelling %d alerts", 3)
	assert.True(t, Is(wrappedf, ErrAlertNotFound))
	assert.Equal(t, fmt.Sprintf("cancelling %d alerts: alert not found", 3), wrappedf.Error())
}
