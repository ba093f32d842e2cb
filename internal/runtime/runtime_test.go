package runtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoss/ontime/internal/errors"
)

func TestNewInMemory(t *testing.T) {
	opts := DefaultOptions()
	opts.InMemory = true

	ctx, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })

	assert.NotNil(t, ctx.TripRepo)
	assert.NotNil(t, ctx.AlertRepo)
	assert.NotNil(t, ctx.WebhookRepo)
	assert.NotNil(t, ctx.Dispatcher)
	assert.NotNil(t, ctx.Substrate)
	assert.True(t, ctx.IsCLI())
	assert.False(t, ctx.IsJSON())
}

func TestEnvDatabaseOverride(t *testing.T) {
	t.Setenv(EnvDatabase, ":memory:")

	ctx, err := New(DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })
}

func TestGetSuggestion(t *testing.T) {
	assert.NotEmpty(t, GetSuggestion(errors.ErrTripNotFound))
	assert.NotEmpty(t, GetSuggestion(fmt.Errorf("wrapped: %w", errors.ErrInvalidArrival)))
	assert.Empty(t, GetSuggestion(fmt.Errorf("some unrelated error")))

	ue := errors.NewUserError("bad input", "try again with --help")
	assert.Equal(t, "try again with --help", GetSuggestion(ue))
}

func TestFormatError(t *testing.T) {
	msg := FormatError(errors.ErrNothingScheduled)
	assert.Contains(t, msg, "no alarms could be scheduled")
	assert.Contains(t, msg, "enabled but has no alarms")
}

func TestIsDiskFullError(t *testing.T) {
	assert.False(t, IsDiskFullError(nil))
	assert.True(t, IsDiskFullError(errors.ErrDiskFull))
	assert.True(t, IsDiskFullError(fmt.Errorf("badger: no space left on device")))
	assert.False(t, IsDiskFullError(fmt.Errorf("permission denied")))
}
