package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		valid bool
	}{
		{"20m", 20 * time.Minute, true},
		{"1h30m", 90 * time.Minute, true},
		{"1.5h", 90 * time.Minute, true},
		{"45 minutes", 45 * time.Minute, true},
		{"2 hours", 2 * time.Hour, true},
		{"1 hour 15 minutes", 75 * time.Minute, true},
		{"30", 30 * time.Minute, true}, // bare number is minutes
		{"", 0, false},
		{"soon", 0, false},
		{"0m", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseDuration(tt.input)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Duration)
			}
		})
	}
}

func TestParseArrivalRelative(t *testing.T) {
	before := time.Now()
	result := ParseArrival("+2h")
	require.NoError(t, result.Error)
	assert.WithinDuration(t, before.Add(2*time.Hour), result.Time, 2*time.Second)

	result = ParseArrival("+45m")
	require.NoError(t, result.Error)
	assert.WithinDuration(t, before.Add(45*time.Minute), result.Time, 2*time.Second)
}

func TestParseArrivalAbsolute(t *testing.T) {
	future := time.Now().AddDate(0, 0, 3)
	input := future.Format("2006-01-02") + " 08:30"

	result := ParseArrival(input)
	require.NoError(t, result.Error)
	assert.Equal(t, 8, result.Time.Hour())
	assert.Equal(t, 30, result.Time.Minute())
}

func TestParseArrivalErrors(t *testing.T) {
	assert.Error(t, ParseArrival("").Error)
	assert.Error(t, ParseArrival("not a time at all xyz").Error)
	assert.Error(t, ParseArrival("2001-01-01 09:00").Error)
	assert.Error(t, ParseArrivalArgs(nil).Error)
}

func TestParseArrivalArgsJoins(t *testing.T) {
	future := time.Now().AddDate(0, 0, 5)
	result := ParseArrivalArgs([]string{future.Format("2006-01-02"), "09:00"})
	require.NoError(t, result.Error)
	assert.Equal(t, 9, result.Time.Hour())
}

func TestFormatTimeUntil(t *testing.T) {
	assert.Equal(t, "in the past", FormatTimeUntil(time.Now().Add(-time.Hour)))
	assert.Equal(t, "less than a minute", FormatTimeUntil(time.Now().Add(30*time.Second)))
	assert.Contains(t, FormatTimeUntil(time.Now().Add(10*time.Minute)), "minutes")
	assert.Contains(t, FormatTimeUntil(time.Now().Add(3*time.Hour)), "hours")
}
