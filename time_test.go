package identity_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsWithinThresholdPeriod(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		t      time.Time
		window time.Duration
		want   bool
	}{
		{name: "30 minutes ago within an hour", t: now.Add(-30 * time.Minute), window: time.Hour, want: true},
		{name: "61 minutes ago outside an hour", t: now.Add(-61 * time.Minute), window: time.Hour, want: false},
		{name: "exactly on the boundary", t: now.Add(-time.Hour), window: time.Hour, want: false},
		{name: "future", t: now.Add(time.Minute), window: time.Hour, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.IsWithinThresholdPeriod(tt.t, now, tt.window))
			assert.Equal(t, !tt.want, identity.IsOutsideThresholdPeriod(tt.t, now, tt.window))
		})
	}
}

func TestParseThreshold(t *testing.T) {
	d, err := identity.ParseThreshold("", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	d, err = identity.ParseThreshold("90m", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	d, err = identity.ParseThreshold("-5m", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, d)

	_, err = identity.ParseThreshold("hourly", time.Hour)
	assert.Error(t, err)
}
