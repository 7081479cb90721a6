package identity

import "time"

// DefaultLastSignedInInterval throttles lastSignedIn writes per session
const DefaultLastSignedInInterval = time.Hour

// IsWithinThresholdPeriod checks if t is newer than now minus window
func IsWithinThresholdPeriod(t, now time.Time, window time.Duration) bool {
	return t.After(now.Add(-window))
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(t, now time.Time, window time.Duration) bool {
	return !IsWithinThresholdPeriod(t, now, window)
}

// ParseThreshold parses a duration expression, falling back to def when
// the expression is empty or not positive.
func ParseThreshold(pattern string, def time.Duration) (time.Duration, error) {
	if pattern == "" {
		return def, nil
	}

	d, err := time.ParseDuration(pattern)
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return def, nil
	}
	return d, nil
}
