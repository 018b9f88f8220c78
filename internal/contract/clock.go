package contract

import "time"

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// RunID formats t as a run identifier.
func RunID(t time.Time) string {
	return t.Format(RunIDFormat)
}
