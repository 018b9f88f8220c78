package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across packages.
var (
	// ErrMissingInput means a required input path was not configured.
	ErrMissingInput = errors.New("required input not configured")

	// ErrRunExists means the output directory for the run id already holds outputs.
	ErrRunExists = errors.New("run output already exists")
)

// ConfigError is a fatal configuration problem that aborts a run before any output is written.
// Input names the offending setting (e.g. "mom-location", "metadata", "rules") and Path the
// file involved, when there is one.
type ConfigError struct {
	Input string
	Path  string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("configuration error for %s (%s): %v", e.Input, e.Path, e.Err)
	}
	return fmt.Sprintf("configuration error for %s: %v", e.Input, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
