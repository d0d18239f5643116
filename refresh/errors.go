package refresh

import (
	"fmt"
	"time"
)

// ErrNilRefreshFunc is returned when no refresh function is provided
var ErrNilRefreshFunc = fmt.Errorf("refresh: refresh function must not be nil")

// ErrEmptySpec is returned for an empty cron spec
var ErrEmptySpec = fmt.Errorf("refresh: cron spec must not be empty")

// ErrInvalidSpec wraps a cron spec parse failure
func ErrInvalidSpec(spec string, err error) error {
	return fmt.Errorf("refresh: invalid cron spec %q: %w", spec, err)
}

// ErrInvalidTimeout returns an error for a non-positive timeout
func ErrInvalidTimeout(timeout time.Duration) error {
	return fmt.Errorf("refresh: invalid timeout: %v (must be > 0)", timeout)
}
