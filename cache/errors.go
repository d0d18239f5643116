package cache

import "fmt"

// ErrInvalidCapacity returns an error for a non-positive capacity
func ErrInvalidCapacity(capacity int) error {
	return fmt.Errorf("cache: invalid capacity: %d (must be >= 1)", capacity)
}

// ErrMalformedListingURL returns an error for a listing URL without a
// trailing numeric id segment
func ErrMalformedListingURL(url string) error {
	return fmt.Errorf("cache: malformed listing url: %q (no trailing numeric id)", url)
}

// ErrUnknownCategory returns an error for a category outside the tree's shape
func ErrUnknownCategory(name string) error {
	return fmt.Errorf("cache: unknown category: %q", name)
}

// ErrNilDecode is returned when Restore is called without a decode function
var ErrNilDecode = fmt.Errorf("cache: decode function must not be nil")

// ErrSave wraps a persistence write failure
func ErrSave(err error) error {
	return fmt.Errorf("cache: save failed: %w", err)
}

// ErrRestore wraps a persistence read or decode failure
func ErrRestore(err error) error {
	return fmt.Errorf("cache: restore failed: %w", err)
}
