package pokecat

import "fmt"

// ErrRosterNotLoaded is returned when an operation needs a category roster
// that has not been bootstrapped yet
func ErrRosterNotLoaded(category string) error {
	return fmt.Errorf("pokecat: roster for %q not loaded yet", category)
}
