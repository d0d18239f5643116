package resolver

import (
	"fmt"
	"strings"

	"github.com/catchkit/pokecat/rest"
)

// NotFoundError reports an identifier unknown to a loaded roster. It is
// always recoverable: the caller picked a bad name, nothing else went wrong.
type NotFoundError struct {
	Identifier  string
	Route       rest.Route
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("resolver: resource %q not found | %s", e.Identifier, e.Route)
	}
	return fmt.Sprintf("resolver: resource %q not found, did you mean %s? | %s",
		e.Identifier, strings.Join(e.Suggestions, ", "), e.Route)
}
