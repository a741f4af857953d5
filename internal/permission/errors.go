package permission

import (
	"fmt"
	"sort"
	"strings"
)

// UnknownKeyError is returned by catalog lookups for a key outside the catalog.
// Reaching it from catalog-derived keys is a programming error.
type UnknownKeyError struct {
	Key Key
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown permission key %q", string(e.Key))
}

// ValidationError reports permission input that does not match the catalog.
type ValidationError struct {
	// Field is the input field the error refers to (e.g. "permissions").
	Field string
	// Unknown lists the keys not present in the catalog.
	Unknown []Key
	// Reason is a free-text explanation used when Unknown is empty.
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Unknown) == 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}

	keys := make([]string, 0, len(e.Unknown))
	for _, k := range e.Unknown {
		keys = append(keys, string(k))
	}

	sort.Strings(keys)

	return fmt.Sprintf("invalid %s: unknown permission keys: %s", e.Field, strings.Join(keys, ", "))
}
