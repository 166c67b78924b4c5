// Package ids generates and validates the opaque identifiers used for
// stored entities.
package ids

import gonanoid "github.com/matoous/go-nanoid/v2"

// Length of a generated identifier.
const Length = 21

// New returns a fresh random identifier.
func New() (string, error) {
	return gonanoid.New(Length)
}

// Valid reports whether s has the shape of a generated identifier.
// Anything else never reached the database and is treated by callers as
// referring to a record that does not exist.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
