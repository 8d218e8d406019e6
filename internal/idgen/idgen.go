// Package idgen generates short, URL-safe identifiers backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the kinds of identifiers the service issues.
const (
	InvocationPrefix = "inv-"
	ExportPrefix     = "exp-"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// Size is the number of random characters after the prefix.
	Size = 12
)

// New returns prefix followed by Size random characters.
func New(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, Size)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Invocation returns a token identifying one chart data request.
func Invocation() (string, error) {
	return New(InvocationPrefix)
}

// Export returns an identifier for one cache export run.
func Export() (string, error) {
	return New(ExportPrefix)
}
