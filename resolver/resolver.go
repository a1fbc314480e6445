// Package resolver maps one dependency expression to the descriptor that
// satisfies it, searching an ordered list of descriptor directories.
package resolver

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no search directory satisfies an expression.
var ErrNotFound = errors.New("dependency not found")

// Resolution is the outcome of resolving one expression.
type Resolution struct {
	// Candidates holds the raw locators reported for the expression, best first.
	Candidates []string
	// Dir is the search directory that produced the candidates.
	Dir string
}

// Resolver resolves a dependency expression against search directories,
// trying them in order and returning the first successful resolution.
type Resolver interface {
	Resolve(ctx context.Context, expression string, searchDirs []string) (Resolution, error)
}
