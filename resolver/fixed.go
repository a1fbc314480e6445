package resolver

import (
	"context"
	"fmt"
)

// Fixed resolves expressions from a fixed table. It never starts a process
// and counts how often each expression was asked for.
type Fixed struct {
	entries map[string]map[string][]string
	calls   map[string]int
}

// NewFixed returns an empty fixed-mapping resolver.
func NewFixed() *Fixed {
	return &Fixed{
		entries: make(map[string]map[string][]string),
		calls:   make(map[string]int),
	}
}

// Add registers candidates for expression within dir.
func (f *Fixed) Add(dir, expression string, candidates ...string) *Fixed {
	byDir, ok := f.entries[expression]
	if !ok {
		byDir = make(map[string][]string)
		f.entries[expression] = byDir
	}
	byDir[dir] = append(byDir[dir], candidates...)
	return f
}

// Resolve implements Resolver.
func (f *Fixed) Resolve(ctx context.Context, expression string, searchDirs []string) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, err
	}
	f.calls[expression]++

	byDir := f.entries[expression]
	for _, dir := range searchDirs {
		if candidates := byDir[dir]; len(candidates) > 0 {
			return Resolution{Candidates: append([]string(nil), candidates...), Dir: dir}, nil
		}
	}
	return Resolution{}, fmt.Errorf("%q: %w", expression, ErrNotFound)
}

// Calls reports how many times expression was resolved.
func (f *Fixed) Calls(expression string) int {
	return f.calls[expression]
}
