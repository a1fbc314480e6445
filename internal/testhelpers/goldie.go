package testhelpers

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TextGoldie returns a goldie instance for plain-text report fixtures.
func TextGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
}

// JSONGoldie returns a goldie instance for JSON report fixtures.
func JSONGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t, goldie.WithNameSuffix(".gold.json"))
}

// DotGoldie returns a goldie instance for Graphviz fixtures.
func DotGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t, goldie.WithNameSuffix(".gold.dot"))
}

// MermaidGoldie returns a goldie instance for Mermaid fixtures.
func MermaidGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t, goldie.WithNameSuffix(".gold.mmd"))
}
