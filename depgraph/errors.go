package depgraph

import "fmt"

// LookupError reports a port or package that cannot be found, even after the
// owning port was expanded. It means the recipe and descriptor sets disagree.
type LookupError struct {
	Kind NodeKind
	ID   string
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q doesn't seem to exist: %v", e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %q doesn't seem to exist", e.Kind, e.ID)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// AmbiguousError is returned in strict mode when an expression resolves to
// more than one package.
type AmbiguousError struct {
	Expression string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("got %d results for requires %q", len(e.Candidates), e.Expression)
}
