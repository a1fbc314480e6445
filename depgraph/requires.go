package depgraph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/portgraph/resolver"
)

const packageInfoSuffix = ".PackageInfo"

// CanonicalPackageID turns a descriptor path or a full package file name
// into the name-version identifier used by the graph.
func CanonicalPackageID(raw string) string {
	id := strings.TrimSuffix(filepath.Base(raw), packageInfoSuffix)
	components := strings.Split(id, "-")
	if len(components) > 1 {
		return components[0] + "-" + components[1]
	}
	return components[0]
}

// stripComment drops everything from the first '#' and trims whitespace.
func stripComment(expression string) string {
	if index := strings.IndexByte(expression, '#'); index >= 0 {
		expression = expression[:index]
	}
	return strings.TrimSpace(expression)
}

// resolveRequiresList resolves raw requires expressions into package nodes.
// Unresolvable expressions are reported as warnings and left out.
func (g *Graph) resolveRequiresList(ctx context.Context, expressions []string) (refSet[PackageRef], error) {
	var deps refSet[PackageRef]
	for _, raw := range expressions {
		expression := stripComment(raw)
		if expression == "" {
			continue
		}

		entry, cached := g.memo[expression]
		if cached {
			g.stats.MemoHits++
		} else {
			ref, ok, err := g.resolveRequires(ctx, expression)
			if err != nil {
				return deps, err
			}
			entry = memoEntry{ref: ref, ok: ok}
			g.memo[expression] = entry
		}

		if !entry.ok {
			g.warn(WarningUnresolvable, expression,
				fmt.Sprintf("Ignoring unresolvable requires %q", expression))
			continue
		}
		deps.add(entry.ref)
	}
	return deps, nil
}

// resolveRequires asks the resolver for one expression, trying the buildable
// descriptors before the system ones. ok is false when nothing satisfies it.
func (g *Graph) resolveRequires(ctx context.Context, expression string) (PackageRef, bool, error) {
	g.stats.ResolverCalls++

	res, err := g.resolver.Resolve(ctx, expression, g.searchDirs())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, false, ctxErr
		}
		if !errors.Is(err, resolver.ErrNotFound) {
			g.logger.Debug("resolver failed", "expression", expression, "error", err)
		}
		return 0, false, nil
	}
	if len(res.Candidates) == 0 {
		return 0, false, nil
	}

	if len(res.Candidates) > 1 {
		if g.opts.StrictAmbiguity {
			return 0, false, &AmbiguousError{Expression: expression, Candidates: res.Candidates}
		}
		g.warn(WarningAmbiguous, expression,
			fmt.Sprintf("Got multiple results for requires %q, using %s", expression, filepath.Base(res.Candidates[0])))
	}

	packageID := CanonicalPackageID(res.Candidates[0])
	isSystem := g.opts.SystemDir != "" && res.Dir == g.opts.SystemDir
	ref, err := g.getOrCreatePackageNode(packageID, isSystem)
	if err != nil {
		return 0, false, err
	}
	return ref, true, nil
}

func (g *Graph) searchDirs() []string {
	dirs := make([]string, 0, 2)
	if g.opts.BuildableDir != "" {
		dirs = append(dirs, g.opts.BuildableDir)
	}
	if g.opts.SystemDir != "" && g.opts.SystemDir != g.opts.BuildableDir {
		dirs = append(dirs, g.opts.SystemDir)
	}
	return dirs
}
