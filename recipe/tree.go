// Package recipe gives the graph access to a ports tree.
//
// A ports tree holds one recipe per port version at
// <tree>/<category>/<port>/<name>-<version>.recipe. Recipes are shell
// fragments and only their top-level variable assignments are read.
package recipe

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/portgraph/depgraph"
)

const recipeExt = ".recipe"

var skippedDirs = map[string]bool{
	".git":   true,
	".hg":    true,
	".svn":   true,
	"work":   true,
	"output": true,
}

// Tree indexes the recipes of a ports tree. Recipes are parsed on first use.
type Tree struct {
	root     string
	builtins Builtins
	logger   *slog.Logger

	recipes map[string]string
	ports   map[string]depgraph.Port
}

// Option configures a Tree.
type Option func(*Tree)

// WithSecondaryArchSuffix sets $secondaryArchSuffix for every recipe.
func WithSecondaryArchSuffix(suffix string) Option {
	return func(t *Tree) {
		t.builtins.SecondaryArchSuffix = suffix
	}
}

// WithLogger sets the logger used for skipped recipes.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Scan indexes every recipe below root.
func Scan(root string, opts ...Option) (*Tree, error) {
	t := &Tree{
		root:    root,
		logger:  slog.Default(),
		recipes: make(map[string]string),
		ports:   make(map[string]depgraph.Port),
	}
	for _, opt := range opts {
		opt(t)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), recipeExt) {
			return nil
		}

		portID := strings.TrimSuffix(d.Name(), recipeExt)
		if _, _, ok := splitPortID(portID); !ok {
			t.logger.Warn("skipping recipe without version", "path", path)
			return nil
		}
		if existing, ok := t.recipes[portID]; ok {
			t.logger.Warn("duplicate recipe", "port", portID, "kept", existing, "skipped", path)
			return nil
		}
		t.recipes[portID] = path
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan ports tree %s: %w", root, err)
	}

	t.logger.Debug("scanned ports tree", "root", root, "recipes", len(t.recipes))
	return t, nil
}

// PortIDs returns the IDs of all indexed ports, sorted.
func (t *Tree) PortIDs() []string {
	ids := make([]string, 0, len(t.recipes))
	for id := range t.recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecipePath returns the recipe file defining portID.
func (t *Tree) RecipePath(portID string) (string, bool) {
	path, ok := t.recipes[portID]
	return path, ok
}

// HasPort reports whether a recipe defines portID.
func (t *Tree) HasPort(portID string) bool {
	_, ok := t.recipes[portID]
	return ok
}

// Port parses the recipe of portID. The main package is named after the
// port, every PROVIDES_<suffix> adds a package <name>_<suffix>. Build
// requirements apply to the whole port and are copied to every package.
func (t *Tree) Port(portID string) (depgraph.Port, error) {
	if port, ok := t.ports[portID]; ok {
		return port, nil
	}
	path, ok := t.recipes[portID]
	if !ok {
		return depgraph.Port{}, fmt.Errorf("no recipe for port %q", portID)
	}

	sourceCode, err := os.ReadFile(path)
	if err != nil {
		return depgraph.Port{}, fmt.Errorf("failed to read recipe: %w", err)
	}

	name, version, _ := splitPortID(portID)
	builtins := t.builtins
	builtins.PortName = name
	builtins.PortVersion = version

	vars, err := ParseVariables(sourceCode, builtins)
	if err != nil {
		return depgraph.Port{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	port := buildPort(name, version, vars)
	t.ports[portID] = port
	return port, nil
}

// PortIDForPackageID maps a package to the port producing it. The exact
// port is tried first, then the package name is shortened one _<suffix> at
// a time, keeping the version.
func (t *Tree) PortIDForPackageID(packageID string) (string, error) {
	canonical := depgraph.CanonicalPackageID(packageID)
	if t.HasPort(canonical) {
		return canonical, nil
	}

	name, version, ok := splitPortID(canonical)
	if !ok {
		return "", fmt.Errorf("package %q has no version", packageID)
	}
	for index := strings.LastIndex(name, "_"); index > 0; index = strings.LastIndex(name, "_") {
		name = name[:index]
		if candidate := name + "-" + version; t.HasPort(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no port produces package %q", canonical)
}

func buildPort(name, version string, vars map[string]string) depgraph.Port {
	buildRequires := Lines(vars["BUILD_REQUIRES"])
	buildPrerequires := Lines(vars["BUILD_PREREQUIRES"])

	port := depgraph.Port{Name: name, Version: version}
	port.Packages = append(port.Packages, depgraph.Package{
		Name:             name,
		Requires:         Lines(vars["REQUIRES"]),
		BuildRequires:    buildRequires,
		BuildPrerequires: buildPrerequires,
	})

	var suffixes []string
	for key := range vars {
		if suffix, ok := strings.CutPrefix(key, "PROVIDES_"); ok && suffix != "" {
			suffixes = append(suffixes, suffix)
		}
	}
	sort.Strings(suffixes)

	for _, suffix := range suffixes {
		port.Packages = append(port.Packages, depgraph.Package{
			Name:             name + "_" + suffix,
			Requires:         Lines(vars["REQUIRES_"+suffix]),
			BuildRequires:    buildRequires,
			BuildPrerequires: buildPrerequires,
		})
	}
	return port
}

func splitPortID(portID string) (name, version string, ok bool) {
	name, version, ok = strings.Cut(portID, "-")
	if !ok || name == "" || version == "" {
		return "", "", false
	}
	return name, version, true
}
