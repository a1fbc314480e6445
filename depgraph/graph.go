// Package depgraph builds the port/package dependency graph of a ports tree
// and reports system packages, self-dependent ports and dependency cycles.
//
// The graph has two node kinds. A port is something to build, a package is
// something to depend on. A package depends on the port that produces it and
// on the packages its REQUIRES name. A port depends on the packages named by
// the BUILD_REQUIRES and BUILD_PREREQUIRES of its packages.
package depgraph

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LegacyCodeHQ/portgraph/resolver"
)

// Options configures a Graph.
type Options struct {
	// BuildableDir holds the requires-stripped descriptors of buildable packages.
	BuildableDir string
	// SystemDir holds the requires-stripped descriptors of system packages.
	SystemDir string
	// StrictAmbiguity turns an expression with several candidates into an error.
	StrictAmbiguity bool
	Logger          *slog.Logger
}

// Stats counts the work done while resolving.
type Stats struct {
	PortsExpanded int
	PortsResolved int
	ResolverCalls int
	MemoHits      int
}

type memoEntry struct {
	ref PackageRef
	ok  bool
}

// Graph owns the port and package registries. Nodes are created lazily on
// first reference and live as long as the Graph.
type Graph struct {
	source   PortSource
	resolver resolver.Resolver
	opts     Options
	logger   *slog.Logger

	ports        []*PortNode
	portIndex    map[string]PortRef
	packages     []*PackageNode
	packageIndex map[string]PackageRef

	memo     map[string]memoEntry
	warnings []Warning
	stats    Stats
}

// New creates an empty graph reading recipes from source and resolving
// expressions with r.
func New(source PortSource, r resolver.Resolver, opts Options) (*Graph, error) {
	if source == nil {
		return nil, fmt.Errorf("port source is required")
	}
	if r == nil {
		return nil, fmt.Errorf("dependency resolver is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Graph{
		source:       source,
		resolver:     r,
		opts:         opts,
		logger:       logger,
		portIndex:    make(map[string]PortRef),
		packageIndex: make(map[string]PackageRef),
		memo:         make(map[string]memoEntry),
	}, nil
}

// ResolveAll resolves the declarations of every port producing one of
// packageIDs. A port reached through several of its packages is processed once.
func (g *Graph) ResolveAll(ctx context.Context, packageIDs []string) error {
	for _, packageID := range packageIDs {
		portID, err := g.portIDForPackage(packageID)
		if err != nil {
			return err
		}

		ref, err := g.getOrCreatePortNode(portID)
		if err != nil {
			return err
		}

		port := g.ports[ref]
		if port.dependenciesResolved {
			continue
		}

		if err := g.resolvePort(ctx, port); err != nil {
			return fmt.Errorf("failed to resolve dependencies of port %s: %w", port.ID, err)
		}
	}

	g.logger.Debug("dependency resolution complete",
		"ports", len(g.ports),
		"packages", len(g.packages),
		"resolver_calls", g.stats.ResolverCalls,
		"memo_hits", g.stats.MemoHits,
	)
	return nil
}

func (g *Graph) resolvePort(ctx context.Context, port *PortNode) error {
	for _, pref := range port.packages.items() {
		pkg := g.packages[pref]

		requires, err := g.resolveRequiresList(ctx, pkg.decl.Requires)
		if err != nil {
			return err
		}
		pkg.requires.addAll(requires)

		buildRequires, err := g.resolveRequiresList(ctx, pkg.decl.BuildRequires)
		if err != nil {
			return err
		}
		port.buildRequires.addAll(buildRequires)

		buildPrerequires, err := g.resolveRequiresList(ctx, pkg.decl.BuildPrerequires)
		if err != nil {
			return err
		}
		port.buildPrerequires.addAll(buildPrerequires)
	}

	port.dependenciesResolved = true
	g.stats.PortsResolved++
	return nil
}

func (g *Graph) portIDForPackage(packageID string) (string, error) {
	if g.source.HasPort(packageID) {
		return packageID, nil
	}
	portID, err := g.source.PortIDForPackageID(packageID)
	if err != nil {
		return "", &LookupError{Kind: PortKind, ID: packageID, Err: err}
	}
	return portID, nil
}

// getOrCreatePortNode returns the node of portID, loading the port and
// registering all of its packages on first use.
func (g *Graph) getOrCreatePortNode(portID string) (PortRef, error) {
	if ref, ok := g.portIndex[portID]; ok {
		return ref, nil
	}
	if !g.source.HasPort(portID) {
		return noPort, &LookupError{Kind: PortKind, ID: portID}
	}

	port, err := g.source.Port(portID)
	if err != nil {
		return noPort, fmt.Errorf("failed to load port %s: %w", portID, err)
	}

	ref := PortRef(len(g.ports))
	node := &PortNode{ID: portID, port: port}
	g.ports = append(g.ports, node)
	g.portIndex[portID] = ref
	g.stats.PortsExpanded++

	for _, decl := range port.Packages {
		packageID := port.PackageID(decl)
		if existing, ok := g.packageIndex[packageID]; ok {
			g.adoptPackage(ref, existing, decl)
			continue
		}

		pref := PackageRef(len(g.packages))
		g.packages = append(g.packages, &PackageNode{ID: packageID, owner: ref, decl: decl})
		g.packageIndex[packageID] = pref
		node.packages.add(pref)
	}

	return ref, nil
}

// adoptPackage attaches an already registered package to the port producing
// it. A package first seen as a system package becomes a port package; one
// owned by another port keeps its owner.
func (g *Graph) adoptPackage(owner PortRef, ref PackageRef, decl Package) {
	pkg := g.packages[ref]
	if pkg.IsSystemPackage() {
		pkg.owner = owner
		pkg.decl = decl
		g.ports[owner].packages.add(ref)
		return
	}
	g.warn(WarningDuplicatePackage, pkg.ID,
		fmt.Sprintf("package %q is produced by both %s and %s", pkg.ID, g.ports[pkg.owner].ID, g.ports[owner].ID))
}

// getOrCreatePackageNode returns the node of packageID. A missing system
// package is created ownerless. A missing port package is created by
// expanding its port.
func (g *Graph) getOrCreatePackageNode(packageID string, isSystem bool) (PackageRef, error) {
	if ref, ok := g.packageIndex[packageID]; ok {
		return ref, nil
	}

	if isSystem {
		ref := PackageRef(len(g.packages))
		g.packages = append(g.packages, &PackageNode{ID: packageID, owner: noPort})
		g.packageIndex[packageID] = ref
		return ref, nil
	}

	portID, err := g.portIDForPackage(packageID)
	if err != nil {
		return 0, err
	}
	if _, err := g.getOrCreatePortNode(portID); err != nil {
		return 0, err
	}

	ref, ok := g.packageIndex[packageID]
	if !ok {
		return 0, &LookupError{Kind: PackageKind, ID: packageID}
	}
	return ref, nil
}

// Port returns the node of portID if it was created.
func (g *Graph) Port(portID string) (*PortNode, bool) {
	ref, ok := g.portIndex[portID]
	if !ok {
		return nil, false
	}
	return g.ports[ref], true
}

// Package returns the node of packageID if it was created.
func (g *Graph) Package(packageID string) (*PackageNode, bool) {
	ref, ok := g.packageIndex[packageID]
	if !ok {
		return nil, false
	}
	return g.packages[ref], true
}

// PortDependencies returns the IDs of the packages portID needs to build.
func (g *Graph) PortDependencies(portID string) []string {
	ref, ok := g.portIndex[portID]
	if !ok {
		return nil
	}
	return g.names(g.dependencies(ref.node()))
}

// PackageDependencies returns the IDs of the nodes packageID depends on,
// including its owning port.
func (g *Graph) PackageDependencies(packageID string) []string {
	ref, ok := g.packageIndex[packageID]
	if !ok {
		return nil
	}
	return g.names(g.dependencies(ref.node()))
}

// Stats returns counters collected while resolving.
func (g *Graph) Stats() Stats {
	return g.stats
}

// dependencies returns the nodes n depends on. For a port that is its build
// requirements, for a package its runtime requirements plus its owning port.
func (g *Graph) dependencies(n NodeRef) []NodeRef {
	var deps refSet[NodeRef]
	switch n.Kind {
	case PortKind:
		port := g.ports[n.Index]
		for _, ref := range port.buildRequires.items() {
			deps.add(ref.node())
		}
		for _, ref := range port.buildPrerequires.items() {
			deps.add(ref.node())
		}
	case PackageKind:
		pkg := g.packages[n.Index]
		for _, ref := range pkg.requires.items() {
			deps.add(ref.node())
		}
		if !pkg.IsSystemPackage() {
			deps.add(pkg.owner.node())
		}
	}
	return deps.items()
}

func (g *Graph) name(n NodeRef) string {
	if n.Kind == PortKind {
		return g.ports[n.Index].ID
	}
	return g.packages[n.Index].ID
}

func (g *Graph) names(refs []NodeRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, g.name(ref))
	}
	return names
}
