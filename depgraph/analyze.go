package depgraph

import "fmt"

// Analyze partitions the resolved graph and isolates its cycles.
//
// System packages are reported and dropped. Ports whose build requirements
// include one of their own packages are reported as self-dependent and
// dropped together with their packages. The rest is reduced by isolateCycles
// and the ports left over are reported as cyclic.
func (g *Graph) Analyze() (Report, error) {
	var report Report

	var nonSystemPorts refSet[PortRef]
	for _, pkg := range g.packages {
		if pkg.IsSystemPackage() {
			report.SystemPackages = append(report.SystemPackages, pkg.ID)
			continue
		}
		nonSystemPorts.add(pkg.owner)
	}

	var nodes refSet[NodeRef]
	for _, ref := range nonSystemPorts.items() {
		port := g.ports[ref]
		if port.DependsOnSelf() {
			report.SelfDependentPorts = append(report.SelfDependentPorts, port.ID)
			continue
		}
		nodes.add(ref.node())
		for _, pref := range port.packages.items() {
			nodes.add(pref.node())
		}
	}

	remaining := g.isolateCycles(nodes.items())
	for _, ref := range remaining {
		if ref.Kind == PortKind {
			report.CyclicPorts = append(report.CyclicPorts, g.name(ref))
		}
	}

	remainder, err := g.remainderGraph(remaining)
	if err != nil {
		return Report{}, fmt.Errorf("failed to build cycle remainder graph: %w", err)
	}
	report.CycleGroups = g.cycleGroups(remaining)
	report.Remainder, err = g.cycleGraph(remainder)
	if err != nil {
		return Report{}, err
	}

	report.Warnings = g.Warnings()
	return report, nil
}
