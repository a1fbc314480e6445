package fixtures

import "github.com/LegacyCodeHQ/portgraph/depgraph"

// SampleReport returns a report where a-1 and b-1 form a cycle that also
// depends on lib-2, gcc depends on itself and two system packages are needed.
func SampleReport() depgraph.Report {
	port := func(id string) depgraph.CycleNode {
		return depgraph.CycleNode{Kind: depgraph.PortKind, ID: id}
	}
	pkg := func(id string) depgraph.CycleNode {
		return depgraph.CycleNode{Kind: depgraph.PackageKind, ID: id}
	}

	return depgraph.Report{
		SystemPackages:     []string{"haiku-r1~beta4", "gcc_syslibs-13.3.0_2023_08_10"},
		SelfDependentPorts: []string{"gcc-13.3.0_2023_08_10"},
		CyclicPorts:        []string{"a-1", "b-1", "lib-2"},
		CycleGroups:        [][]string{{"a-1", "b-1"}},
		Remainder: depgraph.CycleGraph{
			Nodes: []depgraph.CycleNode{
				port("a-1"), port("b-1"), port("lib-2"),
				pkg("a-1"), pkg("b-1"), pkg("lib-2"),
			},
			Edges: []depgraph.CycleEdge{
				{From: port("a-1"), To: pkg("b-1")},
				{From: port("a-1"), To: pkg("lib-2")},
				{From: port("b-1"), To: pkg("a-1")},
				{From: pkg("a-1"), To: port("a-1")},
				{From: pkg("b-1"), To: port("b-1")},
				{From: pkg("lib-2"), To: port("lib-2")},
			},
		},
		Warnings: []depgraph.Warning{
			{
				Kind:    depgraph.WarningUnresolvable,
				Subject: "missing",
				Message: `Ignoring unresolvable requires "missing"`,
			},
			{
				Kind:    depgraph.WarningAmbiguous,
				Subject: "cmd:gcc",
				Message: `Got multiple results for requires "cmd:gcc", using gcc-13.3.0_2023_08_10-1-x86_64.PackageInfo`,
			},
		},
	}
}
