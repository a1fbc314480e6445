package dot

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters"
	"github.com/LegacyCodeHQ/portgraph/depgraph"
)

const cycleFillColor = "#f4cccc"

// Formatter renders the cycle remainder as a Graphviz digraph.
type Formatter struct{}

// Format writes ports as boxes and packages as ellipses. Ports belonging to
// a cycle group are filled.
func (f *Formatter) Format(r depgraph.Report, opts formatters.RenderOptions) (string, error) {
	grouped := formatters.GroupedPorts(r.CycleGroups)

	var sb strings.Builder
	sb.WriteString("digraph dependencies {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n")

	if opts.Label != "" {
		sb.WriteString(fmt.Sprintf("  label=%q;\n", opts.Label))
		sb.WriteString("  labelloc=t;\n")
		sb.WriteString("  labeljust=l;\n")
		sb.WriteString("  fontsize=10;\n")
		sb.WriteString("  fontname=Courier;\n")
	}
	sb.WriteString("\n")

	for _, n := range r.Remainder.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.ID)}
		switch {
		case n.Kind == depgraph.PackageKind:
			attrs = append(attrs, "shape=ellipse")
		case grouped[n.ID]:
			attrs = append(attrs, "style=filled", fmt.Sprintf("fillcolor=%q", cycleFillColor))
		}
		sb.WriteString(fmt.Sprintf("  %q [%s];\n", nodeID(n), strings.Join(attrs, ", ")))
	}

	if len(r.Remainder.Edges) > 0 {
		sb.WriteString("\n")
		for _, e := range r.Remainder.Edges {
			sb.WriteString(fmt.Sprintf("  %q -> %q;\n", nodeID(e.From), nodeID(e.To)))
		}
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// nodeID keeps a port and its main package apart, they share an ID.
func nodeID(n depgraph.CycleNode) string {
	return n.Kind.String() + ":" + n.ID
}
