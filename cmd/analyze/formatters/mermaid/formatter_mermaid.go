package mermaid

import (
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters"
	"github.com/LegacyCodeHQ/portgraph/depgraph"
)

// Formatter renders the cycle remainder as a Mermaid.js flowchart.
type Formatter struct{}

// Format writes one comment per cycle group, then the nodes and edges of the
// remainder. Ports are rectangles, packages are rounded.
func (f *Formatter) Format(r depgraph.Report, opts formatters.RenderOptions) (string, error) {
	var sb strings.Builder

	if opts.Label != "" {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", opts.Label))
		sb.WriteString("---\n")
	}

	sb.WriteString("flowchart LR\n")

	for i, group := range r.CycleGroups {
		sb.WriteString(fmt.Sprintf("%%%% C%d: %s\n", i+1, strings.Join(group, ", ")))
	}

	// Mermaid node IDs can't have dots or dashes.
	grouped := formatters.GroupedPorts(r.CycleGroups)
	nodeIDs := make(map[depgraph.CycleNode]string, len(r.Remainder.Nodes))
	var cyclePorts []string
	for i, n := range r.Remainder.Nodes {
		id := fmt.Sprintf("n%d", i)
		nodeIDs[n] = id

		label := strings.ReplaceAll(n.ID, "\"", "#quot;")
		if n.Kind == depgraph.PackageKind {
			sb.WriteString(fmt.Sprintf("    %s(\"%s\")\n", id, label))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, label))
		if grouped[n.ID] {
			cyclePorts = append(cyclePorts, id)
		}
	}

	for _, e := range r.Remainder.Edges {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", nodeIDs[e.From], nodeIDs[e.To]))
	}

	if len(cyclePorts) > 0 {
		sb.WriteString("    classDef cyclePort fill:#f4cccc,stroke:#cc0000,color:#000000\n")
		sb.WriteString(fmt.Sprintf("    class %s cyclePort\n", strings.Join(cyclePorts, ",")))
	}

	return sb.String(), nil
}
