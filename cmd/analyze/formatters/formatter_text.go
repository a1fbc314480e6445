package formatters

import (
	"strings"

	"github.com/LegacyCodeHQ/portgraph/depgraph"
)

// TextFormatter prints the report as headed, indented lists.
type TextFormatter struct{}

// Format renders the three diagnostic lists, followed by the cycle groups
// when there are any. The opts parameter is not used.
func (f *TextFormatter) Format(r depgraph.Report, opts RenderOptions) (string, error) {
	var sb strings.Builder
	writeSection(&sb, "Required system packages:", r.SystemPackages)
	writeSection(&sb, "Self depending ports:", r.SelfDependentPorts)
	writeSection(&sb, "Ports depending cyclically on each other:", r.CyclicPorts)

	if len(r.CycleGroups) > 0 {
		groups := make([]string, 0, len(r.CycleGroups))
		for _, group := range r.CycleGroups {
			groups = append(groups, strings.Join(group, ", "))
		}
		writeSection(&sb, "Cycle groups:", groups)
	}
	return sb.String(), nil
}

func writeSection(sb *strings.Builder, heading string, items []string) {
	sb.WriteString(heading)
	sb.WriteString("\n")
	for _, item := range items {
		sb.WriteString("  ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
}
