package formatters

import "github.com/LegacyCodeHQ/portgraph/depgraph"

// RenderOptions contains optional parameters for rendering a report.
type RenderOptions struct {
	// Label is an optional title for graph formats
	Label string
}

// Formatter is the interface that all report formatters must implement.
type Formatter interface {
	// Format renders the report. The output ends with a newline.
	Format(r depgraph.Report, opts RenderOptions) (string, error)
}

// GroupedPorts returns the set of ports that belong to a cycle group.
func GroupedPorts(groups [][]string) map[string]bool {
	grouped := make(map[string]bool)
	for _, group := range groups {
		for _, port := range group {
			grouped[port] = true
		}
	}
	return grouped
}
