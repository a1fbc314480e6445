package formatters

import "strings"

// OutputFormat represents an output format type
type OutputFormat string

const (
	OutputFormatText    OutputFormat = "text"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatDOT     OutputFormat = "dot"
	OutputFormatMermaid OutputFormat = "mermaid"
)

var outputFormats = []OutputFormat{
	OutputFormatText,
	OutputFormatJSON,
	OutputFormatDOT,
	OutputFormatMermaid,
}

// String returns the string representation of the format
func (f OutputFormat) String() string {
	return string(f)
}

// ParseOutputFormat returns the format named s, ignoring case.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	for _, f := range outputFormats {
		if strings.EqualFold(s, f.String()) {
			return f, true
		}
	}
	return "", false
}

// SupportedFormats lists the format names for help and error messages.
func SupportedFormats() string {
	names := make([]string, 0, len(outputFormats))
	for _, f := range outputFormats {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}
