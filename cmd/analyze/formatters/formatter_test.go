package formatters_test

import (
	"testing"

	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters"
	"github.com/LegacyCodeHQ/portgraph/depgraph"
	"github.com/LegacyCodeHQ/portgraph/internal/fixtures"
	"github.com/LegacyCodeHQ/portgraph/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	f, ok := formatters.ParseOutputFormat("MERMAID")
	assert.True(t, ok)
	assert.Equal(t, formatters.OutputFormatMermaid, f)

	_, ok = formatters.ParseOutputFormat("svg")
	assert.False(t, ok)
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, "text, json, dot, mermaid", formatters.SupportedFormats())
}

func TestGroupedPorts(t *testing.T) {
	grouped := formatters.GroupedPorts([][]string{{"a-1", "b-1"}, {"x-2", "y-3"}})

	assert.Len(t, grouped, 4)
	assert.True(t, grouped["x-2"])
	assert.False(t, grouped["lib-2"])
}

func TestTextFormatter_Report(t *testing.T) {
	formatter := &formatters.TextFormatter{}
	output, err := formatter.Format(fixtures.SampleReport(), formatters.RenderOptions{})
	require.NoError(t, err)

	g := testhelpers.TextGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestTextFormatter_EmptyReport(t *testing.T) {
	formatter := &formatters.TextFormatter{}
	output, err := formatter.Format(depgraph.Report{}, formatters.RenderOptions{})
	require.NoError(t, err)

	g := testhelpers.TextGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}
