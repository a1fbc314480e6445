package dot_test

import (
	"testing"

	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters"
	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters/dot"
	"github.com/LegacyCodeHQ/portgraph/depgraph"
	"github.com/LegacyCodeHQ/portgraph/internal/fixtures"
	"github.com/LegacyCodeHQ/portgraph/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestDOTFormatter_Remainder(t *testing.T) {
	formatter := &dot.Formatter{}
	output, err := formatter.Format(fixtures.SampleReport(), formatters.RenderOptions{})
	require.NoError(t, err)

	g := testhelpers.DotGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}

func TestDOTFormatter_WithLabel(t *testing.T) {
	formatter := &dot.Formatter{}
	output, err := formatter.Format(depgraph.Report{}, formatters.RenderOptions{Label: "haikuports"})
	require.NoError(t, err)

	g := testhelpers.DotGoldie(t)
	g.Assert(t, t.Name(), []byte(output))
}
