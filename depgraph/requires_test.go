package depgraph

import (
	"context"
	"testing"

	"github.com/LegacyCodeHQ/portgraph/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPackageID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "/stage/no-requires/libz-1.2.13-1-x86_64.PackageInfo", want: "libz-1.2.13"},
		{raw: "haiku-r1~beta4-1-x86_64.PackageInfo", want: "haiku-r1~beta4"},
		{raw: "libz-1.2.13", want: "libz-1.2.13"},
		{raw: "standalone.PackageInfo", want: "standalone"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalPackageID(tt.raw))
		})
	}
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "foo >= 2", stripComment("  foo >= 2 # comment"))
	assert.Equal(t, "", stripComment("# only a comment"))
	assert.Equal(t, "", stripComment("   "))
	assert.Equal(t, "lib:libz", stripComment("\tlib:libz\t"))
}

func TestResolveRequiresList_CommentIsStrippedAndMemoized(t *testing.T) {
	r := resolver.NewFixed().
		Add(buildableDir, "foo >= 2", buildableDir+"/foo-2.1-1-x86_64.PackageInfo")
	g := newTestGraph(t, r, port("foo", "2.1", Package{Name: "foo"}))

	first, err := g.resolveRequiresList(context.Background(), []string{"foo >= 2 # comment"})
	require.NoError(t, err)
	second, err := g.resolveRequiresList(context.Background(), []string{"foo >= 2"})
	require.NoError(t, err)

	assert.Equal(t, first.items(), second.items())
	assert.Equal(t, []string{"foo-2.1"}, g.packageNames(first))
	assert.Equal(t, 1, r.Calls("foo >= 2"))
	assert.Zero(t, r.Calls("foo >= 2 # comment"))
	assert.Equal(t, 1, g.Stats().MemoHits)
}

func TestResolveRequiresList_UnresolvableIsCachedAndWarned(t *testing.T) {
	r := resolver.NewFixed()
	g := newTestGraph(t, r)

	deps, err := g.resolveRequiresList(context.Background(), []string{"missing", "# note", "", "missing"})
	require.NoError(t, err)

	assert.Zero(t, deps.len())
	assert.Equal(t, 1, r.Calls("missing"))
	warnings := g.Warnings()
	require.Len(t, warnings, 2)
	for _, w := range warnings {
		assert.Equal(t, WarningUnresolvable, w.Kind)
		assert.Equal(t, "missing", w.Subject)
	}
}

func TestResolveRequiresList_SystemDirectoryMarksSystemPackage(t *testing.T) {
	r := resolver.NewFixed().
		Add(systemDir, "lib:libroot", systemDir+"/haiku-r1~beta4-1-x86_64.PackageInfo")
	g := newTestGraph(t, r)

	deps, err := g.resolveRequiresList(context.Background(), []string{"lib:libroot"})
	require.NoError(t, err)

	require.Equal(t, 1, deps.len())
	pkg := g.packages[deps.items()[0]]
	assert.Equal(t, "haiku-r1~beta4", pkg.ID)
	assert.True(t, pkg.IsSystemPackage())
}

func TestResolveRequiresList_CancelledContext(t *testing.T) {
	g := newTestGraph(t, resolver.NewFixed())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.resolveRequiresList(ctx, []string{"anything"})

	assert.ErrorIs(t, err, context.Canceled)
}

func (g *Graph) packageNames(set refSet[PackageRef]) []string {
	names := make([]string, 0, set.len())
	for _, ref := range set.items() {
		names = append(names, g.packages[ref].ID)
	}
	return names
}
