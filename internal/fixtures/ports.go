// Package fixtures builds the sample ports trees and reports shared by tests.
package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LegacyCodeHQ/portgraph/config"
	"github.com/LegacyCodeHQ/portgraph/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// FakePkgman accepts every descriptor it is asked to validate and resolves a
// dummy descriptor's requirement by globbing <dir>/<name>-*.PackageInfo.
const FakePkgman = `#!/bin/sh
case "$2" in
*_dummy_*) ;;
*) exit 0 ;;
esac
expr=$(sed -n '/^requires {/{n;p;}' "$2" | sed 's/^[[:space:]]*//')
name=${expr%% *}
found=0
for f in "$3"/"$name"-*.PackageInfo; do
	if [ -e "$f" ]; then
		echo "$f"
		found=1
	fi
done
[ "$found" -eq 1 ] || exit 1
`

// FakePackageTool extracts a descriptor by copying the archive, which holds
// a plain descriptor in tests.
const FakePackageTool = `#!/bin/sh
cp "$4" "$3"
`

// Descriptor returns a minimal .PackageInfo body.
func Descriptor(name, version string, requires ...string) string {
	s := "name\t" + name + "\nversion\t" + version + "-1\n"
	if len(requires) > 0 {
		s += "requires {\n"
		for _, r := range requires {
			s += "\t" + r + "\n"
		}
		s += "}\n"
	}
	return s
}

// PortsFixture lays out a ports tree where a and b depend on each other,
// c build-requires itself and d requires the system package haiku plus a
// requirement nothing satisfies. The returned configuration points at fake
// pkgman and package tools.
func PortsFixture(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	tree := filepath.Join(root, "ports")
	repository := filepath.Join(tree, "repository")
	system := filepath.Join(root, "system")
	require.NoError(t, os.MkdirAll(repository, 0o755))
	require.NoError(t, os.MkdirAll(system, 0o755))

	testhelpers.WriteFile(t, tree, "dev-libs/a/a-1.recipe", "REQUIRES=\"\n\tb\n\t\"\n")
	testhelpers.WriteFile(t, tree, "dev-libs/b/b-1.recipe", "BUILD_REQUIRES=\"\n\ta # needed by the tests\n\t\"\n")
	testhelpers.WriteFile(t, tree, "dev-util/c/c-1.recipe", "BUILD_REQUIRES=\"c\"\n")
	testhelpers.WriteFile(t, tree, "app-misc/d/d-1.recipe", "REQUIRES=\"\n\thaiku\n\tmissing\n\t\"\n")

	testhelpers.WriteFile(t, repository, "a-1-1-x86_64.PackageInfo", Descriptor("a", "1", "b"))
	testhelpers.WriteFile(t, repository, "b-1-1-x86_64.PackageInfo", Descriptor("b", "1"))
	testhelpers.WriteFile(t, repository, "c-1-1-x86_64.PackageInfo", Descriptor("c", "1"))
	testhelpers.WriteFile(t, repository, "d-1-1-x86_64.PackageInfo", Descriptor("d", "1", "haiku", "missing"))
	testhelpers.WriteFile(t, system, "haiku-r1~beta4-1-x86_64.hpkg", Descriptor("haiku", "r1~beta4", "lib:libroot"))

	cfg := config.Default()
	cfg.Tree = tree
	cfg.SystemPackageDirs = []string{system}
	cfg.Tools.Pkgman = testhelpers.WriteScript(t, "pkgman", FakePkgman)
	cfg.Tools.Package = testhelpers.WriteScript(t, "package", FakePackageTool)
	cfg.ResolveTimeout = "5s"
	cfg.StageTimeout = "5s"
	cfg.Jobs = 2
	return cfg
}
