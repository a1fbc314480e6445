package watch

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/LegacyCodeHQ/portgraph/config"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWatchDirsSkipsBrokenSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on Windows")
	}

	root := t.TempDir()
	portDir := filepath.Join(root, "dev-lang", "python3")
	require.NoError(t, os.MkdirAll(portDir, 0o755))

	linkPath := filepath.Join(portDir, "python3-3.10.recipe")
	require.NoError(t, os.Symlink("missing/python3-3.10.recipe", linkPath))

	var added []string
	adder := func(path string) error {
		added = append(added, path)
		return nil
	}

	require.NoError(t, addWatchDirsWithAdder(root, adder))
	assert.NotContains(t, added, linkPath)
	assert.Contains(t, added, portDir)
}

func TestAddWatchDirsIgnoresMissingDirectoriesFromAdder(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "missing-dir")
	require.NoError(t, os.MkdirAll(target, 0o755))

	adder := func(path string) error {
		if path == target {
			return fs.ErrNotExist
		}
		return nil
	}

	assert.NoError(t, addWatchDirsWithAdder(root, adder))
}

func TestAddWatchDirsIgnoresMissingRoot(t *testing.T) {
	adder := func(path string) error {
		t.Fatalf("unexpected add of %s", path)
		return nil
	}

	assert.NoError(t, addWatchDirsWithAdder(filepath.Join(t.TempDir(), "gone"), adder))
}

func TestAddWatchDirsSkipsWorkDirectories(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{".git/objects", "haiku-apps/foo/work", "haiku-apps/foo/patches"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}

	var added []string
	require.NoError(t, addWatchDirsWithAdder(root, func(path string) error {
		added = append(added, path)
		return nil
	}))

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "haiku-apps"),
		filepath.Join(root, "haiku-apps", "foo"),
		filepath.Join(root, "haiku-apps", "foo", "patches"),
	}, added)
}

func TestIsRelevantChange(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"recipe written", fsnotify.Event{Name: "dev-lang/python3/python3-3.10.recipe", Op: fsnotify.Write}, true},
		{"descriptor created", fsnotify.Event{Name: "repository/python3-3.10.PackageInfo", Op: fsnotify.Create}, true},
		{"system package removed", fsnotify.Event{Name: "/boot/system/packages/haiku.hpkg", Op: fsnotify.Remove}, true},
		{"config renamed", fsnotify.Event{Name: config.FileName, Op: fsnotify.Rename}, true},
		{"patch written", fsnotify.Event{Name: "patches/python3-3.10.patchset", Op: fsnotify.Write}, false},
		{"readme written", fsnotify.Event{Name: "README.md", Op: fsnotify.Write}, false},
		{"recipe chmod", fsnotify.Event{Name: "foo-1.recipe", Op: fsnotify.Chmod}, false},
		{"custom config written", fsnotify.Event{Name: "/work/ports.yaml", Op: fsnotify.Write}, true},
		{"other yaml written", fsnotify.Event{Name: "/work/other.yaml", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantChange(tt.event, "/work/ports.yaml"))
		})
	}
}

func TestWatchTargets_DropsNestedRoots(t *testing.T) {
	tree := t.TempDir()
	system := t.TempDir()

	cfg := config.Default()
	cfg.Tree = tree
	cfg.SystemPackageDirs = []string{system, filepath.Join(tree, "system")}

	assert.Equal(t, []string{tree, system}, newWatchTargets(cfg, "").roots)
}

func TestWatchTargets_KeepsRepositoryOutsideTree(t *testing.T) {
	tree := t.TempDir()
	repository := t.TempDir()

	cfg := config.Default()
	cfg.Tree = tree
	cfg.Repository = repository
	cfg.SystemPackageDirs = nil

	assert.Equal(t, []string{tree, repository}, newWatchTargets(cfg, "").roots)
}

func TestWatchTargets_ConfigFile(t *testing.T) {
	workDir := t.TempDir()
	chdir(t, workDir)
	tree := t.TempDir()

	cfg := config.Default()
	cfg.Tree = tree
	cfg.SystemPackageDirs = nil

	targets := newWatchTargets(cfg, "")
	assert.Equal(t, filepath.Join(workDir, config.FileName), targets.configFile)
	dir, ok := targets.configDir()
	assert.True(t, ok)
	assert.Equal(t, workDir, dir)

	targets = newWatchTargets(cfg, filepath.Join(tree, "ports.yaml"))
	assert.Equal(t, filepath.Join(tree, "ports.yaml"), targets.configFile)
	_, ok = targets.configDir()
	assert.False(t, ok, "the tree root already covers the config directory")
}

func TestWatchAndRerun_DebouncesChanges(t *testing.T) {
	root := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reruns := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchAndRerun(ctx, watchTargets{roots: []string{root}}, logger, func() {
			reruns <- struct{}{}
		})
	}()

	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "foo-1.recipe"), []byte("PROVIDES=\"foo\"\n"), 0o644))
	}

	select {
	case <-reruns:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rerun after the recipe changed")
	}

	select {
	case <-reruns:
		t.Fatal("expected the burst of writes to trigger a single rerun")
	case <-time.After(2 * debounceInterval):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestWatchAndRerun_ConfigOutsideRoots(t *testing.T) {
	root := t.TempDir()
	configFile := filepath.Join(t.TempDir(), "ports.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("jobs: 1\n"), 0o644))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reruns := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchAndRerun(ctx, watchTargets{roots: []string{root}, configFile: configFile}, logger, func() {
			reruns <- struct{}{}
		})
	}()

	// Give the watcher time to register its paths.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(configFile, []byte("jobs: 3\n"), 0o644))

	select {
	case <-reruns:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rerun after the config file changed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
