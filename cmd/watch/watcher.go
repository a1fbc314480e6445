package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LegacyCodeHQ/portgraph/config"
	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 300 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":     true,
	".hg":      true,
	".svn":     true,
	"download": true,
	"work":     true,
	"output":   true,
}

var relevantExtensions = map[string]bool{
	".recipe":      true,
	".packageinfo": true,
	".hpkg":        true,
}

// watchTargets are the paths whose changes can alter a report.
type watchTargets struct {
	// roots are watched recursively.
	roots []string
	// configFile is the absolute path of the configuration file. Its
	// directory is watched on its own when no root contains it.
	configFile string
}

// watchAndRerun blocks until ctx is done, calling rerun once the watched
// directories have been quiet for debounceInterval after a relevant change.
func watchAndRerun(ctx context.Context, targets watchTargets, logger *slog.Logger, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, root := range targets.roots {
		if err := addWatchDirs(watcher, root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}
	if dir, ok := targets.configDir(); ok {
		if err := watcher.Add(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}

			if !isRelevantChange(event, targets.configFile) {
				continue
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, rerun)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func isRelevantChange(event fsnotify.Event, configFile string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	if filepath.Base(event.Name) == config.FileName {
		return true
	}
	if configFile != "" && filepath.Clean(event.Name) == configFile {
		return true
	}
	return relevantExtensions[strings.ToLower(filepath.Ext(event.Name))]
}

// newWatchTargets lists the directories whose contents feed an analysis
// and the configuration file read by it. Roots nested in another root are
// dropped. An empty configPath stands for FileName in the working directory.
func newWatchTargets(cfg config.Config, configPath string) watchTargets {
	candidates := append([]string{cfg.Tree, cfg.RepositoryPath()}, cfg.SystemPackageDirs...)

	var targets watchTargets
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if !targets.covers(abs) {
			targets.roots = append(targets.roots, abs)
		}
	}

	if configPath == "" {
		configPath = config.FileName
	}
	if abs, err := filepath.Abs(configPath); err == nil {
		targets.configFile = abs
	}
	return targets
}

func (w watchTargets) covers(path string) bool {
	for _, root := range w.roots {
		if isWithin(path, root) {
			return true
		}
	}
	return false
}

// configDir returns the directory of the configuration file when the roots
// do not already watch it.
func (w watchTargets) configDir() (string, bool) {
	if w.configFile == "" {
		return "", false
	}
	dir := filepath.Dir(w.configFile)
	if w.covers(dir) {
		return "", false
	}
	return dir, true
}

func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return addWatchDirsWithAdder(root, watcher.Add)
}

func addWatchDirsWithAdder(root string, add func(string) error) error {
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirs(watcher, path)
	}
}
