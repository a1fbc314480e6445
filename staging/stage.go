// Package staging prepares the descriptor directories the resolver searches.
//
// Every descriptor is copied with its requires block removed, so resolving an
// expression can never be satisfied through a package's own requirements.
// Buildable descriptors come from the repository directory. System
// descriptors are extracted from the .hpkg files of the system package
// directories and checked with pkgman before they are kept.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LegacyCodeHQ/portgraph/depgraph"
	"github.com/LegacyCodeHQ/portgraph/internal/proc"
	"github.com/LegacyCodeHQ/portgraph/resolver"
	"github.com/sourcegraph/conc/pool"
)

const (
	packageInfoExt = ".PackageInfo"
	hpkgExt        = ".hpkg"

	// DefaultPackageTool is the Haiku package archive tool, looked up on PATH.
	DefaultPackageTool = "package"
)

// Options configures a staging run.
type Options struct {
	// RepositoryPath holds the descriptors of all buildable packages.
	RepositoryPath string
	// SystemPackageDirs are scanned for installed .hpkg files.
	SystemPackageDirs []string
	PackageTool       string
	Pkgman            string
	// Timeout bounds each external command.
	Timeout time.Duration
	// Concurrency bounds the external commands running at once.
	Concurrency int
	// ScratchDir is the parent of the staging directories. Empty means the
	// system temporary directory.
	ScratchDir string
	Logger     *slog.Logger
}

// Session owns the staged directories until Close.
type Session struct {
	// BuildableDir holds the stripped buildable descriptors.
	BuildableDir string
	// SystemDir holds the stripped and validated system descriptors.
	SystemDir string
	// PackageIDs are the stems of the repository descriptors, sorted.
	PackageIDs []string
	Warnings   []depgraph.Warning

	root string
}

// Close removes the staged directories.
func (s *Session) Close() error {
	if s == nil || s.root == "" {
		return nil
	}
	err := os.RemoveAll(s.root)
	s.root = ""
	return err
}

type stager struct {
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	warnings []depgraph.Warning
}

// Stage prepares both search directories. Any failure removes what was
// staged so far.
func Stage(ctx context.Context, opts Options) (*Session, error) {
	if opts.RepositoryPath == "" {
		return nil, fmt.Errorf("repository path is required")
	}
	if opts.PackageTool == "" {
		opts.PackageTool = DefaultPackageTool
	}
	if opts.Pkgman == "" {
		opts.Pkgman = resolver.DefaultPkgmanPath
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	root, err := os.MkdirTemp(opts.ScratchDir, "portgraph-stage-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	session := &Session{
		BuildableDir: filepath.Join(root, "no-requires"),
		SystemDir:    filepath.Join(root, "no-requires-system"),
		root:         root,
	}

	s := &stager{opts: opts, logger: logger}
	if err := s.stage(ctx, session); err != nil {
		session.Close()
		return nil, err
	}

	sort.Slice(s.warnings, func(i, j int) bool {
		return s.warnings[i].Subject < s.warnings[j].Subject
	})
	session.Warnings = s.warnings
	return session, nil
}

func (s *stager) stage(ctx context.Context, session *Session) error {
	for _, dir := range []string{session.BuildableDir, session.SystemDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	s.logger.Info("Preparing no-requires repository ...", "repository", s.opts.RepositoryPath)
	packageIDs, err := s.stageBuildable(ctx, session.BuildableDir)
	if err != nil {
		return err
	}
	session.PackageIDs = packageIDs

	s.logger.Info("Preparing no-requires system repository ...", "dirs", s.opts.SystemPackageDirs)
	emptyDir := filepath.Join(session.root, "empty")
	if err := os.Mkdir(emptyDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", emptyDir, err)
	}
	defer os.Remove(emptyDir)

	return s.stageSystem(ctx, session.SystemDir, emptyDir)
}

func (s *stager) stageBuildable(ctx context.Context, dest string) ([]string, error) {
	descriptors, err := filepath.Glob(filepath.Join(s.opts.RepositoryPath, "*"+packageInfoExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list repository descriptors: %w", err)
	}
	sort.Strings(descriptors)

	p := s.pool(ctx)
	packageIDs := make([]string, 0, len(descriptors))
	for _, descriptor := range descriptors {
		name := filepath.Base(descriptor)
		packageIDs = append(packageIDs, strings.TrimSuffix(name, packageInfoExt))
		p.Go(func(ctx context.Context) error {
			return StripRequiresFile(descriptor, filepath.Join(dest, name))
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("failed to stage repository descriptors: %w", err)
	}

	s.logger.Debug("staged buildable descriptors", "count", len(packageIDs))
	return packageIDs, nil
}

func (s *stager) stageSystem(ctx context.Context, dest, emptyDir string) error {
	p := s.pool(ctx)
	for _, dir := range s.opts.SystemPackageDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				s.logger.Warn("system package directory does not exist", "dir", dir)
				continue
			}
			return fmt.Errorf("failed to read system package directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), hpkgExt) {
				continue
			}
			hpkg := filepath.Join(dir, entry.Name())
			descriptor := filepath.Join(dest, strings.TrimSuffix(entry.Name(), hpkgExt)+packageInfoExt)
			p.Go(func(ctx context.Context) error {
				return s.stageSystemPackage(ctx, hpkg, descriptor, emptyDir)
			})
		}
	}

	if err := p.Wait(); err != nil {
		return fmt.Errorf("failed to stage system descriptors: %w", err)
	}
	return nil
}

// stageSystemPackage extracts the descriptor of one installed package.
// Extraction failure is fatal, an invalid descriptor is dropped with a warning.
func (s *stager) stageSystemPackage(ctx context.Context, hpkg, descriptor, emptyDir string) error {
	extracted := descriptor + ".tmp"
	_, stderr, err := proc.Run(ctx, proc.Command{
		Name:    s.opts.PackageTool,
		Args:    []string{"extract", "-i", extracted, hpkg, packageInfoExt},
		Timeout: s.opts.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to extract package info from %s: %w", hpkg,
			proc.CommandError(s.opts.PackageTool, err, stderr))
	}

	if err := StripRequiresFile(extracted, descriptor); err != nil {
		return err
	}
	if err := os.Remove(extracted); err != nil {
		return fmt.Errorf("failed to remove extracted descriptor: %w", err)
	}

	if s.isValid(ctx, descriptor, emptyDir) {
		return nil
	}

	name := filepath.Base(hpkg)
	s.addWarning(depgraph.Warning{
		Kind:    depgraph.WarningInvalidDescriptor,
		Subject: name,
		Message: fmt.Sprintf("Ignoring invalid package info from %s", name),
	})
	if err := os.Remove(descriptor); err != nil {
		return fmt.Errorf("failed to remove invalid descriptor: %w", err)
	}
	return nil
}

func (s *stager) isValid(ctx context.Context, descriptor, emptyDir string) bool {
	_, stderr, err := proc.Run(ctx, proc.Command{
		Name:    s.opts.Pkgman,
		Args:    []string{"resolve-dependencies", descriptor, emptyDir},
		Timeout: s.opts.Timeout,
	})
	if err != nil {
		s.logger.Debug("descriptor rejected", "descriptor", descriptor, "error", err, "stderr", stderr)
		return false
	}
	return true
}

func (s *stager) addWarning(w depgraph.Warning) {
	s.mu.Lock()
	s.warnings = append(s.warnings, w)
	s.mu.Unlock()
	s.logger.Warn(w.Message, "kind", string(w.Kind), "subject", w.Subject)
}

func (s *stager) pool(ctx context.Context) *pool.ContextPool {
	return pool.New().
		WithContext(ctx).
		WithMaxGoroutines(s.opts.Concurrency).
		WithCancelOnError().
		WithFirstError()
}
