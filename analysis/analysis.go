// Package analysis runs one complete dependency analysis of a ports tree.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LegacyCodeHQ/portgraph/config"
	"github.com/LegacyCodeHQ/portgraph/depgraph"
	"github.com/LegacyCodeHQ/portgraph/recipe"
	"github.com/LegacyCodeHQ/portgraph/resolver"
	"github.com/LegacyCodeHQ/portgraph/staging"
)

// Result is the outcome of a run.
type Result struct {
	Report depgraph.Report
	Stats  depgraph.Stats
	// Packages is the number of buildable packages analyzed.
	Packages int
	Elapsed  time.Duration
}

// Run stages the descriptors, builds the graph of every buildable package
// and analyzes it. The staged directories are removed before Run returns,
// whatever the outcome.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	start := time.Now()

	tree, err := recipe.Scan(cfg.Tree,
		recipe.WithSecondaryArchSuffix(cfg.SecondaryArchSuffix),
		recipe.WithLogger(logger),
	)
	if err != nil {
		return Result{}, err
	}

	session, err := staging.Stage(ctx, staging.Options{
		RepositoryPath:    cfg.RepositoryPath(),
		SystemPackageDirs: cfg.SystemPackageDirs,
		PackageTool:       cfg.Tools.Package,
		Pkgman:            cfg.Tools.Pkgman,
		Timeout:           cfg.StageTimeoutDuration(),
		Concurrency:       cfg.Jobs,
		Logger:            logger,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to stage package descriptors: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to remove staged descriptors", "error", err)
		}
	}()

	pkgman, err := resolver.NewPkgman(cfg.Tools.Pkgman, cfg.ResolveTimeoutDuration(), logger)
	if err != nil {
		return Result{}, err
	}
	defer pkgman.Close()

	g, err := depgraph.New(tree, pkgman, depgraph.Options{
		BuildableDir:    session.BuildableDir,
		SystemDir:       session.SystemDir,
		StrictAmbiguity: cfg.StrictAmbiguity,
		Logger:          logger,
	})
	if err != nil {
		return Result{}, err
	}

	packageIDs := make([]string, 0, len(session.PackageIDs))
	for _, id := range session.PackageIDs {
		packageIDs = append(packageIDs, depgraph.CanonicalPackageID(id))
	}

	logger.Info("Resolving dependencies ...", "packages", len(packageIDs))
	if err := g.ResolveAll(ctx, packageIDs); err != nil {
		return Result{}, err
	}

	report, err := g.Analyze()
	if err != nil {
		return Result{}, fmt.Errorf("failed to analyze dependency graph: %w", err)
	}
	report.Warnings = append(append([]depgraph.Warning(nil), session.Warnings...), report.Warnings...)

	result := Result{
		Report:   report,
		Stats:    g.Stats(),
		Packages: len(packageIDs),
		Elapsed:  time.Since(start),
	}
	logger.Debug("analysis complete",
		"packages", result.Packages,
		"ports", result.Stats.PortsExpanded,
		"resolver_calls", result.Stats.ResolverCalls,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
