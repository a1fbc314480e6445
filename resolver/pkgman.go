package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/LegacyCodeHQ/portgraph/internal/proc"
)

// DefaultPkgmanPath is where Haiku ships the package manager.
const DefaultPkgmanPath = "/bin/pkgman"

const dummyPackageInfoName = "_dummy_-1-1-any.PackageInfo"

const dummyPackageInfo = `name			_dummy_
version			1-1
architecture	any
summary			"dummy"
description		"dummy"
packager		"dummy <dummy@dummy.dummy>"
vendor			"Haiku Project"
licenses		"MIT"
copyrights		"none"
provides {
	_dummy_ = 1-1
}
requires {
	%s
}
`

// Pkgman resolves expressions by running `pkgman resolve-dependencies` on a
// dummy descriptor whose only requirement is the expression.
type Pkgman struct {
	binary     string
	timeout    time.Duration
	scratchDir string
	logger     *slog.Logger
}

// NewPkgman creates an adapter around the pkgman binary. Close removes the
// scratch directory holding the dummy descriptor.
func NewPkgman(binary string, timeout time.Duration, logger *slog.Logger) (*Pkgman, error) {
	if binary == "" {
		binary = DefaultPkgmanPath
	}
	if logger == nil {
		logger = slog.Default()
	}

	scratchDir, err := os.MkdirTemp("", "portgraph-resolve-")
	if err != nil {
		return nil, fmt.Errorf("failed to create resolver scratch directory: %w", err)
	}

	return &Pkgman{
		binary:     binary,
		timeout:    timeout,
		scratchDir: scratchDir,
		logger:     logger,
	}, nil
}

// Close removes the scratch directory.
func (p *Pkgman) Close() error {
	if p == nil || p.scratchDir == "" {
		return nil
	}
	err := os.RemoveAll(p.scratchDir)
	p.scratchDir = ""
	return err
}

// Resolve implements Resolver. A failing or timed-out pkgman call for one
// directory moves on to the next directory.
func (p *Pkgman) Resolve(ctx context.Context, expression string, searchDirs []string) (Resolution, error) {
	if p.scratchDir == "" {
		return Resolution{}, errors.New("pkgman resolver is closed")
	}

	dummyPath := filepath.Join(p.scratchDir, dummyPackageInfoName)
	if err := os.WriteFile(dummyPath, []byte(fmt.Sprintf(dummyPackageInfo, expression)), 0o644); err != nil {
		return Resolution{}, fmt.Errorf("failed to write dummy package info: %w", err)
	}

	var lastErr error
	for _, dir := range searchDirs {
		stdout, stderr, err := proc.Run(ctx, proc.Command{
			Name:    p.binary,
			Args:    []string{"resolve-dependencies", dummyPath, dir},
			Timeout: p.timeout,
		})
		if err != nil {
			lastErr = proc.CommandError(p.binary, err, stderr)
			p.logger.Debug("pkgman could not resolve expression",
				"expression", expression,
				"dir", dir,
				"error", lastErr,
			)
			continue
		}

		candidates := proc.Lines(stdout)
		if len(candidates) == 0 {
			continue
		}
		return Resolution{Candidates: candidates, Dir: dir}, nil
	}

	if lastErr != nil {
		return Resolution{}, fmt.Errorf("%q: %w (%v)", expression, ErrNotFound, lastErr)
	}
	return Resolution{}, fmt.Errorf("%q: %w", expression, ErrNotFound)
}
