package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/LegacyCodeHQ/portgraph/analysis"
	"github.com/LegacyCodeHQ/portgraph/cmd/analyze"
	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters"
	"github.com/LegacyCodeHQ/portgraph/config"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	analyze.Options
	outputFormat string
}

// Cmd represents the watch command.
var Cmd = NewCommand()

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{
		outputFormat: formatters.OutputFormatText.String(),
	}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis whenever recipes or package descriptors change",
		Long: `Watch the ports tree, the repository and the system package directories.
After a change to a recipe, a .PackageInfo, an .hpkg or the configuration
file the analysis runs again, and the report is printed when it differs
from the previous one.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, opts)
		},
	}

	analyze.AddFlags(cmd, &opts.Options)
	cmd.Flags().StringVarP(
		&opts.outputFormat,
		"format",
		"f",
		opts.outputFormat,
		fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	formatter, err := analyze.NewFormatter(opts.outputFormat)
	if err != nil {
		return err
	}

	loadConfig := configLoader(cmd, &opts.Options)
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger := analyze.NewLogger(cmd.ErrOrStderr(), opts.Verbose)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	r := &reporter{
		load:      loadConfig,
		formatter: formatter,
		logger:    logger,
		out:       cmd.OutOrStdout(),
		analyze:   analysis.Run,
	}
	if _, err := r.publish(ctx); err != nil {
		return fmt.Errorf("initial analysis failed: %w", err)
	}

	targets := newWatchTargets(cfg, opts.ConfigPath)
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n", strings.Join(targets.roots, ", "))
	fmt.Fprintf(cmd.ErrOrStderr(), "Press Ctrl+C to stop\n")

	return watchAndRerun(ctx, targets, logger, func() {
		if _, err := r.publish(ctx); err != nil && ctx.Err() == nil {
			logger.Error("analysis failed", "error", err)
		}
	})
}

// configLoader reads the configuration file again on every call, keeping
// the flags set on cmd on top of it.
func configLoader(cmd *cobra.Command, opts *analyze.Options) func() (config.Config, error) {
	return func() (config.Config, error) {
		return analyze.LoadConfig(cmd, opts)
	}
}

type analyzeFunc func(ctx context.Context, cfg config.Config, logger *slog.Logger) (analysis.Result, error)

// reporter runs one analysis at a time, each with a freshly loaded
// configuration, and prints reports whose fingerprint differs from the last
// one printed.
type reporter struct {
	mu              sync.Mutex
	load            func() (config.Config, error)
	formatter       formatters.Formatter
	logger          *slog.Logger
	out             io.Writer
	analyze         analyzeFunc
	lastFingerprint string
}

func (r *reporter) publish(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg, err := r.load()
	if err != nil {
		return false, fmt.Errorf("invalid configuration: %w", err)
	}

	result, err := r.analyze(ctx, cfg, r.logger)
	if err != nil {
		return false, err
	}

	fingerprint := result.Report.Fingerprint()
	if fingerprint == r.lastFingerprint {
		r.logger.Debug("report unchanged", "fingerprint", fingerprint)
		return false, nil
	}

	output, err := r.formatter.Format(result.Report, formatters.RenderOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to format report: %w", err)
	}
	r.lastFingerprint = fingerprint
	fmt.Fprint(r.out, output)
	return true, nil
}
