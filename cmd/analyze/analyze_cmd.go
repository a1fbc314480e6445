package analyze

import (
	"errors"
	"fmt"

	"github.com/LegacyCodeHQ/portgraph/analysis"
	"github.com/LegacyCodeHQ/portgraph/cmd/analyze/formatters"
	"github.com/LegacyCodeHQ/portgraph/depgraph"

	"github.com/spf13/cobra"
)

type analyzeOptions struct {
	Options
	outputFormat string
	label        string
}

// Cmd represents the analyze command
var Cmd = NewCommand()

// NewCommand returns a new analyze command instance.
func NewCommand() *cobra.Command {
	opts := &analyzeOptions{
		outputFormat: formatters.OutputFormatText.String(),
	}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report system packages, self-dependent ports and dependency cycles",
		Long: `Resolve the requirements of every buildable package of a ports tree and
report what a mass build needs to know up front:

  - the system packages the tree depends on,
  - the ports whose build requires one of their own packages,
  - the ports that depend cyclically on each other.

Requirements are resolved with pkgman against copies of the package
descriptors that have their requires sections stripped.

Example usage:
  portgraph analyze --tree ~/haikuports
  portgraph analyze --tree ~/haikuports --format json
  portgraph analyze --config ports.yaml --format dot --label haikuports`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	AddFlags(cmd, &opts.Options)
	cmd.Flags().StringVarP(
		&opts.outputFormat,
		"format",
		"f",
		opts.outputFormat,
		fmt.Sprintf("Output format (%s)", formatters.SupportedFormats()))
	cmd.Flags().StringVar(&opts.label, "label", "", "Graph title for the dot and mermaid formats")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	formatter, err := NewFormatter(opts.outputFormat)
	if err != nil {
		return err
	}

	cfg, err := LoadConfig(cmd, &opts.Options)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := NewLogger(cmd.ErrOrStderr(), opts.Verbose)
	logger.Debug("analyzing ports tree", "tree", cfg.Tree, "repository", cfg.RepositoryPath())

	result, err := analysis.Run(cmd.Context(), cfg, logger)
	if err != nil {
		var ambiguous *depgraph.AmbiguousError
		if errors.As(err, &ambiguous) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Hint: run without --strict to use the first candidate.")
		}
		return err
	}

	output, err := formatter.Format(result.Report, formatters.RenderOptions{Label: opts.label})
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}
