package analyze

import (
	"io"
	"log/slog"
	"time"

	"github.com/LegacyCodeHQ/portgraph/config"
	"github.com/spf13/cobra"
)

// Options holds the flags shared by every command running an analysis.
type Options struct {
	ConfigPath  string
	Tree        string
	Repository  string
	SystemDirs  []string
	Pkgman      string
	PackageTool string
	Timeout     time.Duration
	Jobs        int
	Strict      bool
	Verbose     bool
}

// AddFlags registers the analysis flags on cmd.
func AddFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "Configuration file (default: "+config.FileName+" in the current directory)")
	cmd.Flags().StringVarP(&opts.Tree, "tree", "t", "", "Ports tree root")
	cmd.Flags().StringVarP(&opts.Repository, "repository", "r", "", "Directory of buildable .PackageInfo files (default: <tree>/repository)")
	cmd.Flags().StringSliceVar(&opts.SystemDirs, "system-dir", nil, "Directory of installed .hpkg files (repeatable)")
	cmd.Flags().StringVar(&opts.Pkgman, "pkgman", "", "Path of the pkgman binary")
	cmd.Flags().StringVar(&opts.PackageTool, "package-tool", "", "Path of the package archive tool")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "Timeout of a single dependency resolution (e.g. 30s)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Number of descriptor extractions to run at once")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Fail when a requirement resolves to more than one package")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log debug details to stderr")
}

// LoadConfig reads the configuration file and applies the flags that were
// set explicitly on cmd.
func LoadConfig(cmd *cobra.Command, opts *Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("tree") {
		cfg.Tree = opts.Tree
	}
	if flags.Changed("repository") {
		cfg.Repository = opts.Repository
	}
	if flags.Changed("system-dir") {
		cfg.SystemPackageDirs = opts.SystemDirs
	}
	if flags.Changed("pkgman") {
		cfg.Tools.Pkgman = opts.Pkgman
	}
	if flags.Changed("package-tool") {
		cfg.Tools.Package = opts.PackageTool
	}
	if flags.Changed("timeout") {
		cfg.ResolveTimeout = opts.Timeout.String()
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.Jobs
	}
	if flags.Changed("strict") {
		cfg.StrictAmbiguity = opts.Strict
	}

	return cfg, cfg.Validate()
}

// NewLogger returns a text logger writing to w. Verbose enables debug output.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
