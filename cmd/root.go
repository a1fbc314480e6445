package cmd

import (
	"os"

	"github.com/LegacyCodeHQ/portgraph/cmd/analyze"
	"github.com/LegacyCodeHQ/portgraph/cmd/watch"
	"github.com/spf13/cobra"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portgraph",
		Short: "Analyze the dependency graph of a Haiku ports tree",
		Long: `Portgraph resolves the requirements of every buildable package of a
ports tree and reports the system packages the tree depends on, the ports
that require their own packages and the ports that depend cyclically on
each other.

Use 'portgraph --help' to see all available commands, or 'portgraph <command> --help'
for detailed information about a specific command.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.AddCommand(analyze.Cmd)
	cmd.AddCommand(watch.Cmd)

	cmd.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}

	// Customize version template to show additional build info
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
