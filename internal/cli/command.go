// Package cli wires the command line to the scanner, renderer and shell.
package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options configures a run.
type Options struct {
	// Path is the directory to inspect.
	Path string
	// TotalDiskColor selects the filesystem capacity as percentage denominator.
	TotalDiskColor bool
	// Once runs a single scan without entering interactive mode.
	Once bool
	// Output represents output format (table or json).
	Output string
	// Debug indicates whether debug output is enabled.
	Debug bool
}

//nolint:gochecknoglobals // Config constant
var allowedOutputs = []string{"table", "json"}

// Command builds the root command.
func (c CLI) Command() *cobra.Command {
	var options Options

	cmd := &cobra.Command{
		Use:   "drdisk [flags] [path]",
		Short: "Inspect the disk usage of a directory's children",
		Long: heredoc.Doc(`
			drdisk lists the files and subdirectories of a directory together with
			their size on disk, share of the total and last modification time.

			Without --once it starts an interactive session that rescans after
			every command:

			  cd <dir>    enter a subdirectory (relative or absolute)
			  .., up      go to the parent directory
			  help        list commands
			  q, quit     exit

			Sizes above 10% of the listed total are red, above 1% yellow.
			With --total-disk-color the limits are 1% and 0.1% of the filesystem.
		`),
		Args:          cobra.MaximumNArgs(1),
		Version:       c.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Path = "."
			if len(args) == 1 {
				options.Path = args[0]
			}

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if options.Output == "json" && !options.Once {
				return errors.New("json output requires --once")
			}

			return logic(cmd.Context(), options, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolVar(&options.TotalDiskColor, "total-disk-color", false,
		"Use total disk space for color thresholds instead of the current view's total size")
	flags.BoolVar(&options.Once, "once", false, "Scan once and exit, without entering interactive mode")
	flags.StringVarP(&options.Output, "output", "o", "table", "Output format: table or json")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")

	return cmd
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().ExecuteContext(context.Background())
}
