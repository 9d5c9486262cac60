package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idelchi/topdirs/internal/dirstat"
	"github.com/idelchi/topdirs/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

//nolint:gochecknoglobals // Config constants
var (
	allowedOutputs    = []string{"table", "json"}
	allowedPolicies   = []string{string(dirstat.PolicyFatal), string(dirstat.PolicySkip)}
	allowedStrategies = []string{string(dirstat.StrategyRescan), string(dirstat.StrategyAggregate)}
)

// Command builds the root command.
//
//nolint:funlen // Validation of every flag
func (c CLI) Command() *cobra.Command {
	var (
		options dirstat.Options
		raw     rawFlags
	)

	cmd := &cobra.Command{
		Use:   "topdirs [flags] DIRECTORY",
		Short: "Report the largest directories under a path",
		Long: heredoc.Doc(`
			topdirs reports the largest directories under DIRECTORY.

			Every directory discovered within --max-recursion levels of DIRECTORY is measured
			over its whole subtree, and the largest ones are printed, largest first.
			The depth bound limits which directories are listed, never what counts towards their size.

			Read errors inside a measured subtree abort the scan unless --on-error=skip is given.

			The '-I' flag is available if using the integration script for shell usage.
			It will then pipe the result to 'fzf' and change into the selected directory.
		`),
		Version:       c.version,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if options.Integration {
				return nil
			}

			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if options.Integration {
				binary, err := os.Executable()
				if err != nil {
					binary = "topdirs"
				}

				rendered, err := integration.Render(binary)
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)

				return err
			}

			if !slices.Contains(allowedOutputs, options.Output) {
				return fmt.Errorf("invalid output format %q: must be one of %v", options.Output, allowedOutputs)
			}

			if !slices.Contains(allowedPolicies, raw.onError) {
				return fmt.Errorf("invalid --on-error %q: must be one of %v", raw.onError, allowedPolicies)
			}

			if !slices.Contains(allowedStrategies, raw.strategy) {
				return fmt.Errorf("invalid --strategy %q: must be one of %v", raw.strategy, allowedStrategies)
			}

			if cmd.Flags().Changed("max-recursion") && options.MaxDepth < 0 {
				return dirstat.ErrInvalidDepth
			}

			if options.TopN <= 0 {
				return errors.New("top must be positive")
			}

			if options.Workers < 0 || options.Buffer < 0 {
				return errors.New("workers and buffer cannot be negative")
			}

			size, err := humanize.ParseBytes(raw.minSize)
			if err != nil {
				return fmt.Errorf("invalid min-size: %w", err)
			}

			options.MinSize = size
			options.OnError = dirstat.ErrorPolicy(raw.onError)
			options.Strategy = dirstat.Strategy(raw.strategy)
			options.Path = args[0]

			// Arguments are valid from here on, errors are no longer usage errors.
			cmd.SilenceUsage = true

			return logic(cmd.Context(), options, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.SetVersionTemplate("{{ .Version }}\n")

	bindFlags(cmd.Flags(), &options, &raw)

	return cmd
}

// rawFlags holds flag values that are parsed or validated before landing in dirstat.Options.
type rawFlags struct {
	minSize  string
	onError  string
	strategy string
}

func bindFlags(flags *pflag.FlagSet, options *dirstat.Options, raw *rawFlags) {
	flags.SortFlags = false

	flags.IntVarP(&options.MaxDepth, "max-recursion", "r", dirstat.Unbounded,
		"Levels below DIRECTORY to discover directories in (0=DIRECTORY only, default unlimited)")
	flags.IntVarP(&options.TopN, "top", "t", dirstat.DefaultTopN, "Number of directories to display")
	flags.IntVarP(&options.Workers, "workers", "w", 0, "Concurrent size computations (0=number of CPUs)")
	flags.IntVar(&options.Buffer, "buffer", dirstat.DefaultBuffer, "Capacity of the results channel")
	flags.StringVar(&raw.onError, "on-error", string(dirstat.PolicyFatal), "Read errors while measuring: fatal or skip")
	flags.StringVar(&raw.strategy, "strategy", string(dirstat.StrategyRescan),
		"Size computation: rescan (one walk per directory) or aggregate (single walk)")
	flags.StringVar(&raw.minSize, "min-size", "0B", "Hide directories smaller than this (e.g., 10MB)")
	flags.StringVarP(&options.Output, "output", "o", "table", "Output format: json or table")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")
	flags.BoolVarP(&options.Integration, "init", "i", false, "Output init script for shell usage")
}

// Execute runs the CLI with the process arguments.
func (c CLI) Execute() error {
	return c.Command().ExecuteContext(context.Background())
}
