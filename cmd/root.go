package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/config"
	"laravel-api-forge/internal/invoker"
	"laravel-api-forge/internal/logger"
	"laravel-api-forge/internal/prompt"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// configPath holds the path to the YAML configuration file.
// It's passed via the `--config` or `-c` flag.
var configPath string

// cfg is loaded once by the persistent pre-run and read by every subcommand.
var cfg = config.Default()

// Seams replaced by tests.
var (
	newRunner = func(c config.Config) invoker.Runner {
		return invoker.New(invoker.WithTimeout(c.Commands.Timeout))
	}
	newPrompter = func(noInteraction bool) prompt.Prompter {
		if noInteraction {
			return prompt.Defaults{}
		}
		return prompt.NewInteractive()
	}
)

// newRootCmd builds the `forge` command tree with fresh flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "forge",
		Short: "Laravel API project generator",
		Long:  "forge creates Laravel API projects with a curated configuration, committing each setup step to git.",

		SilenceUsage:  true,
		SilenceErrors: true,

		// PersistentPreRunE runs before any subcommand: logging first, then config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.Init(debug)
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return apperr.Wrap(apperr.Usage, "Invalid configuration", err)
			}
			cfg = loaded
			logger.Debug("[DEBUG] Loaded configuration from %s\n", configPath)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to the configuration file")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Wrap(apperr.Usage, "Invalid flags", err)
	})

	root.AddCommand(newNewCmd(), newSelfUpdateCmd(), newVersionCmd())
	return root
}

// Execute runs the CLI with args and returns the first fatal error.
// The caller maps it to an exit status with apperr.ExitCode.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}
