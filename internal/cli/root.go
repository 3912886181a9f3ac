// Package cli provides the command-line interface for gqlperf.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gqlperf/internal/cli/commands"
	"github.com/leapstack-labs/gqlperf/internal/cli/config"
	"github.com/leapstack-labs/gqlperf/internal/engine"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitRegressions = 2
)

// NewRootCmd creates and returns the root command. Running it without a
// subcommand benchmarks the selected sources.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "gqlperf",
		Short: "gqlperf - GraphQL performance regression benchmark",
		Long: `gqlperf times every query found in the selected operation trees against a
live GraphQL endpoint and compares the timings with a stored baseline.

Identifiers needed by parameterised queries are discovered from the server
first. Mutations and subscriptions are never sent.

Exit status is 0 when no regression was found (or a baseline was written),
1 on setup failures such as a rejected token, and 2 when regressions were
detected.`,
		Example: `  # Compare both trees with the stored baseline
  gqlperf --source both

  # Record a fresh baseline from the test suites
  gqlperf --source test-suites --save-baseline

  # Stricter thresholds
  gqlperf --source client-web --threshold-multiplier 1.5 --threshold-absolute 200`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd, cfg.Verbose)
			cmd.SetContext(context.WithValue(cmd.Context(), config.LoggerKey(), logger))

			if f := config.GetConfigFileUsed(); f != "" {
				logger.Debug("using config file", "path", f)
			}
			if f := config.GetEnvFileUsed(); f != "" {
				logger.Debug("using env file", "path", f)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.RunBenchmark(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}} (` + GitCommit + `, ` + BuildDate + `)
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./gqlperf.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	commands.AddBenchmarkFlags(rootCmd)

	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, engine.ErrRegressions):
		return ExitRegressions
	default:
		return ExitFailure
	}
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for gqlperf. Completions cover flags,
subcommands and the values of --source and --output.

  bash:        source <(gqlperf completion bash)
  zsh:         gqlperf completion zsh > "${fpath[1]}/_gqlperf"
  fish:        gqlperf completion fish | source
  powershell:  gqlperf completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			noDesc, _ := cmd.Flags().GetBool("no-descriptions")
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, !noDesc)
			case "zsh":
				if noDesc {
					return root.GenZshCompletionNoDesc(out)
				}
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, !noDesc)
			case "powershell":
				if noDesc {
					return root.GenPowerShellCompletion(out)
				}
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	cmd.Flags().Bool("no-descriptions", false, "Omit completion descriptions")
	return cmd
}
