package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gqlperf/internal/cli/config"
	"github.com/leapstack-labs/gqlperf/internal/cli/output"
	"github.com/leapstack-labs/gqlperf/internal/history"
)

var errHistoryDisabled = errors.New("run history is disabled\nHint: set history_db in gqlperf.yaml or GQLPERF_HISTORY_DB")

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded benchmark runs",
		Long: `List benchmark runs recorded in the history database, newest first.

Runs are only recorded when history_db is configured.`,
		Example: `  gqlperf history
  gqlperf history --limit 5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd)
		},
	}

	cmd.Flags().Int("limit", config.DefaultHistoryListSize, "Maximum number of runs to show")
	cmd.AddCommand(newHistoryShowCommand())
	return cmd
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run and its executions",
		Long: `Show a recorded run with the timing of every operation it executed.

The run ID may be shortened to any unambiguous prefix, such as the
eight characters printed by 'gqlperf history'.`,
		Example: `  gqlperf history show 0f3c9a1e
  gqlperf history show 0f3c9a1e -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryShow(cmd, args[0])
		},
	}
}

// openHistoryStore opens the history database for reading commands, which
// unlike a benchmark run cannot proceed without it.
func openHistoryStore(cmd *cobra.Command) (*CommandContext, *history.Store, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cc.Cfg.HistoryDB == "" {
		return nil, nil, errHistoryDisabled
	}
	store, err := history.Open(cmd.Context(), cc.Cfg.HistoryDB, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cc, store, nil
}

func runHistoryShow(cmd *cobra.Command, id string) error {
	cc, store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	executions, err := store.Executions(cmd.Context(), run.ID)
	if err != nil {
		return err
	}
	return output.RenderRun(cc.Renderer, run, executions)
}

func runHistory(cmd *cobra.Command) error {
	cc, store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return output.RenderRuns(cc.Renderer, runs)
}
