package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gqlperf/internal/cli/config"
	"github.com/leapstack-labs/gqlperf/internal/cli/output"
	"github.com/leapstack-labs/gqlperf/internal/client"
	"github.com/leapstack-labs/gqlperf/internal/history"
	"github.com/leapstack-labs/gqlperf/internal/pace"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects the loaded config, logger and renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, err
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}, nil
}

// getConfig returns the configuration loaded by the root command, loading it
// from the command's own flags when the command runs standalone.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg, nil
	}
	cfg, err := config.Load("", cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newClient(cfg *config.Config, logger *slog.Logger) (*client.Client, error) {
	token, err := cfg.Token()
	if err != nil {
		return nil, err
	}
	return client.New(client.Config{
		Endpoint: cfg.GraphQLEndpoint,
		Token:    token,
		Timeout:  cfg.RequestTimeout,
		Logger:   logger,
	}), nil
}

func requestPacer(cfg *config.Config) pace.Pacer {
	return pace.Chain(pace.Delay(cfg.RequestDelay), pace.Limit(cfg.MaxRequestsPerSecond))
}

func discoveryPacer(cfg *config.Config) pace.Pacer {
	return pace.Delay(cfg.DiscoveryDelay)
}

// openHistory opens the run history when configured. Failures are logged
// and leave history disabled.
func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*history.Store, func()) {
	if cfg.HistoryDB == "" {
		return nil, func() {}
	}
	store, err := history.Open(ctx, cfg.HistoryDB, logger)
	if err != nil {
		logger.Warn("run history disabled", "path", cfg.HistoryDB, "error", err)
		return nil, func() {}
	}
	return store, func() { _ = store.Close() }
}
