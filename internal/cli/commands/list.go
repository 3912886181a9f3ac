package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/gqlperf/internal/cli/output"
	"github.com/leapstack-labs/gqlperf/internal/engine"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations and how they would be benchmarked",
		Long: `Scan, parse and classify every operation of the selected sources without
benchmarking anything.

Each operation is shown with its phase (no variables, resolvable, skipped),
the skip reason or resolved variables, and whether its fully resolved
document is valid GraphQL. Fragment spread cycles are reported per source.

Without --discover no request is sent, so operations needing identifiers
are listed as skipped.`,
		Example: `  # Classify the test suites offline
  gqlperf list --source test-suites

  # Resolve identifiers against the server first
  gqlperf list --source both --discover

  # Machine-readable output
  gqlperf list --source client-web -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	cmd.Flags().String("source", "", "Operations to list: test-suites, client-web or both (required)")
	cmd.Flags().Bool("discover", false, "Run discovery queries first so identifiers can be resolved")
	_ = cmd.RegisterFlagCompletionFunc("source", completeSource)

	return cmd
}

func runList(cmd *cobra.Command) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	sources, err := cc.Cfg.Sources()
	if err != nil {
		return err
	}

	discover, _ := cmd.Flags().GetBool("discover")
	ecfg := engine.Config{Sources: sources, Logger: cc.Logger}
	if discover {
		c, err := newClient(cc.Cfg, cc.Logger)
		if err != nil {
			return err
		}
		defer c.Close()
		ecfg.Client = c
		ecfg.DiscoveryPacer = discoveryPacer(cc.Cfg)
	}

	plans, err := engine.New(ecfg).Plan(cmd.Context(), discover)
	if err != nil {
		return err
	}
	return output.RenderPlan(cc.Renderer, plans)
}
