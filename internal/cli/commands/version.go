package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo identifies the binary. Fields are stamped with -ldflags at
// release time and keep their defaults in development builds.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the gqlperf version together with the commit and date it was
built from, and the Go toolchain and platform of the binary.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short, _ := cmd.Flags().GetBool("short"); short {
				_, _ = fmt.Fprintln(out, info.Version)
				return
			}
			_, _ = fmt.Fprintf(out, "gqlperf v%s\n", info.Version)
			_, _ = fmt.Fprintln(out, "GraphQL performance regression benchmark")
			_, _ = fmt.Fprintf(out, "  commit:   %s\n", info.GitCommit)
			_, _ = fmt.Fprintf(out, "  built:    %s\n", info.BuildDate)
			_, _ = fmt.Fprintf(out, "  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().Bool("short", false, "Print only the version number")
	return cmd
}
