package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/gqlperf/internal/cli/config"
	"github.com/leapstack-labs/gqlperf/internal/client"
	"github.com/leapstack-labs/gqlperf/internal/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "regressions", err: fmt.Errorf("%w: 1 of 3 operations", engine.ErrRegressions), want: 2},
		{name: "unauthorized", err: client.ErrUnauthorized, want: 1},
		{name: "usage", err: config.ErrUsage, want: 1},
		{name: "nothing executed", err: engine.ErrNothingExecuted, want: 1},
		{name: "other", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := NewRootCmd()

	for _, flag := range []string{"source", "save-baseline", "env-file", "threshold-multiplier", "threshold-absolute"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
	for _, flag := range []string{"config", "verbose", "output"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "persistent flag %q should exist", flag)
	}

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"version", "list", "history", "completion"})
}

func TestRootCmd_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no source", args: nil},
		{name: "unknown source", args: []string{"--source", "web"}},
		{name: "negative absolute threshold", args: []string{"--source", "both", "--threshold-absolute", "-5"}},
		{name: "zero multiplier", args: []string{"--source", "both", "--threshold-multiplier", "0"}},
		{name: "bad output", args: []string{"--source", "both", "-o", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runRoot(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, config.ErrUsage)
			assert.Equal(t, 1, ExitCode(err))
		})
	}
}

func TestRootCmd_RejectsArguments(t *testing.T) {
	_, err := runRoot(t, "benchmark")
	assert.Error(t, err)
}

func TestRootCmd_Version(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "gqlperf v"+Version)
}

func TestRootCmd_Completion(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bash", args: []string{"completion", "bash"}},
		{name: "zsh without descriptions", args: []string{"completion", "zsh", "--no-descriptions"}},
		{name: "fish", args: []string{"completion", "fish"}},
		{name: "powershell", args: []string{"completion", "powershell"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, "gqlperf")
		})
	}

	_, err := runRoot(t, "completion", "tcsh")
	assert.Error(t, err)
}
