// Package main provides the gqlperf command: a GraphQL performance
// regression benchmark for CI pipelines.
package main

import (
	"os"

	"github.com/leapstack-labs/gqlperf/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cli.Execute()))
}
