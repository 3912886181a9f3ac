// Package core defines the shared language of the gqlperf system.
//
// This package contains:
//   - Parsed GraphQL entities (Operation, Variable, Fragment)
//   - Classification outcomes (Phase, Classification)
//   - Execution outcomes (ExecutionResult, Status)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
