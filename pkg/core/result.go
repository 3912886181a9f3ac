package core

// Phase is the classification outcome for an operation.
type Phase string

// Classification phases.
const (
	PhaseNoVars     Phase = "phase1-no-vars"
	PhaseResolvable Phase = "phase2-resolvable"
	PhaseSkipped    Phase = "skipped"
)

// Executable reports whether operations in this phase are sent to the server.
func (p Phase) Executable() bool {
	return p == PhaseNoVars || p == PhaseResolvable
}

// Classification is the result of deciding whether an operation can run.
type Classification struct {
	Phase Phase
	// Reason is set only when Phase is PhaseSkipped.
	Reason string
	// Variables holds concrete values; set only when Phase is PhaseResolvable.
	Variables map[string]any
}

// Status is the coarse outcome of executing an operation.
type Status string

// Execution statuses.
const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// ExecutionResult records one timed execution.
type ExecutionResult struct {
	Key            string `json:"key"`
	Source         string `json:"source"`
	QueryName      string `json:"queryName"`
	QueryFile      string `json:"queryFile"`
	Phase          Phase  `json:"phase"`
	Status         Status `json:"status"`
	ResponseTimeMs int64  `json:"responseTimeMs"`
	Error          string `json:"error,omitempty"`
}

// ResultKey builds the `source::operationName` key used by baselines and reports.
func ResultKey(source, operationName string) string {
	return source + "::" + operationName
}
