// Package classify decides, without annotations, whether an operation can be
// benchmarked and synthesizes its variable values from discovered identifiers.
package classify

import (
	"strings"

	"github.com/leapstack-labs/gqlperf/internal/discovery"
	"github.com/leapstack-labs/gqlperf/pkg/core"
)

// Skip reasons for operation kinds that are never executed.
const (
	ReasonSubscription = "subscription (transport requires a persistent connection)"
	ReasonMutation     = "mutation (non-idempotent, unsafe to benchmark)"
)

// Classify returns the phase of op given the identifiers in dc. dc may be nil
// when discovery has not run.
func Classify(op core.Operation, dc *discovery.Context) core.Classification {
	switch op.Kind {
	case core.KindSubscription:
		return core.Classification{Phase: core.PhaseSkipped, Reason: ReasonSubscription}
	case core.KindMutation:
		return core.Classification{Phase: core.PhaseSkipped, Reason: ReasonMutation}
	}

	if op.ParseError != "" {
		return core.Classification{Phase: core.PhaseSkipped, Reason: op.ParseError}
	}

	if len(op.Variables) == 0 {
		return core.Classification{Phase: core.PhaseNoVars}
	}

	values := make(map[string]any, len(op.Variables))
	for _, v := range op.Variables {
		value, ok := ResolveVariable(v.Name, v.Type, dc)
		if ok {
			values[v.Name] = value
			continue
		}
		if v.Required {
			return core.Classification{
				Phase:  core.PhaseSkipped,
				Reason: "unresolvable required variable " + v.String(),
			}
		}
	}
	return core.Classification{Phase: core.PhaseResolvable, Variables: values}
}

// ResolveVariable produces a concrete value for a variable with the given
// name and declared type. It reports false when no safe value exists.
func ResolveVariable(name, typ string, dc *discovery.Context) (any, bool) {
	lname := strings.ToLower(name)
	base := strings.Trim(typ, "[]!")

	switch base {
	case "UUID":
		if cursorNames[lname] {
			return nil, false
		}
		return stringValue(lookup(UUIDRules, lname, dc))
	case "NameID":
		return stringValue(lookup(NameIDRules, lname, dc))
	case "Int":
		switch {
		case pageSizeNames[lname]:
			return pageSize, true
		case lname == "last":
			return nil, false
		}
		return defaultInt, true
	case "Float":
		return 1.0, true
	case "Boolean":
		return false, true
	case "String":
		if cursorNames[lname] {
			return nil, false
		}
		return "", true
	}

	if strings.HasSuffix(base, "FilterInput") {
		return map[string]any{}, true
	}
	return nil, false
}

func stringValue(v string, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return v, true
}
