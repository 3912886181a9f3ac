// Package parser extracts GraphQL operations, variables and fragment
// definitions from operation files without requiring a schema.
//
// Parsing is deliberately lightweight: definitions are located by
// name-anchored patterns and their bodies are recovered with a single
// balanced-delimiter scanner shared by fragment and operation extraction.
package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/leapstack-labs/gqlperf/pkg/core"
)

const namePattern = `[_A-Za-z][_0-9A-Za-z]*`

var (
	// query GetSpace / mutation DeleteSpace / subscription OnMessage
	operationHeader = regexp.MustCompile(`\b(query|mutation|subscription)\s+(` + namePattern + `)`)
	// fragment SpaceFields on Space {
	fragmentHeader = regexp.MustCompile(`\bfragment\s+(` + namePattern + `)\s+on\s+(` + namePattern + `)\s*(?:@[^{]*)?\{`)
	// $spaceId: UUID!
	variableDecl = regexp.MustCompile(`\$(` + namePattern + `)\s*:\s*`)
)

// ParseOperations extracts every top-level query, mutation and subscription
// declared in content, in file order. A file with no keyword-anchored
// operation whose body starts with `{` yields one anonymous query named after
// the file.
func ParseOperations(filePath, content string) []core.Operation {
	text := StripComments(content)

	var ops []core.Operation
	for _, m := range operationHeader.FindAllStringSubmatchIndex(text, -1) {
		if depthAt(text, m[0]) != 0 {
			continue
		}
		op := core.Operation{
			Name:     text[m[4]:m[5]],
			Kind:     core.OperationKind(text[m[2]:m[3]]),
			FilePath: filePath,
			RawText:  text,
		}

		next := skipSpace(text, m[1])
		if next < len(text) && text[next] == '(' {
			end, err := MatchingClose(text, next, Parens)
			if err != nil {
				op.ParseError = "malformed variable list: " + err.Error()
			} else {
				op.Variables = ParseVariables(text[next+1 : end])
			}
		}
		ops = append(ops, op)
	}

	if len(ops) == 0 && strings.HasPrefix(strings.TrimSpace(text), "{") {
		base := filepath.Base(filePath)
		ops = append(ops, core.Operation{
			Name:      strings.TrimSuffix(base, filepath.Ext(base)),
			Kind:      core.KindQuery,
			FilePath:  filePath,
			RawText:   text,
			Anonymous: true,
		})
	}

	return ops
}

// ParseVariables parses the inside of an operation's variable list, e.g.
// `$id: UUID!, $first: Int = 10`. Default values are dropped before the
// required marker is inspected.
func ParseVariables(list string) []core.Variable {
	matches := variableDecl.FindAllStringSubmatchIndex(list, -1)
	vars := make([]core.Variable, 0, len(matches))
	for i, m := range matches {
		end := len(list)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		typ := list[m[1]:end]
		if eq := strings.IndexByte(typ, '='); eq >= 0 {
			typ = typ[:eq]
		}
		if at := strings.IndexByte(typ, '@'); at >= 0 {
			typ = typ[:at]
		}
		typ = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(typ), ","))
		if typ == "" {
			continue
		}

		v := core.Variable{Name: list[m[2]:m[3]], Type: typ}
		if strings.HasSuffix(typ, "!") {
			v.Required = true
			v.Type = strings.TrimSuffix(typ, "!")
		}
		vars = append(vars, v)
	}
	return vars
}

// FragmentHeader describes one `fragment X on T {` occurrence.
type FragmentHeader struct {
	Name          string
	TypeCondition string
}

// ParseFragmentHeaders lists the fragments defined in already stripped text,
// in file order.
func ParseFragmentHeaders(text string) []FragmentHeader {
	var headers []FragmentHeader
	for _, m := range fragmentHeader.FindAllStringSubmatch(text, -1) {
		headers = append(headers, FragmentHeader{Name: m[1], TypeCondition: m[2]})
	}
	return headers
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r', ',':
			i++
		default:
			return i
		}
	}
	return i
}
