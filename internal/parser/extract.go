package parser

import (
	"fmt"
	"regexp"
)

// ExtractFragmentDef returns the full `fragment Name on Type { ... }`
// definition from text.
func ExtractFragmentDef(text, name string) (string, error) {
	header := regexp.MustCompile(`\bfragment\s+` + regexp.QuoteMeta(name) + `\s+on\s+` + namePattern)
	loc := header.FindStringIndex(text)
	if loc == nil {
		return "", fmt.Errorf("fragment %q not found", name)
	}
	_, end, err := Block(text, loc[1], Braces)
	if err != nil {
		return "", fmt.Errorf("fragment %q: %w", name, err)
	}
	return text[loc[0] : end+1], nil
}

// ExtractOperationDef returns just the named operation from a file that may
// declare several, including its optional variable list.
func ExtractOperationDef(text, name string) (string, error) {
	header := regexp.MustCompile(`\b(?:query|mutation|subscription)\s+` + regexp.QuoteMeta(name) + `\b`)
	for _, loc := range header.FindAllStringIndex(text, -1) {
		if depthAt(text, loc[0]) != 0 {
			continue
		}

		from := skipSpace(text, loc[1])
		if from < len(text) && text[from] == '(' {
			end, err := MatchingClose(text, from, Parens)
			if err != nil {
				return "", fmt.Errorf("operation %q variables: %w", name, err)
			}
			from = end + 1
		}

		_, end, err := Block(text, from, Braces)
		if err != nil {
			return "", fmt.Errorf("operation %q: %w", name, err)
		}
		return text[loc[0] : end+1], nil
	}
	return "", fmt.Errorf("operation %q not found", name)
}

// ExtractAnonymousDef returns the first top-level `{ ... }` block of text.
func ExtractAnonymousDef(text string) (string, error) {
	start, end, err := Block(text, 0, Braces)
	if err != nil {
		return "", fmt.Errorf("anonymous operation: %w", err)
	}
	return text[start : end+1], nil
}
