package parser

import (
	"fmt"
	"strings"
)

// Delimiter pairs accepted by MatchingClose.
const (
	Braces = "{}"
	Parens = "()"
)

// MatchingClose returns the index of the delimiter that closes the one at
// text[openIdx]. pair is a two-byte string such as Braces or Parens.
// String literals (including block strings) are skipped so delimiters inside
// them do not count.
func MatchingClose(text string, openIdx int, pair string) (int, error) {
	if len(pair) != 2 {
		return -1, fmt.Errorf("invalid delimiter pair %q", pair)
	}
	open, closer := pair[0], pair[1]
	if openIdx < 0 || openIdx >= len(text) || text[openIdx] != open {
		return -1, fmt.Errorf("no %q at offset %d", open, openIdx)
	}

	depth := 0
	for i := openIdx; i < len(text); i++ {
		switch c := text[i]; {
		case c == '"':
			end := skipString(text, i)
			if end < 0 {
				return -1, fmt.Errorf("unterminated string starting at offset %d", i)
			}
			i = end
		case c == open:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("unbalanced %q starting at offset %d", open, openIdx)
}

// Block finds the first opening delimiter at or after from and returns the
// span [start, end] of the balanced block it starts.
func Block(text string, from int, pair string) (start, end int, err error) {
	if len(pair) != 2 {
		return -1, -1, fmt.Errorf("invalid delimiter pair %q", pair)
	}
	if from < 0 || from > len(text) {
		return -1, -1, fmt.Errorf("offset %d out of range", from)
	}
	rel := strings.IndexByte(text[from:], pair[0])
	if rel < 0 {
		return -1, -1, fmt.Errorf("no %q after offset %d", pair[0], from)
	}
	start = from + rel
	end, err = MatchingClose(text, start, pair)
	if err != nil {
		return -1, -1, err
	}
	return start, end, nil
}

// skipString returns the index of the last quote of the string literal that
// starts at text[i], or -1 if it never terminates.
func skipString(text string, i int) int {
	if strings.HasPrefix(text[i:], `"""`) {
		rel := strings.Index(text[i+3:], `"""`)
		if rel < 0 {
			return -1
		}
		return i + 3 + rel + 2
	}
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			return j
		case '\n':
			return -1
		}
	}
	return -1
}

// depthAt reports the brace depth at offset pos, ignoring string literals.
func depthAt(text string, pos int) int {
	depth := 0
	for i := 0; i < pos && i < len(text); i++ {
		switch text[i] {
		case '"':
			end := skipString(text, i)
			if end < 0 || end >= pos {
				return depth
			}
			i = end
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}
