package parser

import "strings"

// StripComments removes `#` line comments while leaving string literals and
// line structure intact, so commented-out definitions are never matched.
func StripComments(text string) string {
	if !strings.Contains(text, "#") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '"':
			end := skipString(text, i)
			if end < 0 {
				b.WriteString(text[i:])
				return b.String()
			}
			b.WriteString(text[i : end+1])
			i = end
		case '#':
			nl := strings.IndexByte(text[i:], '\n')
			if nl < 0 {
				return b.String()
			}
			i += nl - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
