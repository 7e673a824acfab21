package cli

import (
	"strings"
	"unicode"
)

// splitArgs splits a command line on whitespace. A double quote toggles
// quoting and is dropped; whitespace inside quotes is kept. An empty quoted
// string produces no token.
func splitArgs(line string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && unicode.IsSpace(r):
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
