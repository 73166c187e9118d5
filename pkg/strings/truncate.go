// Package strings holds text helpers for terminal output.
package strings

import (
	"strings"
)

// CellMaxLen is the widest free-text cell printed in tables.
const CellMaxLen = 48

const ellipsis = "…"

// Cell flattens s to one line and shortens it to at most maxLen runes,
// ending in an ellipsis when cut. maxLen below 2 is treated as 2.
func Cell(s string, maxLen int) string {
	if maxLen < 2 {
		maxLen = 2
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return strings.TrimRight(string(runes[:maxLen-1]), " ") + ellipsis
}
