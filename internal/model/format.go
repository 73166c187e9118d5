package model

import (
	"strings"
	"time"
	"unicode"
)

// TitleCase turns identifiers such as "in_progress" into "In Progress".
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// FormatDate renders a time as 02-Jan-2006.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02-Jan-2006")
}

// FormatDueDate renders a raw due date, or a dash when it cannot be parsed.
func FormatDueDate(s string) string {
	d, ok := ParseDueDate(s)
	if !ok {
		return "—"
	}
	return FormatDate(d)
}
