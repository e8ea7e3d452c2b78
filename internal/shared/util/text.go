package util

import "unicode/utf8"

const (
	// MaxTextChars bounds résumé and job text sent to the model or stored.
	MaxTextChars = 15000
	// MinTextChars is the shortest extracted text worth generating against.
	MinTextChars = 50
)

// Truncate cuts s to at most max characters and reports whether anything was dropped.
func Truncate(s string, max int) (string, bool) {
	if max <= 0 {
		return "", s != ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// CharCount counts characters, not bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
