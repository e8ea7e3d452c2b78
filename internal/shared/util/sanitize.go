package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameChars = 255

// SanitizeFileName reduces a client-supplied upload name to something safe to log and store:
// no path separators, no traversal, no control characters, at most 255 characters.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	s, _ = Truncate(strings.TrimSpace(s), maxFileNameChars)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}
