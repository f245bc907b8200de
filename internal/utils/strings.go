package utils

import (
	"net/url"
	"strings"
	"unicode"
)

// NormalizeString trims whitespace and normalizes string input
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeName trims a display name and collapses inner runs of whitespace,
// including the full-width space common in Japanese names.
func NormalizeName(name string) string {
	return strings.Join(strings.FieldsFunc(name, unicode.IsSpace), " ")
}

// NormalizeOptional returns nil for blank input so optional columns stay NULL.
func NormalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// IsValidHTTPURL accepts absolute http(s) URLs with a host.
func IsValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RuneLen counts characters rather than bytes so Japanese input is measured fairly.
func RuneLen(s string) int {
	return len([]rune(s))
}
