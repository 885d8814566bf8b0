// Package util provides cell and header helpers shared by the CSV readers.
package util

import (
	"regexp"
	"strings"
)

// missingTokens are cell values spreadsheet exports use for "no value".
var missingTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"null": {},
	"none": {},
	"n/a":  {},
}

// Cell trims whitespace and surrounding double quotes from a raw cell and
// returns "" for missing-value tokens.
func Cell(s string) string {
	s = strings.TrimSpace(TrimQuotes(strings.TrimSpace(s)))
	if IsMissing(s) {
		return ""
	}
	return s
}

// IsMissing reports whether a cell holds one of the missing-value tokens.
func IsMissing(s string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// NormalizeHeader folds a header cell for case-insensitive column lookup.
// A UTF-8 byte order mark is dropped.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.TrimSpace(s))
}

var modifiedSuffix = regexp.MustCompile(`\s*\|\s*Modified:\s*[\d\-:\s]+`)

// CleanDescription strips the "| Modified: YYYY-MM-DD HH:MM" fragment that
// file-browser exports append to descriptions.
func CleanDescription(s string) string {
	return strings.TrimSpace(modifiedSuffix.ReplaceAllString(s, ""))
}

// SlashPath converts Windows separators to forward slashes.
func SlashPath(s string) string {
	return strings.ReplaceAll(s, `\`, "/")
}
