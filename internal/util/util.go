// Package util provides string helpers for values passed in by the host.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// Unquote strips surrounding quotes and whitespace and unescapes inner quotes.
func Unquote(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// SplitLegacy splits the pipe form "CMD|a|b" into its command and args.
func SplitLegacy(input string) (command string, args []string) {
	parts := strings.Split(input, "|")
	return parts[0], parts[1:]
}
