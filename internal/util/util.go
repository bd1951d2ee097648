// Package util provides small string helpers shared by the parser and the
// command line front end.
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

// SplitCommand splits a "command|arg|arg" line into its command and args.
// Surrounding whitespace is dropped; an empty line yields an empty command.
func SplitCommand(line string) (string, []string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	parts := strings.Split(line, "|")
	cmd := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return cmd, nil
	}
	return cmd, parts[1:]
}
