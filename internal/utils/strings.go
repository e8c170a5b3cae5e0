package utils

import "strings"

// LastLine returns the last non-blank line of s, trimmed.
// External tools tend to print the actual error last.
func LastLine(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
