// Package command implements the pure domain operations on bundle command
// blocks: normalization, memo synchronization, ID allocation, and keyword
// frequency ranking.
package command

import "strings"

// Normalize splits a free-text command block into an ordered list of
// non-empty trimmed lines. Carriage returns are stripped before splitting so
// CRLF input behaves like LF. Blank and whitespace-only lines are dropped.
func Normalize(commandText string) []string {
	if commandText == "" {
		return nil
	}
	raw := strings.Split(strings.ReplaceAll(commandText, "\r", ""), "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
