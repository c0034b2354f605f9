// Package titles derives short display titles for chat sessions from the
// text of their first message.
package titles

import "strings"

const DefaultMaxLen = 30

// Derive trims text and cuts it to maxLen characters. The cut is a raw
// character cut with trailing whitespace stripped before the ellipsis;
// word boundaries are ignored.
func Derive(text string, maxLen int) string {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) <= maxLen {
		return trimmed
	}
	cut := string([]rune(trimmed)[:maxLen])
	return strings.TrimRight(cut, " \t\n\r") + "..."
}
