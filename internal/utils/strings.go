package utils

import "fmt"

// TruncateString shortens s to at most maxLen bytes, recording the original
// length in a suffix. Intended for log and error previews, not user content.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}

// TruncateRunes returns the first n characters (runes) of s and whether
// anything was cut off.
func TruncateRunes(s string, n int) (string, bool) {
	if n < 0 {
		return s, false
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i], true
		}
		count++
	}
	return s, false
}
