package substack

import (
	"regexp"
	"strings"
)

var (
	schemePrefix = regexp.MustCompile(`^https?://`)
	hostSuffix   = regexp.MustCompile(`\.substack\.com.*$`)
	wwwPrefix    = regexp.MustCompile(`^www\.`)
)

// NormalizeHandle reduces a publication reference such as
// "https://www.Lenny.substack.com/p/x" to its bare handle ("lenny").
// It never fails; input that matches none of the patterns is only trimmed
// and lowercased, and the empty string stays empty.
//
// The rewrite steps are repeated until the handle stops changing, so
// NormalizeHandle(NormalizeHandle(x)) == NormalizeHandle(x).
func NormalizeHandle(raw string) string {
	handle := raw
	for {
		next := normalizeOnce(handle)
		if next == handle {
			return next
		}
		handle = next
	}
}

func normalizeOnce(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = schemePrefix.ReplaceAllLiteralString(s, "")
	s = hostSuffix.ReplaceAllLiteralString(s, "")
	return wwwPrefix.ReplaceAllLiteralString(s, "")
}
