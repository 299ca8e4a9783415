package htmltext

import (
	"regexp"
	"strings"
)

// Rule is a single rewrite step: every match of Pattern is replaced by
// Replacement.
type Rule struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Rules is the rewrite pipeline applied by [ToText], in order. Later rules
// rely on earlier ones: the final tag strip only sees tags the structural
// rules did not translate.
var Rules = []Rule{
	{regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`), ""},
	{regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`), ""},
	{regexp.MustCompile(`(?i)<br\s*/?\s*>`), "\n"},
	{regexp.MustCompile(`(?i)<p[^>]*>`), "\n\n"},
	{regexp.MustCompile(`(?i)</p>`), ""},
	{regexp.MustCompile(`(?i)<h[1-6][^>]*>`), "\n\n## "},
	{regexp.MustCompile(`(?i)</h[1-6]>`), "\n"},
	{regexp.MustCompile(`(?i)<li[^>]*>`), "\n- "},
	{regexp.MustCompile(`(?i)<blockquote[^>]*>`), "\n> "},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

// entities are decoded one after another, ampersand first, so "&amp;lt;"
// ends up as "<".
var entities = [][2]string{
	{"&amp;", "&"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&nbsp;", " "},
}

var blankRuns = regexp.MustCompile(`\n\s*\n\s*\n`)

// ToText converts markup to plain text. It never fails: malformed markup
// degrades to whatever the tag strip leaves behind, and empty input yields
// an empty string.
func ToText(markup string) string {
	if markup == "" {
		return ""
	}

	text := markup
	for _, rule := range Rules {
		text = rule.Pattern.ReplaceAllLiteralString(text, rule.Replacement)
	}
	for _, entity := range entities {
		text = strings.ReplaceAll(text, entity[0], entity[1])
	}
	text = blankRuns.ReplaceAllLiteralString(text, "\n\n")

	return strings.TrimSpace(text)
}
