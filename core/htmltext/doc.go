// Package htmltext turns post body markup into readable text.
//
// [ToText] is a pure, ordered list of regular-expression rewrites that keeps
// paragraphs, headings, list items and quotes as Markdown-ish plain text and
// drops everything else. [Markdown] is a richer alternative backed by
// html-to-markdown that also keeps links and emphasis. Both satisfy
// [Converter], so callers can pick one from configuration.
package htmltext
