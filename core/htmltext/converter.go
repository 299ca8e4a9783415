package htmltext

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Converter turns post markup into text for display.
type Converter interface {
	// Convert returns the readable form of markup.
	Convert(markup string) (string, error)
	// Name identifies the converter in configuration and logs.
	Name() string
}

const (
	NamePlain    = "plain"
	NameMarkdown = "markdown"
)

// Plain is the [ToText] rewrite pipeline.
type Plain struct{}

func (Plain) Convert(markup string) (string, error) { return ToText(markup), nil }

func (Plain) Name() string { return NamePlain }

// Markdown converts markup with html-to-markdown, keeping links, emphasis
// and code blocks that [ToText] drops.
type Markdown struct{}

func (Markdown) Convert(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	out, err := htmltomarkdown.ConvertString(markup)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (Markdown) Name() string { return NameMarkdown }

// New returns the converter registered under name. An empty name selects
// [Plain].
func New(name string) (Converter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NamePlain:
		return Plain{}, nil
	case NameMarkdown:
		return Markdown{}, nil
	default:
		return nil, fmt.Errorf("unknown content converter %q (want %q or %q)", name, NamePlain, NameMarkdown)
	}
}

// ConvertOrPlain runs c and falls back to [ToText] when c is nil or fails,
// so rendering never loses a post body because of a converter error.
func ConvertOrPlain(c Converter, markup string) string {
	if c == nil {
		return ToText(markup)
	}
	out, err := c.Convert(markup)
	if err != nil {
		return ToText(markup)
	}
	return out
}
