package substack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leofalp/substack-tools/core/htmltext"
	"github.com/leofalp/substack-tools/internal/utils"
	api "github.com/leofalp/substack-tools/providers/substack"
)

// Format selects how a tool renders its result.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

const (
	// DefaultContentLimit is the number of characters of post content shown
	// in a listing before it is cut off.
	DefaultContentLimit = 8000
	// TruncationNotice is appended to content cut at the limit.
	TruncationNotice = "\n\n[... content truncated ...]"

	untitled    = "Untitled"
	unknownDate = "Unknown date"
)

// Formatter renders posts and listings. The zero value uses
// [DefaultContentLimit], the plain-text converter and substack.com.
type Formatter struct {
	// ContentLimit caps the characters of content shown per post.
	ContentLimit int
	// Converter turns post HTML into text. Nil means htmltext.Plain.
	Converter htmltext.Converter
	// BaseDomain is the host publications live under.
	BaseDomain string
}

func (f *Formatter) contentLimit() int {
	if f.ContentLimit <= 0 {
		return DefaultContentLimit
	}
	return f.ContentLimit
}

func (f *Formatter) host(handle string) string {
	domain := f.BaseDomain
	if domain == "" {
		domain = api.DefaultBaseDomain
	}
	return handle + "." + domain
}

// PublicationURL returns https://<handle>.<base domain>.
func (f *Formatter) PublicationURL(handle string) string {
	return "https://" + f.host(handle)
}

func (f *Formatter) toText(html string) string {
	return htmltext.ConvertOrPlain(f.Converter, html)
}

// FormatPost renders one post as a Markdown block: title, subtitle, a stats
// line and the slug. With includeContent the converted body follows,
// truncated at the content limit.
func (f *Formatter) FormatPost(post *api.Post, includeContent bool) string {
	title := post.Title
	if title == "" {
		title = untitled
	}

	lines := []string{"### " + title}
	if post.Subtitle != "" {
		lines = append(lines, "*"+post.Subtitle+"*")
	}

	stats := []string{"📅 " + FormatDate(post.PostDate)}
	if likes := post.Likes(); likes != 0 {
		stats = append(stats, "❤️ "+strconv.Itoa(likes))
	}
	if post.CommentCount != 0 {
		stats = append(stats, "💬 "+strconv.Itoa(post.CommentCount))
	}
	if post.Paywalled() {
		stats = append(stats, "🔒 Paywalled")
	}
	lines = append(lines, strings.Join(stats, " | "))

	if post.Slug != "" {
		lines = append(lines, "📝 Slug: `"+post.Slug+"`")
	}

	if includeContent && post.BodyHTML != "" {
		content := f.toText(post.BodyHTML)
		if cut, truncated := utils.TruncateRunes(content, f.contentLimit()); truncated {
			content = cut + TruncationNotice
		}
		lines = append(lines, "", "**Content:**", content)
	}

	return strings.Join(lines, "\n")
}

type postListJSON struct {
	Publication string     `json:"publication"`
	URL         string     `json:"url"`
	Count       int        `json:"count"`
	Posts       []api.Post `json:"posts"`
}

// FormatPostList renders the recent posts of one publication. JSON carries
// the full records; the text rendering shows bodies only when includeContent
// is set.
func (f *Formatter) FormatPostList(handle string, posts []api.Post, format Format, includeContent bool) (string, error) {
	if format == FormatJSON {
		return encodeJSON(postListJSON{
			Publication: handle,
			URL:         f.PublicationURL(handle),
			Count:       len(posts),
			Posts:       posts,
		})
	}

	lines := []string{
		"# Posts from " + f.host(handle),
		fmt.Sprintf("Showing %d posts (most recent first)", len(posts)),
		"",
	}
	for i := range posts {
		lines = append(lines, f.FormatPost(&posts[i], includeContent), "")
	}
	return strings.Join(lines, "\n"), nil
}

type postContentJSON struct {
	api.Post
	ContentText string `json:"content_text"`
}

// FormatPostContent renders a single post with its full converted body.
// The JSON form keeps body_html and adds the converted text as
// content_text.
func (f *Formatter) FormatPostContent(post *api.Post, format Format) (string, error) {
	if format == FormatJSON {
		return encodeJSON(postContentJSON{Post: *post, ContentText: f.toText(post.BodyHTML)})
	}

	title := post.Title
	if title == "" {
		title = untitled
	}
	lines := []string{"# " + title}
	if post.Subtitle != "" {
		lines = append(lines, "*"+post.Subtitle+"*")
	}
	lines = append(lines, "📅 "+FormatDate(post.PostDate))
	if len(post.PublishedBylines) > 0 {
		author := post.PublishedBylines[0].Name
		if author == "" {
			author = "Unknown"
		}
		lines = append(lines, "✍️ By "+author)
	}
	if post.Paywalled() {
		lines = append(lines, "🔒 This is a paywalled post")
	}
	lines = append(lines, "")

	if post.BodyHTML != "" {
		lines = append(lines, f.toText(post.BodyHTML))
	} else {
		lines = append(lines, "*No content available (may be paywalled)*")
	}
	return strings.Join(lines, "\n"), nil
}

// FormatRecommendations renders the publications recommended by handle.
func (f *Formatter) FormatRecommendations(handle string, pubs []api.Publication) string {
	lines := []string{
		"# Recommended by " + f.host(handle),
		fmt.Sprintf("Found %d recommendations", len(pubs)),
		"",
	}
	for _, pub := range pubs {
		name := pub.Name
		if name == "" {
			name = recommendationName(pub.URL)
		}
		lines = append(lines, "- **"+name+"**")
		if pub.URL != "" {
			lines = append(lines, "  "+pub.URL)
		}
	}
	return strings.Join(lines, "\n")
}

// recommendationName derives a display name from a publication URL when the
// API did not provide one.
func recommendationName(url string) string {
	if url == "" {
		return "Unknown"
	}
	name := strings.TrimPrefix(url, "https://")
	return strings.Replace(name, "."+api.DefaultBaseDomain, "", 1)
}

// FormatCategories renders the platform's topic categories.
func (f *Formatter) FormatCategories(cats []api.Category) string {
	lines := []string{
		"# Substack Categories",
		fmt.Sprintf("Found %d categories", len(cats)),
		"",
	}
	for _, cat := range cats {
		lines = append(lines, fmt.Sprintf("- **%s** (ID: %d)", cat.Name, cat.ID))
	}
	return strings.Join(lines, "\n")
}

// encodeJSON indents by two spaces and leaves HTML characters unescaped so
// post bodies stay readable.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("error encoding result: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// FormatDate renders a post date as "January 15, 2024". Full timestamps are
// tried first, then the leading YYYY-MM-DD; anything else is returned
// unchanged and the empty string becomes "Unknown date".
func FormatDate(raw string) string {
	if raw == "" {
		return unknownDate
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("January 02, 2006")
		}
	}

	day := raw
	if len(day) > 10 {
		day = day[:10]
	}
	if t, err := time.Parse(time.DateOnly, day); err == nil {
		return t.Format("January 02, 2006")
	}
	return raw
}
