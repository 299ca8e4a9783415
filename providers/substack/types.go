package substack

// AudienceOnlyPaid marks posts whose full content is restricted to paying
// subscribers.
const AudienceOnlyPaid = "only_paid"

// LikeReaction is the reaction key Substack uses for likes.
const LikeReaction = "❤"

// PostRef identifies a post returned by an archive listing.
type PostRef struct {
	// Address is the publication base URL, e.g. https://lenny.substack.com.
	Address string `json:"address"`
	Slug    string `json:"slug"`
	// URL is the canonical post URL when the listing provided one.
	URL string `json:"url,omitempty"`
}

// Post is the metadata of a single post. BodyHTML is only populated by
// full-content retrieval.
type Post struct {
	ID               int64          `json:"id,omitempty"`
	PublicationID    int64          `json:"publication_id,omitempty"`
	Title            string         `json:"title"`
	Subtitle         string         `json:"subtitle,omitempty"`
	Slug             string         `json:"slug"`
	PostDate         string         `json:"post_date,omitempty"`
	Audience         string         `json:"audience,omitempty"`
	Type             string         `json:"type,omitempty"`
	CanonicalURL     string         `json:"canonical_url,omitempty"`
	Description      string         `json:"description,omitempty"`
	Wordcount        int            `json:"wordcount,omitempty"`
	Reactions        map[string]int `json:"reactions,omitempty"`
	CommentCount     int            `json:"comment_count,omitempty"`
	PublishedBylines []Byline       `json:"publishedBylines,omitempty"`
	BodyHTML         string         `json:"body_html,omitempty"`
}

// Likes returns the like reaction count.
func (p *Post) Likes() int {
	return p.Reactions[LikeReaction]
}

// Paywalled reports whether the post is restricted to paying subscribers.
func (p *Post) Paywalled() bool {
	return p.Audience == AudienceOnlyPaid
}

// Byline is an author credited on a post.
type Byline struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Handle string `json:"handle,omitempty"`
}

// Publication is a newsletter recommended by another one.
type Publication struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Category is a Substack topic category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type archiveEntry struct {
	ID            int64  `json:"id"`
	PublicationID int64  `json:"publication_id"`
	Slug          string `json:"slug"`
	CanonicalURL  string `json:"canonical_url"`
}

type recommendation struct {
	RecommendedPublication struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		Subdomain    string `json:"subdomain"`
		CustomDomain string `json:"custom_domain"`
	} `json:"recommendedPublication"`
}
