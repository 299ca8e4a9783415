package substack

import (
	"context"
	"log/slog"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/leofalp/substack-tools/core/htmltext"
	"github.com/leofalp/substack-tools/providers/tool"
	api "github.com/leofalp/substack-tools/providers/substack"
)

// Tool names as advertised to clients.
const (
	GetPostsToolName           = "substack_get_posts"
	GetPostContentToolName     = "substack_get_post_content"
	BatchGetPostsToolName      = "substack_batch_get_posts"
	GetRecommendationsToolName = "substack_get_recommendations"
	ListCategoriesToolName     = "substack_list_categories"
)

// Fetcher is the remote access the tools need. *api.Client implements it.
type Fetcher interface {
	ListPosts(ctx context.Context, address string, limit int) ([]api.PostRef, error)
	GetMetadata(ctx context.Context, ref api.PostRef) (*api.Post, error)
	GetContent(ctx context.Context, ref api.PostRef) (string, error)
	ListRecommendations(ctx context.Context, address string) ([]api.Publication, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
}

var _ Fetcher = (*api.Client)(nil)

// Tools implements the Substack tool functions over a [Fetcher].
type Tools struct {
	fetcher   Fetcher
	formatter *Formatter
	delay     time.Duration
}

// Option configures [Tools].
type Option func(*Tools)

// WithBatchDelay sets the pause between publications in a batch.
func WithBatchDelay(d time.Duration) Option {
	return func(t *Tools) {
		if d >= 0 {
			t.delay = d
		}
	}
}

// WithContentLimit sets how many characters of content a listing shows per
// post.
func WithContentLimit(n int) Option {
	return func(t *Tools) {
		if n > 0 {
			t.formatter.ContentLimit = n
		}
	}
}

// WithConverter sets the HTML-to-text converter used for post bodies.
func WithConverter(c htmltext.Converter) Option {
	return func(t *Tools) {
		t.formatter.Converter = c
	}
}

// WithBaseDomain sets the host publications live under.
func WithBaseDomain(domain string) Option {
	return func(t *Tools) {
		if domain != "" {
			t.formatter.BaseDomain = domain
		}
	}
}

// New returns the tool functions bound to fetcher. A nil fetcher is allowed;
// every call then fails with [ErrNoFetcher].
func New(fetcher Fetcher, opts ...Option) *Tools {
	t := &Tools{
		fetcher: fetcher,
		formatter: &Formatter{
			ContentLimit: DefaultContentLimit,
			Converter:    htmltext.Plain{},
			BaseDomain:   api.DefaultBaseDomain,
		},
		delay: DefaultBatchDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewTools returns the five Substack tools ready to be added to a catalog.
func NewTools(fetcher Fetcher, opts ...Option) []tool.GenericTool {
	return New(fetcher, opts...).All()
}

// All returns the tools backed by t.
func (t *Tools) All() []tool.GenericTool {
	render := tool.WithErrorRenderer(RenderError)
	return []tool.GenericTool{
		tool.NewTool(GetPostsToolName, t.GetPosts, render,
			tool.WithDescription("Fetch the most recent posts from a Substack newsletter. Returns titles, subtitles, dates, engagement and slugs. Use substack_get_post_content with a slug to read a post in full."),
		),
		tool.NewTool(GetPostContentToolName, t.GetPostContent, render,
			tool.WithDescription("Fetch the full content of one Substack post by its slug. Paywalled posts may return limited text."),
		),
		tool.NewTool(BatchGetPostsToolName, t.BatchGetPosts, render,
			tool.WithDescription("Fetch recent posts from up to 10 Substack newsletters in one call. Publications are fetched one after the other and failures are reported per publication."),
		),
		tool.NewTool(GetRecommendationsToolName, t.GetRecommendations, render,
			tool.WithDescription("List the newsletters a Substack publication recommends."),
		),
		tool.NewTool(ListCategoriesToolName, t.ListCategories, render,
			tool.WithDescription("List the topic categories Substack uses to organize newsletters."),
		),
	}
}

// GetPosts lists the most recent posts of one publication.
func (t *Tools) GetPosts(ctx context.Context, in GetPostsInput) (string, error) {
	if t.fetcher == nil {
		return "", ErrNoFetcher
	}

	posts, err := fetchPosts(ctx, t.fetcher, t.formatter.PublicationURL(in.PublicationSubdomain), in.Limit)
	if err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return "No posts found for " + in.PublicationSubdomain, nil
	}

	if in.IncludeContent {
		t.fillContent(ctx, in.PublicationSubdomain, posts)
	}
	return t.formatter.FormatPostList(in.PublicationSubdomain, posts, in.ResponseFormat, in.IncludeContent)
}

// fillContent fetches bodies missing from the metadata. A body that cannot
// be fetched is left empty.
func (t *Tools) fillContent(ctx context.Context, handle string, posts []api.Post) {
	address := t.formatter.PublicationURL(handle)
	for i := range posts {
		if posts[i].BodyHTML != "" || posts[i].Slug == "" {
			continue
		}
		body, err := t.fetcher.GetContent(ctx, api.PostRef{Address: address, Slug: posts[i].Slug})
		if err != nil {
			slogctx.FromCtx(ctx).DebugContext(ctx, "post content unavailable", slog.String("slug", posts[i].Slug), slog.String("error", err.Error()))
			continue
		}
		posts[i].BodyHTML = body
	}
}

// GetPostContent renders one post with its full body. A failure to fetch
// the body is not an error; the post is rendered without content.
func (t *Tools) GetPostContent(ctx context.Context, in GetPostContentInput) (string, error) {
	if t.fetcher == nil {
		return "", ErrNoFetcher
	}

	address := t.formatter.PublicationURL(in.PublicationSubdomain)
	ref := api.PostRef{Address: address, Slug: in.PostSlug, URL: address + "/p/" + in.PostSlug}

	meta, err := t.fetcher.GetMetadata(ctx, ref)
	if err != nil {
		return "", err
	}
	var post api.Post
	if meta != nil {
		post = *meta
	}
	post.Slug = in.PostSlug

	if post.BodyHTML == "" {
		body, err := t.fetcher.GetContent(ctx, ref)
		if err != nil {
			slogctx.FromCtx(ctx).DebugContext(ctx, "post content unavailable", slog.String("slug", in.PostSlug), slog.String("error", err.Error()))
		}
		post.BodyHTML = body
	}

	return t.formatter.FormatPostContent(&post, in.ResponseFormat)
}

// BatchGetPosts lists recent posts of several publications. Per-publication
// failures are part of the output, not an error.
func (t *Tools) BatchGetPosts(ctx context.Context, in BatchGetPostsInput) (string, error) {
	batcher := &Batcher{Fetcher: t.fetcher, Delay: t.delay, URL: t.formatter.PublicationURL}
	result, err := batcher.Run(ctx, in.PublicationSubdomains, in.PostsPerPublication)
	if err != nil {
		return "", err
	}
	return t.formatter.FormatBatch(result, in.PostsPerPublication, in.ResponseFormat)
}

// GetRecommendations lists the publications recommended by one publication.
func (t *Tools) GetRecommendations(ctx context.Context, in GetRecommendationsInput) (string, error) {
	if t.fetcher == nil {
		return "", ErrNoFetcher
	}

	pubs, err := t.fetcher.ListRecommendations(ctx, t.formatter.PublicationURL(in.PublicationSubdomain))
	if err != nil {
		return "", err
	}
	if len(pubs) == 0 {
		return "No recommendations found for " + in.PublicationSubdomain, nil
	}
	return t.formatter.FormatRecommendations(in.PublicationSubdomain, pubs), nil
}

// ListCategories lists Substack's topic categories.
func (t *Tools) ListCategories(ctx context.Context, _ ListCategoriesInput) (string, error) {
	if t.fetcher == nil {
		return "", ErrNoFetcher
	}

	cats, err := t.fetcher.ListCategories(ctx)
	if err != nil {
		return "", err
	}
	if len(cats) == 0 {
		return "No categories found", nil
	}
	return t.formatter.FormatCategories(cats), nil
}
