package substack

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	api "github.com/leofalp/substack-tools/providers/substack"
)

// DefaultBatchDelay is the pause between two publications of a batch.
const DefaultBatchDelay = 500 * time.Millisecond

// PublicationPosts is the successful outcome for one publication.
type PublicationPosts struct {
	Handle string     `json:"publication"`
	URL    string     `json:"url"`
	Posts  []api.Post `json:"posts"`
}

// BatchFailure is the failed outcome for one publication.
type BatchFailure struct {
	Handle  string
	Message string
}

// BatchResult holds the outcome of a batch. Every attempted handle appears
// in exactly one of Successes or Failures, and both keep input order.
type BatchResult struct {
	Attempted []string
	Successes []PublicationPosts
	Failures  []BatchFailure
}

// Batcher fetches recent posts from several publications one after the
// other, pausing between publications. A failing publication is recorded
// and the batch moves on.
type Batcher struct {
	Fetcher Fetcher
	// Delay is the pause between consecutive publications. Zero disables it.
	Delay time.Duration
	// URL maps a handle to its publication address.
	URL func(handle string) string
}

// Run fetches up to perPublication posts from every handle in order. It only
// fails when no fetcher is configured. If ctx is cancelled while pausing,
// the handles not yet attempted are recorded as failures.
func (b *Batcher) Run(ctx context.Context, handles []string, perPublication int) (BatchResult, error) {
	if b.Fetcher == nil {
		return BatchResult{}, ErrNoFetcher
	}
	logger := slogctx.FromCtx(ctx)

	result := BatchResult{Attempted: append([]string(nil), handles...)}
	for i, handle := range handles {
		if i > 0 {
			if err := pause(ctx, b.Delay); err != nil {
				for _, rest := range handles[i:] {
					result.Failures = append(result.Failures, BatchFailure{Handle: rest, Message: Describe(err)})
				}
				logger.WarnContext(ctx, "batch interrupted", slog.Int("remaining", len(handles)-i), slog.String("error", err.Error()))
				return result, nil
			}
		}

		url := b.URL(handle)
		posts, err := fetchPosts(ctx, b.Fetcher, url, perPublication)
		if err != nil {
			logger.InfoContext(ctx, "batch publication failed", slog.String("publication", handle), slog.String("error", err.Error()))
			result.Failures = append(result.Failures, BatchFailure{Handle: handle, Message: Describe(err)})
			continue
		}
		result.Successes = append(result.Successes, PublicationPosts{Handle: handle, URL: url, Posts: posts})
	}
	return result, nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchPosts lists the newest posts at address and fetches each post's
// metadata. A post whose metadata cannot be fetched is kept as a stub titled
// "Unknown".
func fetchPosts(ctx context.Context, f Fetcher, address string, limit int) ([]api.Post, error) {
	refs, err := f.ListPosts(ctx, address, limit)
	if err != nil {
		return nil, err
	}

	posts := make([]api.Post, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		post, err := f.GetMetadata(ctx, ref)
		if err != nil || post == nil {
			posts = append(posts, api.Post{Slug: ref.Slug, Title: "Unknown"})
			continue
		}
		p := *post
		p.Slug = ref.Slug
		posts = append(posts, p)
	}
	return posts, nil
}

type batchJSON struct {
	Publications        []PublicationPosts `json:"publications"`
	TotalPublications   int                `json:"total_publications"`
	PostsPerPublication int                `json:"posts_per_publication"`
	Errors              []string           `json:"errors"`
}

// FormatBatch renders a batch result. Failures are listed after the
// successful publications; in JSON "errors" is null when there are none.
func (f *Formatter) FormatBatch(result BatchResult, perPublication int, format Format) (string, error) {
	if format == FormatJSON {
		var errs []string
		for _, failure := range result.Failures {
			errs = append(errs, failure.Handle+": "+failure.Message)
		}
		return encodeJSON(batchJSON{
			Publications:        result.Successes,
			TotalPublications:   len(result.Successes),
			PostsPerPublication: perPublication,
			Errors:              errs,
		})
	}

	lines := []string{
		fmt.Sprintf("# Batch Results: %d Publications", len(result.Successes)),
		fmt.Sprintf("Fetched up to %d posts each", perPublication),
		"",
	}
	for _, s := range result.Successes {
		lines = append(lines,
			"## "+f.host(s.Handle),
			fmt.Sprintf("Found %d posts", len(s.Posts)),
			"",
		)
		for i := range s.Posts {
			lines = append(lines, f.FormatPost(&s.Posts[i], false), "")
		}
		lines = append(lines, "---", "")
	}
	if len(result.Failures) > 0 {
		lines = append(lines, "### Errors")
		for _, failure := range result.Failures {
			lines = append(lines, "- "+failure.Handle+": "+failure.Message)
		}
	}
	return strings.Join(lines, "\n"), nil
}
