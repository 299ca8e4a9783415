package substack

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxHandleLength     = 100
	maxSlugLength       = 500
	maxPostsLimit       = 100
	maxBatchHandles     = 10
	maxPostsPerBatchPub = 50
	defaultPostsLimit   = 10
)

// GetPostsInput is the input of substack_get_posts.
type GetPostsInput struct {
	PublicationSubdomain string `json:"publication_subdomain" jsonschema:"description=The Substack subdomain (e.g. 'lenny' for lenny.substack.com) or a publication URL,required,minLength=1,maxLength=100"`
	Limit                int    `json:"limit,omitempty" jsonschema:"description=Number of posts to retrieve (default: 10 max: 100),minimum=1,maximum=100,default=10"`
	ResponseFormat       Format `json:"response_format,omitempty" jsonschema:"description=Output format: 'markdown' for readable text or 'json' for structured data,enum=markdown,enum=json,default=markdown"`
	IncludeContent       bool   `json:"include_content,omitempty" jsonschema:"description=When true each post includes its converted content truncated to the configured limit"`
}

// Validate normalizes the publication handle and applies defaults.
func (in *GetPostsInput) Validate() error {
	handle, err := validateHandle("publication_subdomain", in.PublicationSubdomain)
	if err != nil {
		return err
	}
	in.PublicationSubdomain = handle

	if in.Limit, err = validateLimit("limit", in.Limit, maxPostsLimit); err != nil {
		return err
	}
	in.ResponseFormat, err = validateFormat(in.ResponseFormat)
	return err
}

// GetPostContentInput is the input of substack_get_post_content.
type GetPostContentInput struct {
	PublicationSubdomain string `json:"publication_subdomain" jsonschema:"description=The Substack subdomain (e.g. 'lenny'),required,minLength=1,maxLength=100"`
	PostSlug             string `json:"post_slug" jsonschema:"description=The post slug from the URL (e.g. 'how-to-get-lucky'),required,minLength=1,maxLength=500"`
	ResponseFormat       Format `json:"response_format,omitempty" jsonschema:"description=Output format: 'markdown' for readable text or 'json' for structured data,enum=markdown,enum=json,default=markdown"`
}

// Validate normalizes the publication handle and checks the slug.
func (in *GetPostContentInput) Validate() error {
	handle, err := validateHandle("publication_subdomain", in.PublicationSubdomain)
	if err != nil {
		return err
	}
	in.PublicationSubdomain = handle

	in.PostSlug = strings.TrimSpace(in.PostSlug)
	switch n := utf8.RuneCountInString(in.PostSlug); {
	case n == 0:
		return &ValidationError{Field: "post_slug", Reason: "must not be empty"}
	case n > maxSlugLength:
		return &ValidationError{Field: "post_slug", Reason: "must be at most " + strconv.Itoa(maxSlugLength) + " characters"}
	}

	in.ResponseFormat, err = validateFormat(in.ResponseFormat)
	return err
}

// BatchGetPostsInput is the input of substack_batch_get_posts.
type BatchGetPostsInput struct {
	PublicationSubdomains []string `json:"publication_subdomains" jsonschema:"description=Substack subdomains to fetch from (e.g. ['lenny' 'stratechery']),required,minItems=1,maxItems=10"`
	PostsPerPublication   int      `json:"posts_per_publication,omitempty" jsonschema:"description=Number of posts to fetch per publication (default: 10 max: 50),minimum=1,maximum=50,default=10"`
	ResponseFormat        Format   `json:"response_format,omitempty" jsonschema:"description=Output format: 'markdown' for readable text or 'json' for structured data,enum=markdown,enum=json,default=markdown"`
}

// Validate normalizes every handle independently and applies defaults.
func (in *BatchGetPostsInput) Validate() error {
	switch n := len(in.PublicationSubdomains); {
	case n == 0:
		return &ValidationError{Field: "publication_subdomains", Reason: "must contain at least one publication"}
	case n > maxBatchHandles:
		return &ValidationError{Field: "publication_subdomains", Reason: "must contain at most " + strconv.Itoa(maxBatchHandles) + " publications"}
	}

	handles := make([]string, len(in.PublicationSubdomains))
	for i, raw := range in.PublicationSubdomains {
		handle, err := validateHandle("publication_subdomains["+strconv.Itoa(i)+"]", raw)
		if err != nil {
			return err
		}
		handles[i] = handle
	}
	in.PublicationSubdomains = handles

	var err error
	if in.PostsPerPublication, err = validateLimit("posts_per_publication", in.PostsPerPublication, maxPostsPerBatchPub); err != nil {
		return err
	}
	in.ResponseFormat, err = validateFormat(in.ResponseFormat)
	return err
}

// GetRecommendationsInput is the input of substack_get_recommendations.
type GetRecommendationsInput struct {
	PublicationSubdomain string `json:"publication_subdomain" jsonschema:"description=The Substack subdomain to get recommendations for,required,minLength=1,maxLength=100"`
}

// Validate normalizes the publication handle.
func (in *GetRecommendationsInput) Validate() error {
	handle, err := validateHandle("publication_subdomain", in.PublicationSubdomain)
	if err != nil {
		return err
	}
	in.PublicationSubdomain = handle
	return nil
}

// ListCategoriesInput is the (empty) input of substack_list_categories.
type ListCategoriesInput struct{}

// validateHandle checks the raw length bound and returns the normalized
// handle, rejecting input that normalizes to nothing.
func validateHandle(field, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch n := utf8.RuneCountInString(raw); {
	case n == 0:
		return "", &ValidationError{Field: field, Reason: "must not be empty"}
	case n > maxHandleLength:
		return "", &ValidationError{Field: field, Reason: "must be at most " + strconv.Itoa(maxHandleLength) + " characters"}
	}

	handle := NormalizeHandle(raw)
	if handle == "" {
		return "", &ValidationError{Field: field, Reason: "does not contain a publication handle"}
	}
	return handle, nil
}

// validateLimit defaults zero to defaultPostsLimit and enforces 1..maxLimit.
func validateLimit(field string, limit, maxLimit int) (int, error) {
	if limit == 0 {
		return defaultPostsLimit, nil
	}
	if limit < 1 || limit > maxLimit {
		return 0, &ValidationError{Field: field, Reason: "must be between 1 and " + strconv.Itoa(maxLimit)}
	}
	return limit, nil
}

func validateFormat(f Format) (Format, error) {
	switch Format(strings.ToLower(string(f))) {
	case "", FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", &ValidationError{Field: "response_format", Reason: "must be 'markdown' or 'json'"}
	}
}
