package substack

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/leofalp/substack-tools/internal/utils"
)

const (
	// DefaultBaseDomain is the platform domain publications live under.
	DefaultBaseDomain = "substack.com"
	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent identifies the client to Substack.
	DefaultUserAgent = "substack-tools/1.0 (+https://github.com/leofalp/substack-tools)"
	// DefaultRequestsPerSecond is the steady request rate of the limiter.
	DefaultRequestsPerSecond = 4
	// DefaultBurst is the token bucket size of the limiter.
	DefaultBurst = 4

	// archivePageSize is the largest page the archive endpoint serves.
	archivePageSize = 15

	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 10 * time.Second
	idleConnTimeout       = 90 * time.Second
)

// ErrPublicationIDNotFound is returned when a publication's numeric id
// cannot be resolved from its archive.
var ErrPublicationIDNotFound = errors.New("publication id not found")

// Client talks to the Substack JSON API. It is safe for concurrent use.
type Client struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	retry         RetryConfig
	userAgent     string
	baseDomain    string
	categoriesURL string
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit sets the limiter's steady rate and burst size.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithRetry sets the retry policy for throttled and server-side failures.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) {
		c.retry = cfg.withDefaults()
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBaseDomain overrides the platform domain, e.g. for a staging host.
func WithBaseDomain(domain string) Option {
	return func(c *Client) {
		if domain != "" {
			c.baseDomain = domain
			c.categoriesURL = "https://" + domain + "/api/v1/categories"
		}
	}
}

// WithCategoriesURL overrides the category listing endpoint.
func WithCategoriesURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.categoriesURL = u
		}
	}
}

// NewClient returns a client with the package defaults, modified by opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				IdleConnTimeout:       idleConnTimeout,
				MaxIdleConnsPerHost:   4,
			},
		},
		limiter:       rate.NewLimiter(DefaultRequestsPerSecond, DefaultBurst),
		retry:         RetryConfig{}.withDefaults(),
		userAgent:     DefaultUserAgent,
		baseDomain:    DefaultBaseDomain,
		categoriesURL: "https://" + DefaultBaseDomain + "/api/v1/categories",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PublicationURL returns the base URL of the publication with the given
// subdomain, e.g. https://lenny.substack.com.
func (c *Client) PublicationURL(subdomain string) string {
	return "https://" + subdomain + "." + c.baseDomain
}

// BaseDomain returns the platform domain the client addresses.
func (c *Client) BaseDomain() string {
	return c.baseDomain
}

// ListPosts returns up to limit of the publication's most recent posts,
// newest first. The archive is paged until limit is reached or a short page
// signals the end.
func (c *Client) ListPosts(ctx context.Context, address string, limit int) ([]PostRef, error) {
	address = strings.TrimRight(address, "/")
	refs := make([]PostRef, 0, limit)

	for offset := 0; len(refs) < limit; {
		size := min(archivePageSize, limit-len(refs))
		endpoint := fmt.Sprintf("%s/api/v1/archive?sort=new&offset=%d&limit=%d", address, offset, size)

		page, err := getJSON[[]archiveEntry](ctx, c, endpoint)
		if err != nil {
			return nil, err
		}
		for _, entry := range *page {
			if len(refs) == limit {
				break
			}
			refs = append(refs, PostRef{Address: address, Slug: entry.Slug, URL: entry.CanonicalURL})
		}
		if len(*page) < size {
			break
		}
		offset += len(*page)
	}
	return refs, nil
}

// GetMetadata fetches a post's metadata. The body is included in the
// response and kept in BodyHTML.
func (c *Client) GetMetadata(ctx context.Context, ref PostRef) (*Post, error) {
	address := strings.TrimRight(ref.Address, "/")
	endpoint := address + "/api/v1/posts/" + url.PathEscape(ref.Slug)
	return getJSON[Post](ctx, c, endpoint)
}

// GetContent fetches a post's HTML body.
func (c *Client) GetContent(ctx context.Context, ref PostRef) (string, error) {
	post, err := c.GetMetadata(ctx, ref)
	if err != nil {
		return "", err
	}
	return post.BodyHTML, nil
}

// ListRecommendations returns the publications recommended by the one at
// address. The publication id is read from its newest archive entry.
func (c *Client) ListRecommendations(ctx context.Context, address string) ([]Publication, error) {
	address = strings.TrimRight(address, "/")

	page, err := getJSON[[]archiveEntry](ctx, c, address+"/api/v1/archive?sort=new&offset=0&limit=1")
	if err != nil {
		return nil, err
	}
	if len(*page) == 0 || (*page)[0].PublicationID == 0 {
		return nil, fmt.Errorf("%w for %s", ErrPublicationIDNotFound, address)
	}

	endpoint := fmt.Sprintf("%s/api/v1/recommendations/from/%d", address, (*page)[0].PublicationID)
	recs, err := getJSON[[]recommendation](ctx, c, endpoint)
	if err != nil {
		return nil, err
	}

	out := make([]Publication, 0, len(*recs))
	for _, rec := range *recs {
		pub := rec.RecommendedPublication
		out = append(out, Publication{Name: pub.Name, URL: c.recommendationURL(pub.CustomDomain, pub.Subdomain)})
	}
	return out, nil
}

func (c *Client) recommendationURL(customDomain, subdomain string) string {
	switch {
	case customDomain != "":
		if strings.HasPrefix(customDomain, "http://") || strings.HasPrefix(customDomain, "https://") {
			return customDomain
		}
		return "https://" + customDomain
	case subdomain != "":
		return c.PublicationURL(subdomain)
	default:
		return ""
	}
}

// ListCategories returns the platform's topic categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	cats, err := getJSON[[]Category](ctx, c, c.categoriesURL)
	if err != nil {
		return nil, err
	}
	return *cats, nil
}

// getJSON waits for a limiter token before every attempt and retries
// throttled or failing upstream responses.
func getJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	headers := map[string]string{"User-Agent": c.userAgent}
	return withRetry(ctx, c.retry, func(ctx context.Context) (*T, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return utils.DoGetJSON[T](ctx, c.httpClient, endpoint, headers)
	})
}
