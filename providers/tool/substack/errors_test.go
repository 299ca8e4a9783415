package substack

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/leofalp/substack-tools/core/parse"
	"github.com/leofalp/substack-tools/internal/utils"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "status 404", err: errors.New("unexpected status code: 404 Not Found (https://x)"), want: KindNotFound},
		{name: "not found text", err: errors.New("Publication NOT FOUND"), want: KindNotFound},
		{name: "404 wins over rate", err: errors.New("404 rate"), want: KindNotFound},
		{name: "forbidden", err: errors.New("unexpected status code: 403 Forbidden"), want: KindForbidden},
		{name: "forbidden text", err: errors.New("access Forbidden"), want: KindForbidden},
		{name: "rate limit text", err: errors.New("Rate limit exceeded"), want: KindRateLimited},
		{name: "status 429", err: errors.New("unexpected status code: 429 Too Many Requests"), want: KindRateLimited},
		{name: "timeout text", err: errors.New("dial tcp: i/o Timeout"), want: KindTimeout},
		{name: "deadline exceeded", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), want: KindTimeout},
		{name: "validation", err: &ValidationError{Field: "limit", Reason: "must be between 1 and 100"}, want: KindInvalidInput},
		{name: "validation mentioning not found", err: &ValidationError{Field: "x", Reason: "not found"}, want: KindInvalidInput},
		{name: "malformed input", err: fmt.Errorf("%w: json: unknown field \"x\"", parse.ErrMalformedInput), want: KindInvalidInput},
		{name: "no fetcher", err: fmt.Errorf("setup: %w", ErrNoFetcher), want: KindUnavailable},
		{name: "status error 404", err: fmt.Errorf("list: %w", &utils.StatusError{StatusCode: 404, Status: "404 Not Found", URL: "https://x"}), want: KindNotFound},
		{name: "status error 410", err: &utils.StatusError{StatusCode: 410, Status: "410 Gone"}, want: KindNotFound},
		{name: "status error 403", err: &utils.StatusError{StatusCode: 403, Status: "403 Forbidden"}, want: KindForbidden},
		{name: "status error 429", err: &utils.StatusError{StatusCode: 429, Status: "429 Too Many Requests"}, want: KindRateLimited},
		{name: "status error 504", err: &utils.StatusError{StatusCode: 504, Status: "504 Gateway Timeout"}, want: KindTimeout},
		{name: "status error body ignored", err: &utils.StatusError{StatusCode: 400, Status: "400 Bad Request", URL: "https://x", Body: "Internal error while generating the page"}, want: KindUnknown},
		{name: "status error css in body", err: &utils.StatusError{StatusCode: 500, Status: "500 Internal Server Error", URL: "https://x", Body: "<style>p{color:#404040}</style>"}, want: KindUnknown},
		{name: "status error url ignored", err: &utils.StatusError{StatusCode: 400, Status: "400 Bad Request", URL: "https://pirate.substack.com/api/v1/archive"}, want: KindUnknown},
		{name: "other", err: errors.New("connection reset by peer"), want: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: errors.New("404"), want: "Error: Publication not found. Check the subdomain is correct."},
		{name: "forbidden", err: errors.New("403"), want: "Error: Access forbidden. This content may be paywalled."},
		{name: "rate limited", err: errors.New("429"), want: "Error: Rate limited. Wait a moment before trying again."},
		{name: "timeout", err: errors.New("timeout"), want: "Error: Request timed out. Try again."},
		{name: "unknown passes through", err: errors.New("connection reset by peer"), want: "Error: connection reset by peer"},
		{name: "validation", err: &ValidationError{Field: "post_slug", Reason: "must not be empty"}, want: "Error: invalid input: post_slug must not be empty"},
		{name: "no fetcher", err: ErrNoFetcher, want: "Error: Substack client not available. Check the server configuration."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderError(tt.err); got != tt.want {
				t.Errorf("RenderError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	kinds := map[Kind]string{
		KindUnknown:      "unknown",
		KindNotFound:     "not_found",
		KindForbidden:    "forbidden",
		KindRateLimited:  "rate_limited",
		KindTimeout:      "timeout",
		KindInvalidInput: "invalid_input",
		KindUnavailable:  "unavailable",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
