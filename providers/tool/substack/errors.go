package substack

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/leofalp/substack-tools/core/parse"
	"github.com/leofalp/substack-tools/internal/utils"
)

// ErrNoFetcher is returned when a tool runs without a configured [Fetcher].
var ErrNoFetcher = errors.New("substack fetcher is not configured")

// Kind is the user-facing category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindRateLimited
	KindTimeout
	KindInvalidInput
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindInvalidInput:
		return "invalid_input"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ValidationError reports a tool input that failed its bounds checks.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Field + " " + e.Reason
}

// Classify maps err to a [Kind]. Typed errors are checked first, and an
// upstream status error is classified by its code alone. Anything else is
// matched on its message, case-insensitively, in priority order: not found,
// forbidden, rate limited, timeout.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		validationErr *ValidationError
		statusErr     *utils.StatusError
	)
	switch {
	case errors.As(err, &validationErr), errors.Is(err, parse.ErrMalformedInput):
		return KindInvalidInput
	case errors.Is(err, ErrNoFetcher):
		return KindUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.As(err, &statusErr):
		return statusKind(statusErr.StatusCode)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "404") || strings.Contains(msg, "not found"):
		return KindNotFound
	case strings.Contains(msg, "403") || strings.Contains(msg, "forbidden"):
		return KindForbidden
	case strings.Contains(msg, "rate") || strings.Contains(msg, "429"):
		return KindRateLimited
	case strings.Contains(msg, "timeout"):
		return KindTimeout
	default:
		return KindUnknown
	}
}

func statusKind(code int) Kind {
	switch code {
	case http.StatusNotFound, http.StatusGone:
		return KindNotFound
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindUnknown
	}
}

// Describe returns the user-facing message for err, without the "Error:"
// prefix. Unclassified errors keep their own message.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	switch Classify(err) {
	case KindNotFound:
		return "Publication not found. Check the subdomain is correct."
	case KindForbidden:
		return "Access forbidden. This content may be paywalled."
	case KindRateLimited:
		return "Rate limited. Wait a moment before trying again."
	case KindTimeout:
		return "Request timed out. Try again."
	case KindUnavailable:
		return "Substack client not available. Check the server configuration."
	default:
		return err.Error()
	}
}

// RenderError formats err as a tool result. It is the error renderer of
// every tool in this package.
func RenderError(err error) string {
	return "Error: " + Describe(err)
}
