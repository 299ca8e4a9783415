package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// MaxResponseBodySize caps how much of a response body is read (10MB).
const MaxResponseBodySize = 10 * 1024 * 1024

// StatusError is returned by [DoGetJSON] for non-2xx responses. Its message
// carries the status and URL only; Body is kept for logging and never
// appears in Error.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %s (%s)", e.Status, e.URL)
}

// DoGetJSON performs a GET request against url and decodes the JSON response
// into T. Headers are applied to the request as given.
//
// Non-2xx responses return a *StatusError. Bodies larger than
// [MaxResponseBodySize] are rejected rather than truncated.
func DoGetJSON[T any](ctx context.Context, client *http.Client, url string, headers map[string]string) (*T, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer CloseWithLog(res.Body)

	body, err := io.ReadAll(io.LimitReader(res.Body, MaxResponseBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if len(body) > MaxResponseBodySize {
		return nil, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxResponseBodySize)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		slog.Debug("unexpected response",
			slog.String("url", url),
			slog.Int("status", res.StatusCode),
			slog.String("body", TruncateString(string(body), 200)),
		)
		return nil, &StatusError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			URL:        url,
			Body:       string(body),
		}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		slog.Debug("undecodable response", slog.String("url", url), slog.String("body", TruncateString(string(body), 200)))
		return nil, fmt.Errorf("error decoding response from %s: %w", url, err)
	}
	return &out, nil
}

// CloseWithLog closes c and logs, rather than returns, any close error.
func CloseWithLog(c io.Closer) {
	if err := c.Close(); err != nil {
		slog.Warn("failed to close", "error", err.Error())
	}
}
