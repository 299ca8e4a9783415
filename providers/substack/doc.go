// Package substack is an HTTP client for the public Substack JSON API.
//
// [Client] lists a publication's archive, fetches post metadata and bodies,
// resolves a publication's recommendations and lists the platform's topic
// categories. Requests are throttled client-side with a token bucket and
// transient failures (429 and 5xx) are retried with exponential backoff.
// Non-2xx responses surface as *utils.StatusError values whose message
// carries the status code.
package substack
