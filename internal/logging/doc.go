// Package logging builds the process logger.
//
// Three formats are supported: "text" and "json" use the standard slog
// handlers, "compact" prints one line per record with attributes as a JSON
// object. Every handler is wrapped by slog-context so attributes added with
// slogctx.Append ride along the request context and reach every record
// logged with that context.
package logging
