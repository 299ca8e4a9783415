// Package tool provides the typed tool abstraction exposed to automated
// clients.
//
// A [Tool] binds a name and description to a Go function that takes a typed
// input and returns a single string. [Tool.Call] owns the boundary: it
// decodes the raw JSON input, runs validation, invokes the function and turns
// every failure (including panics) into a rendered message, so no error
// escapes as anything but text. The [Catalog] is a thread-safe registry used
// by the transports to list and dispatch tools by name.
package tool
