// Package parse decodes raw tool input into strongly typed values.
//
// Automated clients do not always emit well-formed JSON: trailing commas,
// single quotes and schema-style {"type", "value"} envelopes are common.
// [DecodeInput] first decodes strictly, rejecting unknown fields, and only
// then falls back to jsonrepair and envelope unwrapping before giving up
// with an error wrapping [ErrMalformedInput].
package parse
