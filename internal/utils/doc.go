// Package utils holds small helpers shared by the providers: a JSON GET helper
// with a typed status error, body close logging and string truncation.
package utils
