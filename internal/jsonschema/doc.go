// Package jsonschema derives JSON Schema documents from Go tool input types.
//
// Schemas are built by reflection from `json` and `jsonschema` struct tags and
// are what a transport advertises to clients before they call a tool. The
// supported tag keys are description, enum, default, required, minimum,
// maximum, minLength, maxLength, minItems and maxItems.
package jsonschema
