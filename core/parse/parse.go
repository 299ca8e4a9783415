package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrMalformedInput is wrapped by every error returned from [DecodeInput].
var ErrMalformedInput = errors.New("malformed tool input")

// DecodeInput decodes content into a value of type T.
//
// Empty or whitespace-only content decodes to the zero value, so tools without
// parameters can be invoked with no body at all. Unknown object fields are
// rejected. When strict decoding fails with a syntax error the content is
// passed through jsonrepair and, failing that, through schema envelope
// unwrapping before the decode is retried.
//
// Example:
//
//	type Input struct {
//	    Handle string `json:"handle"`
//	}
//
//	in, err := parse.DecodeInput[Input](`{handle: 'lenny',}`)
//	// in.Handle == "lenny"
func DecodeInput[T any](content string) (T, error) {
	var result T

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return result, nil
	}

	err := decodeStrict(trimmed, &result)
	if err == nil {
		return result, nil
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
		// Unknown fields and similar semantic failures are not repairable.
		return result, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	repaired, repairErr := jsonrepair.JSONRepair(trimmed)
	if repairErr != nil {
		return result, fmt.Errorf("%w: %v (repair failed: %v)", ErrMalformedInput, err, repairErr)
	}

	var retry T
	if retryErr := decodeStrict(repaired, &retry); retryErr == nil {
		return retry, nil
	}

	unwrapped, unwrapErr := unwrapSchemaValues(repaired)
	if unwrapErr == nil {
		var last T
		if lastErr := decodeStrict(unwrapped, &last); lastErr == nil {
			return last, nil
		}
	}

	return result, fmt.Errorf("%w: %v", ErrMalformedInput, err)
}

func decodeStrict(content string, target any) error {
	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return &json.SyntaxError{Offset: decoder.InputOffset()}
	}
	return nil
}

// unwrapSchemaValues replaces {"type": ..., "value": ...} envelopes with their
// value, recursively. Clients sometimes echo the parameter schema back with the
// value embedded instead of sending the bare value.
//
//	{"limit": {"type": "integer", "value": 5}} -> {"limit": 5}
func unwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	result, err := json.Marshal(recursiveUnwrap(data))
	if err != nil {
		return "", err
	}
	return string(result), nil
}

func recursiveUnwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return recursiveUnwrap(value)
			}
		}
		result := make(map[string]any, len(v))
		for key, val := range v {
			result[key] = recursiveUnwrap(val)
		}
		return result

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			result[i] = recursiveUnwrap(val)
		}
		return result

	default:
		return data
	}
}
