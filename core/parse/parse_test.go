package parse

import (
	"errors"
	"testing"
)

type sampleInput struct {
	Handle string   `json:"handle"`
	Limit  int      `json:"limit,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

func TestDecodeInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    sampleInput
		wantErr bool
	}{
		{
			name:  "valid json",
			input: `{"handle":"lenny","limit":5}`,
			want:  sampleInput{Handle: "lenny", Limit: 5},
		},
		{
			name:  "empty content decodes to zero value",
			input: "   ",
			want:  sampleInput{},
		},
		{
			name:  "trailing comma is repaired",
			input: `{"handle":"lenny","limit":5,}`,
			want:  sampleInput{Handle: "lenny", Limit: 5},
		},
		{
			name:  "single quotes are repaired",
			input: `{'handle': 'lenny'}`,
			want:  sampleInput{Handle: "lenny"},
		},
		{
			name:  "schema envelope is unwrapped",
			input: `{"handle":{"type":"string","value":"lenny"},"limit":{"type":"integer","value":3}}`,
			want:  sampleInput{Handle: "lenny", Limit: 3},
		},
		{
			name:    "unknown field is rejected",
			input:   `{"handle":"lenny","extra":true}`,
			wantErr: true,
		},
		{
			name:    "wrong type is rejected",
			input:   `{"handle":"lenny","limit":"many"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInput[sampleInput](tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DecodeInput() expected error, got %+v", got)
				}
				if !errors.Is(err, ErrMalformedInput) {
					t.Errorf("expected error wrapping ErrMalformedInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInput() unexpected error: %v", err)
			}
			if got.Handle != tt.want.Handle || got.Limit != tt.want.Limit {
				t.Errorf("DecodeInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeInput_Slice(t *testing.T) {
	got, err := DecodeInput[sampleInput](`{"handle":"a","tags":["x","y"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "x" || got.Tags[1] != "y" {
		t.Errorf("unexpected tags: %v", got.Tags)
	}
}

func TestRecursiveUnwrap_KeepsRegularObjects(t *testing.T) {
	in := map[string]any{
		"type":  "post",
		"value": 1,
		"extra": "kept",
	}
	out, ok := recursiveUnwrap(in).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", recursiveUnwrap(in))
	}
	if len(out) != 3 {
		t.Errorf("object with more than type/value must not be unwrapped: %v", out)
	}
}
