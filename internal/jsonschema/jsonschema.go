package jsonschema

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
)

// Schema is the subset of JSON Schema used to describe tool parameters.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	// AdditionalProperties is false for tool inputs, which reject unknown fields.
	AdditionalProperties any      `json:"additionalProperties,omitempty"`
	Default              any      `json:"default,omitempty"`
	Enum                 []any    `json:"enum,omitempty"`
	Minimum              *float64 `json:"minimum,omitempty"`
	Maximum              *float64 `json:"maximum,omitempty"`
	MinLength            *int     `json:"minLength,omitempty"`
	MaxLength            *int     `json:"maxLength,omitempty"`
	MinItems             *int     `json:"minItems,omitempty"`
	MaxItems             *int     `json:"maxItems,omitempty"`
}

// GenerateJSONSchema derives the schema of T. Struct types become closed
// objects (additionalProperties=false). A struct that refers to itself is
// described as a plain object at the point of recursion.
func GenerateJSONSchema[T any]() *Schema {
	return generate(reflect.TypeFor[T](), map[reflect.Type]bool{})
}

func generate(t reflect.Type, visiting map[reflect.Type]bool) *Schema {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: generate(t.Elem(), visiting)}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: generate(t.Elem(), visiting)}
	case reflect.Struct:
		if visiting[t] {
			return &Schema{Type: "object"}
		}
		visiting[t] = true
		defer delete(visiting, t)
		return generateStruct(t, visiting)
	default:
		return &Schema{Type: "object"}
	}
}

func generateStruct(t reflect.Type, visiting map[reflect.Type]bool) *Schema {
	schema := &Schema{
		Type:                 "object",
		Properties:           map[string]*Schema{},
		AdditionalProperties: false,
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty, skip := jsonFieldName(field)
		if skip {
			continue
		}

		fieldSchema := generate(field.Type, visiting)
		requiredByTag, err := applyTag(field.Type, field.Tag.Get("jsonschema"), fieldSchema)
		if err != nil {
			slog.Error("invalid jsonschema tag", "type", t.String(), "field", name, "error", err)
		}
		schema.Properties[name] = fieldSchema

		if requiredByTag || (field.Type.Kind() != reflect.Ptr && !omitEmpty) {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

func jsonFieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name = field.Name
	if tag == "" {
		return name, false, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		name = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

// applyTag copies the settings of a `jsonschema` tag onto schema and reports
// whether the tag marks the field as required. Values cannot contain commas.
func applyTag(fieldType reflect.Type, tag string, schema *Schema) (bool, error) {
	if tag == "" {
		return false, nil
	}

	required := false
	for _, item := range strings.Split(tag, ",") {
		key, value, hasValue := strings.Cut(item, "=")
		if !hasValue {
			if key == "required" {
				required = true
			}
			continue
		}

		switch key {
		case "description":
			schema.Description = value
		case "enum":
			v, err := scalarValue(fieldType, value)
			if err != nil {
				return required, fmt.Errorf("enum %q: %w", value, err)
			}
			schema.Enum = append(schema.Enum, v)
		case "default":
			v, err := scalarValue(fieldType, value)
			if err != nil {
				return required, fmt.Errorf("default %q: %w", value, err)
			}
			schema.Default = v
		case "minimum", "maximum":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return required, fmt.Errorf("%s %q: %w", key, value, err)
			}
			if key == "minimum" {
				schema.Minimum = &f
			} else {
				schema.Maximum = &f
			}
		case "minLength", "maxLength", "minItems", "maxItems":
			n, err := strconv.Atoi(value)
			if err != nil {
				return required, fmt.Errorf("%s %q: %w", key, value, err)
			}
			switch key {
			case "minLength":
				schema.MinLength = &n
			case "maxLength":
				schema.MaxLength = &n
			case "minItems":
				schema.MinItems = &n
			case "maxItems":
				schema.MaxItems = &n
			}
		}
	}

	return required, nil
}

// scalarValue converts a tag value to the Go kind of fieldType so enum and
// default values serialize with the right JSON type.
func scalarValue(fieldType reflect.Type, value string) (any, error) {
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseInt(value, 10, 64)
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(value, 64)
	case reflect.Bool:
		return strconv.ParseBool(value)
	default:
		return nil, fmt.Errorf("unsupported field type %v", fieldType)
	}
}

// JSONString renders the schema, indented with two spaces when indent is true.
func (s *Schema) JSONString(indent bool) (string, error) {
	var (
		encoded []byte
		err     error
	)
	if indent {
		encoded, err = json.MarshalIndent(s, "", "  ")
	} else {
		encoded, err = json.Marshal(s)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(encoded), nil
}

func (s *Schema) String() string {
	out, err := s.JSONString(false)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return out
}
