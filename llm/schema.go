package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ToolDefinition describes a function the model may call. Parameters is a
// JSON Schema for the arguments object; codecs wrap it in whatever envelope
// their vendor expects.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// NewTool builds a ToolDefinition whose parameter schema is derived from the
// Params struct type: json tags name the properties, omitempty marks a
// property optional, and a description tag becomes its description. Params
// must be a struct type.
func NewTool[Params any](name, description string) ToolDefinition {
	var zero Params
	typ := reflect.TypeOf(zero)
	if typ == nil || typ.Kind() != reflect.Struct {
		panic("Params must be a struct")
	}
	data, err := json.Marshal(objectSchema(typ))
	if err != nil {
		panic(fmt.Sprintf("failed to encode schema for %s: %v", typ, err))
	}
	return ToolDefinition{
		Name:        name,
		Description: description,
		Parameters:  data,
	}
}

// fieldSchema maps Go data types to corresponding JSON Schema properties.
func fieldSchema(t reflect.Type) map[string]any {
	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": fieldSchema(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": "object", "additionalProperties": fieldSchema(t.Elem())}
	case reflect.Struct:
		return objectSchema(t)
	case reflect.Ptr:
		return fieldSchema(t.Elem())
	default:
		return map[string]any{"type": "unknown"}
	}
}

// objectSchema constructs a JSON Schema for structs.
func objectSchema(typ reflect.Type) map[string]any {
	properties := make(map[string]any)
	required := []string{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" { // Skip unexported fields
			continue
		}
		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" { // Field is explicitly ignored
			continue
		}
		parts := strings.Split(jsonTag, ",")
		fieldName := field.Name
		if parts[0] != "" {
			fieldName = parts[0]
		}

		schema := fieldSchema(field.Type)
		if description := field.Tag.Get("description"); description != "" {
			schema["description"] = description
		}
		properties[fieldName] = schema
		if len(parts) == 1 || parts[1] != "omitempty" {
			required = append(required, fieldName)
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

// ValidateArguments checks an assembled argument payload against the tool's
// parameter schema. It is a shallow structural check: required fields must be
// present, known fields must have the right type, unknown fields are ignored.
func (d ToolDefinition) ValidateArguments(arguments string) error {
	if len(d.Parameters) == 0 {
		return errors.New("tool has no parameter schema")
	}
	var schema map[string]any
	if err := json.Unmarshal(d.Parameters, &schema); err != nil {
		return fmt.Errorf("invalid parameter schema: %w", err)
	}
	return validateObject(schema, json.RawMessage(arguments))
}

// validateObject validates JSON data against an object schema.
func validateObject(schema map[string]any, data json.RawMessage) error {
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return errors.New("schema error: properties must be a map")
	}

	var dataMap map[string]any
	if err := json.Unmarshal(data, &dataMap); err != nil {
		return errors.New("invalid JSON format")
	}

	for key, val := range dataMap {
		propSchema, found := properties[key]
		if !found {
			continue // Ignoring extra fields
		}
		if err := validateField(propSchema, val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	for _, field := range requiredFields(schema) {
		if _, exists := dataMap[field]; !exists {
			return fmt.Errorf("missing required field: %s", field)
		}
	}

	return nil
}

// requiredFields reads the "required" list, which decodes as []any when the
// schema has been through JSON.
func requiredFields(schema map[string]any) []string {
	var out []string
	switch required := schema["required"].(type) {
	case []string:
		out = required
	case []any:
		for _, v := range required {
			if name, ok := v.(string); ok {
				out = append(out, name)
			}
		}
	}
	return out
}

// validateField checks a single value against its schema.
func validateField(propSchema any, data any) error {
	spec, ok := propSchema.(map[string]any)
	if !ok {
		return errors.New("schema error: field schema must be a map")
	}

	dataType, ok := spec["type"].(string)
	if !ok {
		return errors.New("schema error: missing type specification")
	}

	switch dataType {
	case "integer":
		num, ok := data.(float64)
		if !ok || num != float64(int(num)) {
			return fmt.Errorf("type mismatch: expected integer, got %T", data)
		}
	case "number":
		if _, ok := data.(float64); !ok {
			return fmt.Errorf("type mismatch: expected number, got %T", data)
		}
	case "string":
		if _, ok := data.(string); !ok {
			return fmt.Errorf("type mismatch: expected string, got %T", data)
		}
	case "boolean":
		if _, ok := data.(bool); !ok {
			return fmt.Errorf("type mismatch: expected boolean, got %T", data)
		}
	case "array":
		items, ok := data.([]any)
		if !ok {
			return fmt.Errorf("type mismatch: expected array, got %T", data)
		}
		itemSchema, ok := spec["items"].(map[string]any)
		if !ok {
			return errors.New("schema error: missing item schema for array")
		}
		for _, item := range items {
			if err := validateField(itemSchema, item); err != nil {
				return err
			}
		}
	case "object":
		properties, ok := data.(map[string]any)
		if !ok {
			return fmt.Errorf("type mismatch: expected object, got %T", data)
		}
		nested, err := json.Marshal(properties)
		if err != nil {
			return errors.New("failed to marshal object data for validation")
		}
		return validateObject(spec, json.RawMessage(nested))
	default:
		return fmt.Errorf("unsupported type: %s", dataType)
	}
	return nil
}
