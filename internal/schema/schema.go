// Package schema provides JSON schema validation for the apkconf project file.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Schema represents a JSON Schema for validation
type Schema struct {
	ID                   string             `json:"$id,omitempty"`
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []interface{}      `json:"enum,omitempty"`
	Default              interface{}        `json:"default,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	MinLength            *int               `json:"minLength,omitempty"`
	Pattern              string             `json:"pattern,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Defs                 map[string]*Schema `json:"$defs,omitempty"`
}

// ValidationError represents a schema validation error
type ValidationError struct {
	Path    string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationResult contains all validation errors
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validator validates YAML/JSON against schemas
type Validator struct {
	schema *Schema
	defs   map[string]*Schema
}

// NewValidator creates a new validator with the given schema
func NewValidator(schema *Schema) *Validator {
	defs := make(map[string]*Schema)
	for k, v := range schema.Defs {
		defs["#/$defs/"+k] = v
	}
	return &Validator{
		schema: schema,
		defs:   defs,
	}
}

// ValidateFile validates a YAML or JSON file
func (v *Validator) ValidateFile(path string) *ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return invalid(path, fmt.Sprintf("failed to read file: %v", err))
	}

	var doc interface{}
	if strings.HasSuffix(path, ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return invalid(path, fmt.Sprintf("invalid JSON: %v", err))
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return invalid(path, fmt.Sprintf("invalid YAML: %v", err))
		}
	}

	// An empty project file is valid: every field has a default.
	if doc == nil {
		return &ValidationResult{Valid: true}
	}

	return v.Validate(doc)
}

func invalid(path, msg string) *ValidationResult {
	return &ValidationResult{
		Valid:  false,
		Errors: []ValidationError{{Path: path, Message: msg}},
	}
}

// Validate validates a document against the schema
func (v *Validator) Validate(doc interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}
	v.validate(v.schema, doc, "", result)
	result.Valid = len(result.Errors) == 0
	return result
}

// validate recursively validates a value against a schema
func (v *Validator) validate(schema *Schema, value interface{}, path string, result *ValidationResult) {
	if schema == nil {
		return
	}

	if schema.Ref != "" {
		if refSchema, ok := v.defs[schema.Ref]; ok {
			v.validate(refSchema, value, path, result)
		}
		return
	}

	if schema.Type != "" && !checkType(schema.Type, value) {
		result.add(path, fmt.Sprintf("expected type %s, got %T", schema.Type, value), value)
		return
	}

	if len(schema.Enum) > 0 {
		found := false
		for _, e := range schema.Enum {
			if enumEqual(value, e) {
				found = true
				break
			}
		}
		if !found {
			result.add(path, fmt.Sprintf("value must be one of: %v", schema.Enum), value)
		}
	}

	if str, ok := value.(string); ok {
		if schema.MinLength != nil && len(str) < *schema.MinLength {
			result.add(path, fmt.Sprintf("string length must be at least %d", *schema.MinLength), value)
		}
		if schema.Pattern != "" {
			if re, err := regexp.Compile(schema.Pattern); err == nil && !re.MatchString(str) {
				result.add(path, fmt.Sprintf("value must match %s", schema.Pattern), value)
			}
		}
	}

	if num, ok := toFloat(value); ok {
		if schema.Minimum != nil && num < *schema.Minimum {
			result.add(path, fmt.Sprintf("value must be at least %v", *schema.Minimum), value)
		}
		if schema.Maximum != nil && num > *schema.Maximum {
			result.add(path, fmt.Sprintf("value must be at most %v", *schema.Maximum), value)
		}
	}

	if obj, ok := value.(map[string]interface{}); ok {
		for _, req := range schema.Required {
			if _, exists := obj[req]; !exists {
				result.add(joinPath(path, req), "required field is missing", nil)
			}
		}

		// Sorted for stable error output
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			propSchema, known := schema.Properties[key]
			if !known {
				if schema.AdditionalProperties != nil && !*schema.AdditionalProperties {
					result.add(joinPath(path, key), "unknown field", nil)
				}
				continue
			}
			v.validate(propSchema, obj[key], joinPath(path, key), result)
		}
	}

	if arr, ok := value.([]interface{}); ok && schema.Items != nil {
		for i, item := range arr {
			v.validate(schema.Items, item, fmt.Sprintf("%s[%d]", path, i), result)
		}
	}
}

func (r *ValidationResult) add(path, msg string, value interface{}) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: msg, Value: value})
}

// checkType checks if a value matches the expected type
func checkType(expected string, value interface{}) bool {
	if value == nil {
		return expected == "null"
	}

	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := toFloat(value)
		return ok
	case "integer":
		switch value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			return true
		case float32, float64:
			f, _ := toFloat(value)
			return f == float64(int64(f))
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "null":
		return value == nil
	}
	return false
}

// toFloat converts a value to float64
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// enumEqual compares numbers by value, so a JSON float64 matches an int
// enum entry
func enumEqual(value, e interface{}) bool {
	if a, ok := toFloat(value); ok {
		b, ok := toFloat(e)
		return ok && a == b
	}
	return value == e
}

// joinPath joins path segments
func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func float(f float64) *float64 { return &f }

func intp(i int) *int { return &i }

func boolp(b bool) *bool { return &b }

// GenerateSchema generates a JSON Schema for the apkconf project file
func GenerateSchema() *Schema {
	packageName := &Schema{
		Type:    "string",
		Pattern: `^[a-zA-Z][a-zA-Z0-9_]*(\.[a-zA-Z][a-zA-Z0-9_]*)+$`,
	}
	sdk := &Schema{Type: "integer", Minimum: float(1)}

	return &Schema{
		Schema:               "https://json-schema.org/draft/2020-12/schema",
		ID:                   "https://github.com/oarkflow/apkconf/schema/v1",
		Title:                "apkconf Project",
		Description:          "Schema for the .apkconf.yaml project file",
		Type:                 "object",
		AdditionalProperties: boolp(false),
		Properties: map[string]*Schema{
			"version": {
				Type:        "integer",
				Description: "Version of the configuration schema",
				Enum:        []interface{}{1},
			},
			"namespace":      withDescription(packageName, "Namespace of the generated R class"),
			"application_id": withDescription(packageName, "Package name published to the store"),
			"compile_sdk":    withDescription(sdk, "Android API level to compile against"),
			"target_sdk":     withDescription(sdk, "Android API level the app targets"),
			"ndk_version": {
				Type:        "string",
				Description: "NDK side-by-side version",
			},
			"version_code": {
				Type:        "integer",
				Description: "Monotonic version code",
				Minimum:     float(1),
				Maximum:     float(2100000000),
			},
			"version_name": {
				Type:        "string",
				Description: "User visible version name",
				MinLength:   intp(1),
			},
			"flutter_version": {
				Type:        "boolean",
				Description: "Take the version from Flutter's local.properties",
			},
			"java_version": {
				Type:        "string",
				Description: "Java source/target compatibility and jvmTarget",
				Enum:        []interface{}{"1.8", "8", "11", "17", "21"},
			},
			"flutter_source": {
				Type:        "string",
				Description: "Flutter project root relative to the app module",
			},
			"keystore_properties": {
				Type:        "string",
				Description: "Keystore properties file",
			},
			"plugins": {
				Type:        "array",
				Description: "Plugins applied to the app module, in order",
				Items:       &Schema{Type: "string", MinLength: intp(1)},
			},
			"default_proguard_file": {
				Type:        "string",
				Description: "SDK-provided ProGuard rule file",
			},
			"proguard_files": {
				Type:        "array",
				Description: "Project ProGuard rule files",
				Items:       &Schema{Type: "string"},
			},
			"dependencies": {
				Type:        "array",
				Description: "Dependencies passed to the dependency resolver",
				Items:       &Schema{Ref: "#/$defs/dependency"},
			},
			"includes": {
				Type:        "array",
				Description: "Other project files to merge",
				Items:       &Schema{Type: "string"},
			},
		},
		Defs: map[string]*Schema{
			"dependency": {
				Type:                 "object",
				AdditionalProperties: boolp(false),
				Required:             []string{"configuration", "notation"},
				Properties: map[string]*Schema{
					"configuration": {Type: "string", MinLength: intp(1)},
					"notation": {
						Type:    "string",
						Pattern: `^[^:]+:[^:]+:[^:]+$`,
					},
				},
			},
		},
	}
}

func withDescription(s *Schema, desc string) *Schema {
	c := *s
	c.Description = desc
	return &c
}

// ValidateConfig validates a project file
func ValidateConfig(path string) *ValidationResult {
	validator := NewValidator(GenerateSchema())
	result := validator.ValidateFile(path)

	if !result.Valid {
		log.Error("Configuration validation failed", "errors", len(result.Errors))
		for _, err := range result.Errors {
			log.Error("Validation error", "path", err.Path, "message", err.Message)
		}
	}

	return result
}

// WriteSchema writes the schema to a file
func WriteSchema(path string) error {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(path, append(data, '\n'), 0o644)
}
