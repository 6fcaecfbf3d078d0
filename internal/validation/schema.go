package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("front matter schema invalid")
	ErrSchemaValidation = errors.New("front matter validation failed")
)

// FieldIssue captures a single failing front matter field.
type FieldIssue struct {
	Location string
	Message  string
}

// FrontMatterError reports the custom fields of one document that violate the
// site schema. Path is the source file, so authors know what to fix.
type FrontMatterError struct {
	Path   string
	Issues []FieldIssue
	Cause  error
}

func (e *FrontMatterError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *FrontMatterError) Unwrap() error {
	return ErrSchemaValidation
}

// Schema is a compiled front matter schema. Compile once per site config and
// reuse across documents; validation itself is read-only.
type Schema struct {
	compiled *jsonschema.Schema
}

// Compile normalizes and compiles a schema definition from site configuration.
// Definitions come in two shapes: a plain JSON schema, or the shorthand
// `fields:` list (name/type/required entries). A nil or empty definition
// compiles to a nil Schema, which validates everything.
func Compile(definition map[string]any) (*Schema, error) {
	normalized := normalizeDefinition(definition)
	if normalized == nil {
		return nil, nil
	}
	compiled, err := compile(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Schema{compiled: compiled}, nil
}

// ValidateFields checks a document's custom front matter fields. It satisfies
// the validator contract the articles package consumes.
func (s *Schema) ValidateFields(path string, fields map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if fields == nil {
		fields = map[string]any{}
	}
	if err := s.compiled.Validate(fields); err != nil {
		return &FrontMatterError{
			Path:   path,
			Issues: issuesFrom(err),
			Cause:  err,
		}
	}
	return nil
}

// Issues extracts field issues from an error when present.
func Issues(err error) []FieldIssue {
	if err == nil {
		return nil
	}
	var fmErr *FrontMatterError
	if errors.As(err, &fmErr) && fmErr != nil {
		return fmErr.Issues
	}
	return issuesFrom(err)
}

// normalizeDefinition converts a config-level schema definition into a JSON
// schema object.
func normalizeDefinition(definition map[string]any) map[string]any {
	if len(definition) == 0 {
		return nil
	}
	if looksLikeJSONSchema(definition) {
		return deepCloneMap(definition)
	}
	fields, ok := definition["fields"]
	if !ok {
		return nil
	}
	properties, required := fieldsToProperties(fields)
	if len(properties) == 0 {
		return nil
	}
	normalized := map[string]any{
		"type":       "object",
		"properties": properties,
		// Unknown custom fields are allowed unless the definition says otherwise;
		// articles legitimately carry one-off metadata.
		"additionalProperties": true,
	}
	if override, ok := definition["additionalProperties"].(bool); ok {
		normalized["additionalProperties"] = override
	}
	if len(required) > 0 {
		normalized["required"] = required
	}
	return normalized
}

func looksLikeJSONSchema(definition map[string]any) bool {
	for _, key := range []string{"$schema", "type", "properties", "oneOf", "anyOf", "allOf"} {
		if _, ok := definition[key]; ok {
			return true
		}
	}
	return false
}

func fieldsToProperties(fields any) (map[string]any, []string) {
	properties := make(map[string]any)
	required := make([]string, 0)

	addField := func(field map[string]any) {
		name, _ := field["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if nested, ok := field["schema"].(map[string]any); ok {
			properties[name] = deepCloneMap(nested)
		} else if fieldType, ok := field["type"].(string); ok && jsonType(fieldType) != "" {
			properties[name] = map[string]any{"type": jsonType(fieldType)}
		} else {
			properties[name] = map[string]any{}
		}
		if flag, ok := field["required"].(bool); ok && flag {
			required = append(required, name)
		}
	}

	switch typed := fields.(type) {
	case []any:
		for _, entry := range typed {
			if fieldMap, ok := entry.(map[string]any); ok {
				addField(fieldMap)
			} else if name, ok := entry.(string); ok {
				addField(map[string]any{"name": name})
			}
		}
	case []map[string]any:
		for _, fieldMap := range typed {
			addField(fieldMap)
		}
	}

	return properties, required
}

func jsonType(value string) string {
	switch normalized := strings.ToLower(strings.TrimSpace(value)); normalized {
	case "string", "number", "integer", "boolean", "object", "array", "null":
		return normalized
	default:
		return ""
	}
}

func compile(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("frontmatter.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("frontmatter.json")
}

func issuesFrom(err error) []FieldIssue {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) || validationErr == nil {
		return []FieldIssue{{Message: err.Error()}}
	}
	issues := []FieldIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, FieldIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}

func deepCloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = deepCloneMap(typed)
		case []any:
			out[key] = deepCloneSlice(typed)
		default:
			out[key] = value
		}
	}
	return out
}

func deepCloneSlice(input []any) []any {
	if input == nil {
		return nil
	}
	out := make([]any, len(input))
	for i, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[i] = deepCloneMap(typed)
		case []any:
			out[i] = deepCloneSlice(typed)
		default:
			out[i] = value
		}
	}
	return out
}
