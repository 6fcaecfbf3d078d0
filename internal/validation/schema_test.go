package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestCompileNilDefinition(t *testing.T) {
	schema, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if schema != nil {
		t.Fatal("expected nil schema for empty definition")
	}
	if err := schema.ValidateFields("posts/a.md", map[string]any{"anything": 1}); err != nil {
		t.Fatalf("nil schema must accept everything: %v", err)
	}
}

func TestCompileFieldShorthand(t *testing.T) {
	schema, err := Compile(map[string]any{
		"fields": []any{
			map[string]any{"name": "rating", "type": "integer", "required": true},
			map[string]any{"name": "featured", "type": "boolean"},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if schema == nil {
		t.Fatal("expected compiled schema")
	}

	if err := schema.ValidateFields("posts/ok.md", map[string]any{"rating": 5, "featured": true}); err != nil {
		t.Fatalf("expected valid fields to pass: %v", err)
	}

	err = schema.ValidateFields("posts/bad.md", map[string]any{"rating": "five"})
	if err == nil {
		t.Fatal("expected type mismatch to fail")
	}
	var fmErr *FrontMatterError
	if !errors.As(err, &fmErr) {
		t.Fatalf("expected *FrontMatterError, got %T", err)
	}
	if fmErr.Path != "posts/bad.md" {
		t.Fatalf("expected document path, got %q", fmErr.Path)
	}
	if len(fmErr.Issues) == 0 {
		t.Fatal("expected at least one issue")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatal("expected error to unwrap to ErrSchemaValidation")
	}
}

func TestCompileJSONSchemaPassthrough(t *testing.T) {
	schema, err := Compile(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"series": map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if err := schema.ValidateFields("posts/a.md", map[string]any{"series": "refactoring"}); err != nil {
		t.Fatalf("expected valid payload to pass: %v", err)
	}

	err = schema.ValidateFields("posts/a.md", map[string]any{"unknown": true})
	if err == nil {
		t.Fatal("expected additionalProperties=false to reject unknown fields")
	}
	if !strings.Contains(err.Error(), "#") {
		t.Fatalf("expected issue locations in message, got %q", err.Error())
	}
}

func TestCompileMissingRequiredField(t *testing.T) {
	schema, err := Compile(map[string]any{
		"fields": []any{
			map[string]any{"name": "rating", "type": "integer", "required": true},
		},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	err = schema.ValidateFields("posts/a.md", map[string]any{})
	if err == nil {
		t.Fatal("expected missing required field to fail")
	}
	issues := Issues(err)
	if len(issues) == 0 {
		t.Fatal("expected issues to be extractable")
	}
}

func TestCompileInvalidSchema(t *testing.T) {
	_, err := Compile(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bad": map[string]any{"type": "no-such-type"},
		},
	})
	if err == nil {
		t.Fatal("expected invalid schema to fail compilation")
	}
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}
