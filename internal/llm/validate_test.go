package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

var testSchema = &Schema{
	Name:        "validate-test",
	Description: "test schema",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"score": map[string]any{"type": "integer"}},
		"required":             []string{"score"},
		"additionalProperties": false,
	},
}

func TestValidateResponseNilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`anything at all`)); err != nil {
		t.Errorf("nil schema should skip validation: %v", err)
	}
}

func TestValidateResponseValid(t *testing.T) {
	if err := validateResponse(testSchema, json.RawMessage(`{"score": 5}`)); err != nil {
		t.Errorf("valid payload rejected: %v", err)
	}
}

func TestValidateResponseInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{broken`},
		{"missing required", `{}`},
		{"wrong type", `{"score": "five"}`},
		{"extra property", `{"score": 5, "extra": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(testSchema, json.RawMessage(tt.raw))
			var invResp *ErrInvalidResponse
			if !errors.As(err, &invResp) {
				t.Errorf("expected *ErrInvalidResponse, got %v", err)
			}
		})
	}
}

func TestSchemaCacheReuse(t *testing.T) {
	// Two validations with the same schema name must not recompile; this
	// just exercises the cached path.
	for range 2 {
		if err := validateResponse(testSchema, json.RawMessage(`{"score": 1}`)); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := schemaCache.Load(testSchema.Name); !ok {
		t.Error("schema not cached after validation")
	}
}
