package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchemaJSON accepts any object whose known collections have the
// documented element shapes. Missing collections are allowed.
const snapshotSchemaJSON = `{
  "type": "object",
  "properties": {
    "popular_categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "count"],
        "properties": {"category": {"type": "string"}, "count": {"type": "number"}}
      }
    },
    "preference_data": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "average"],
        "properties": {"category": {"type": "string"}, "average": {"type": ["number", "null"]}}
      }
    },
    "interaction_types": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "count"],
        "properties": {"type": {"type": "string"}, "count": {"type": "number"}}
      }
    },
    "best_sellers": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "count"],
        "properties": {"name": {"type": "string"}, "count": {"type": "number"}}
      }
    }
  }
}`

const snapshotSchemaURL = "analytics-snapshot.json"

type snapshotSchema struct {
	schema *jsonschema.Schema
}

func newSnapshotSchema() (*snapshotSchema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(snapshotSchemaURL, strings.NewReader(snapshotSchemaJSON)); err != nil {
		return nil, fmt.Errorf("gateway: load snapshot schema: %w", err)
	}
	schema, err := compiler.Compile(snapshotSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("gateway: compile snapshot schema: %w", err)
	}
	return &snapshotSchema{schema: schema}, nil
}

// Validate checks a raw analytics body.
func (s *snapshotSchema) Validate(body []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("decode analytics payload: %w", err)
	}
	return s.schema.Validate(doc)
}
