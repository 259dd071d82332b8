package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrDraftInvalid reports a draft missing required fields.
var ErrDraftInvalid = errors.New("dashboard: interaction draft is missing required fields")

// ValidateDraft checks the fields the backend requires. Whitespace-only
// values count as missing.
func ValidateDraft(d InteractionDraft) error {
	trimmed := InteractionDraft{
		InteractionType: strings.TrimSpace(d.InteractionType),
		Notes:           strings.TrimSpace(d.Notes),
	}
	if err := validation.ValidateStruct(&trimmed,
		validation.Field(&trimmed.InteractionType, validation.Required),
		validation.Field(&trimmed.Notes, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrDraftInvalid, err)
	}
	return nil
}

// ConfigValidator validates mount configuration against the schema of its kind.
type ConfigValidator interface {
	Validate(mount Mount) error
}

// mountSchemas holds the config schema of kinds that take configuration.
var mountSchemas = map[MountKind]map[string]any{
	MountKPI: {
		"type":     "object",
		"required": []any{"metric"},
		"properties": map[string]any{
			"metric": map[string]any{
				"type": "string",
				"enum": []any{"total_customers", "total_products_sold", "total_interactions"},
			},
			"icon":        map[string]any{"type": "string"},
			"trend":       map[string]any{"type": "string", "enum": []any{"up", "down", "neutral"}},
			"trend_value": map[string]any{"type": "string"},
		},
	},
	MountRecommendations: {
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer", "minimum": 1},
		},
	},
}

// JSONSchemaValidator compiles mount schemas and validates configuration maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	schemas  map[MountKind]map[string]any
	compiled map[MountKind]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		schemas:  mountSchemas,
		compiled: make(map[MountKind]*jsonschema.Schema),
	}
}

// Validate ensures the mount configuration satisfies its kind schema.
func (v *JSONSchemaValidator) Validate(mount Mount) error {
	raw, ok := v.schemas[mount.Kind]
	if !ok {
		return nil
	}
	schema, err := v.schemaFor(mount.Kind, raw)
	if err != nil {
		return err
	}
	var payload map[string]any
	if mount.Config == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(mount.Config)
		if err != nil {
			return fmt.Errorf("dashboard: marshal config for %s: %w", mount.ID, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize config for %s: %w", mount.ID, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: configuration for %s failed validation: %w", mount.ID, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(kind MountKind, raw map[string]any) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[kind]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", kind, err)
	}
	compiler := jsonschema.NewCompiler()
	name := string(kind) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", kind, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", kind, err)
	}
	v.mu.Lock()
	v.compiled[kind] = compiled
	v.mu.Unlock()
	return compiled, nil
}

// ValidatePage checks every mount of a definition.
func ValidatePage(v ConfigValidator, def PageDefinition) error {
	if v == nil {
		return nil
	}
	var errs error
	for _, m := range def.Mounts {
		errs = errors.Join(errs, v.Validate(m))
	}
	return errs
}
