package blueprint

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/autoflow/autoflow/internal/model"
)

const makeSchema = `{
  "type": "object",
  "required": ["flow", "metadata"],
  "properties": {
    "name": {"type": "string"},
    "flow": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "module"],
        "properties": {
          "id": {"type": ["integer", "string"]},
          "module": {"type": "string", "minLength": 1},
          "version": {"type": "integer"},
          "parameters": {"type": "object"},
          "mapper": {"type": ["object", "null"]}
        }
      }
    },
    "metadata": {"type": "object"}
  },
  "not": {"anyOf": [{"required": ["nodes"]}, {"required": ["connections"]}]}
}`

const n8nSchema = `{
  "type": "object",
  "required": ["nodes", "connections"],
  "properties": {
    "name": {"type": "string"},
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "type"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "typeVersion": {"type": "number"},
          "position": {"type": "array", "items": {"type": "number"}},
          "parameters": {"type": "object"}
        }
      }
    },
    "connections": {"type": "object"}
  },
  "not": {"required": ["flow"]}
}`

// Validator checks blueprint bodies against each platform's import format.
type Validator struct {
	schemas map[model.Platform]*jsonschema.Schema
}

// NewValidator compiles the platform schemas.
func NewValidator() (*Validator, error) {
	sources := map[model.Platform]string{
		model.PlatformMake: makeSchema,
		model.PlatformN8n:  n8nSchema,
	}
	schemas := make(map[model.Platform]*jsonschema.Schema, len(sources))
	for p, src := range sources {
		id := "https://autoflow.ai/schemas/" + strings.ToLower(strings.TrimSuffix(string(p), ".com")) + ".json"
		schema, err := jsonschema.CompileString(id, src)
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", p, err)
		}
		schemas[p] = schema
	}
	return &Validator{schemas: schemas}, nil
}

// MustNewValidator is NewValidator for package-level initialisation and tests.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks raw against the platform schema. n8n connections must also
// reference existing node names.
func (v *Validator) Validate(p model.Platform, raw string) error {
	schema, ok := v.schemas[p]
	if !ok {
		return fmt.Errorf("%w: unknown platform %q", ErrInvalidBlueprint, p)
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBlueprint, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidBlueprint, p, err)
	}

	if p == model.PlatformN8n {
		return checkN8nConnections(raw)
	}
	return nil
}

// CheckModules rejects placeholder identifiers and returns well-formed ones
// missing from the registry.
func (v *Validator) CheckModules(p model.Platform, raw string) (unknown []string, err error) {
	ids, err := Modules(p, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBlueprint, err)
	}
	for _, id := range ids {
		if isPlaceholder(p, id) {
			return nil, fmt.Errorf("%w: %q", ErrPlaceholderModule, id)
		}
		if !IsKnownModule(p, id) {
			unknown = append(unknown, id)
		}
	}
	return unknown, nil
}

func checkN8nConnections(raw string) error {
	var doc struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
		Connections map[string]map[string][][]struct {
			Node string `json:"node"`
		} `json:"connections"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		// Some generators emit bare node names in connections; accept the schema result.
		return nil
	}

	names := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		names[n.Name] = true
	}
	for source, outputs := range doc.Connections {
		if !names[source] {
			return fmt.Errorf("%w: connection from unknown node %q", ErrInvalidBlueprint, source)
		}
		for _, branches := range outputs {
			for _, branch := range branches {
				for _, target := range branch {
					if target.Node != "" && !names[target.Node] {
						return fmt.Errorf("%w: connection to unknown node %q", ErrInvalidBlueprint, target.Node)
					}
				}
			}
		}
	}
	return nil
}
