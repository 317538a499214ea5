package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// Some provider endpoints reject schema metadata that is legal JSON Schema
// but outside the structured-output subset (default values, examples,
// comments). sanitizeSchema strips those keys recursively before
// submission. This is a compatibility shim, not a correctness concern: the
// stripped keys never influence validation on our side.
var strippedSchemaKeys = []string{"default", "examples", "$comment"}

// rawSchema satisfies json.Marshaler so a sanitized schema can be handed to
// the SDK's response-format field directly.
type rawSchema []byte

func (r rawSchema) MarshalJSON() ([]byte, error) { return r, nil }

func sanitizeSchema(def jsonschema.Definition) (rawSchema, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var node any
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("reparse schema: %w", err)
	}
	stripKeys(node)
	cleaned, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("remarshal schema: %w", err)
	}
	return rawSchema(cleaned), nil
}

func stripKeys(node any) {
	switch n := node.(type) {
	case map[string]any:
		for _, key := range strippedSchemaKeys {
			delete(n, key)
		}
		for _, v := range n {
			stripKeys(v)
		}
	case []any:
		for _, v := range n {
			stripKeys(v)
		}
	}
}
