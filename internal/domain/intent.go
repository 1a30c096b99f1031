package domain

import (
	"encoding/json"
	"fmt"
)

// IntentType tags the retrieval strategy chosen for a query.
type IntentType string

const (
	// IntentExact routes to attribute-equality search.
	IntentExact IntentType = "exact"
	// IntentSemantic routes to vector nearest-neighbor search.
	IntentSemantic IntentType = "semantic"
	// IntentStyle routes to soft-filter search (season, usage, occasion).
	IntentStyle IntentType = "style"
	// IntentUnknown is the fallback when the LLM response cannot be interpreted.
	IntentUnknown IntentType = "unknown"
)

// Intent is the structured interpretation of a free-text query.
// Entities drive exact attribute matching, Filters drive style search.
// Both maps are always non-nil.
type Intent struct {
	Type     IntentType
	Entities map[string]any
	Filters  map[string]any
}

// FallbackIntent is returned whenever intent parsing is inconclusive.
// The orchestrator treats it as a semantic search.
func FallbackIntent() Intent {
	return Intent{
		Type:     IntentUnknown,
		Entities: map[string]any{},
		Filters:  map[string]any{},
	}
}

// intentWire mirrors the JSON contract the LLM is instructed to produce.
// entities and filters arrive as raw JSON because the model sometimes emits
// arrays where an object is expected.
type intentWire struct {
	IntentType string          `json:"intentType"`
	Entities   json.RawMessage `json:"entities"`
	Filters    json.RawMessage `json:"filters"`
}

// DecodeIntent strictly decodes an LLM response into an Intent.
// The error branch is a normal control-flow value: callers substitute
// FallbackIntent instead of propagating it.
//
// Normalization rule: entities/filters must be JSON objects. A JSON array
// (or any other shape) is rejected and normalized to an empty map; the
// intentType is still honored.
func DecodeIntent(text string) (Intent, error) {
	var wire intentWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return Intent{}, fmt.Errorf("decode intent: %w", err)
	}
	if wire.IntentType == "" {
		return Intent{}, fmt.Errorf("decode intent: missing intentType")
	}

	// The intentType is kept verbatim; the orchestrator routes anything it
	// does not recognize through the semantic fallback.
	return Intent{
		Type:     IntentType(wire.IntentType),
		Entities: objectOrEmpty(wire.Entities),
		Filters:  objectOrEmpty(wire.Filters),
	}, nil
}

// objectOrEmpty decodes raw JSON into a map, normalizing non-object shapes
// (arrays, scalars, null, absent) to an empty map.
func objectOrEmpty(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}
