package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
)

type mockLLM struct {
	response   string
	err        error
	lastPrompt string
	lastSystem string
}

func (m *mockLLM) Chat(_ context.Context, prompt, system string) (string, error) {
	m.lastPrompt = prompt
	m.lastSystem = system
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func TestParse_ValidResponse(t *testing.T) {
	llm := &mockLLM{response: `{"intentType": "exact", "entities": {"base_colour_id": 1}, "filters": {}}`}
	svc := New(llm, zap.NewNop())

	parsed := svc.Parse(context.Background(), "白色襯衫")
	if parsed.Type != domain.IntentExact {
		t.Errorf("expected exact, got %q", parsed.Type)
	}
	if parsed.Entities["base_colour_id"] != float64(1) {
		t.Errorf("expected base_colour_id=1, got %v", parsed.Entities)
	}
	if !strings.Contains(llm.lastPrompt, "白色襯衫") {
		t.Errorf("expected query embedded in prompt, got %q", llm.lastPrompt)
	}
	if llm.lastSystem == "" {
		t.Error("expected a system instruction")
	}
}

func TestParse_MalformedResponsesFallBack(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"plain text", "the user probably wants a shirt"},
		{"bare array", `[1, 2, 3]`},
		{"bare scalar", `"semantic"`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockLLM{response: tt.response}, zap.NewNop())

			parsed := svc.Parse(context.Background(), "anything")
			if parsed.Type != domain.IntentUnknown {
				t.Errorf("expected fallback intent, got %q", parsed.Type)
			}
			if len(parsed.Entities) != 0 || len(parsed.Filters) != 0 {
				t.Errorf("expected empty maps, got %v / %v", parsed.Entities, parsed.Filters)
			}
		})
	}
}

func TestParse_TransportErrorFallsBack(t *testing.T) {
	svc := New(&mockLLM{err: errors.New("connection refused")}, zap.NewNop())

	parsed := svc.Parse(context.Background(), "anything")
	if parsed.Type != domain.IntentUnknown {
		t.Errorf("expected fallback intent on transport error, got %q", parsed.Type)
	}
}

func TestParse_ArrayEntitiesNormalized(t *testing.T) {
	llm := &mockLLM{response: `{"intentType": "exact", "entities": ["red", "shirt"], "filters": {}}`}
	svc := New(llm, zap.NewNop())

	parsed := svc.Parse(context.Background(), "red shirt")
	if parsed.Type != domain.IntentExact {
		t.Errorf("expected exact, got %q", parsed.Type)
	}
	if len(parsed.Entities) != 0 {
		t.Errorf("expected list entities rejected to empty map, got %v", parsed.Entities)
	}
}
