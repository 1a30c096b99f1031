package recommend

import (
	"context"

	"github.com/modamart/stylist/internal/domain"
)

// IntentParser classifies a query into a retrieval intent. Must not fail:
// inconclusive parses return the fallback intent.
type IntentParser interface {
	Parse(ctx context.Context, query string) domain.Intent
}

// Store defines the candidate retrieval contract.
type Store interface {
	ExactSearch(ctx context.Context, entities map[string]any, limit int) ([]int64, error)
	StyleSearch(ctx context.Context, filters map[string]any, limit int) ([]int64, error)
	SemanticSearch(ctx context.Context, query []float32, topK int) ([]domain.ScoredProduct, error)
}

// Embedder vectorizes the query text for semantic retrieval.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Explainer produces the shared natural-language justification for a batch.
type Explainer interface {
	Chat(ctx context.Context, prompt, system string) (string, error)
}
