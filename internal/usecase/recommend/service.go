// Package recommend is the top-level recommendation pipeline: intent parsing,
// retrieval dispatch, and justification assembly.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
	"github.com/modamart/stylist/internal/metrics"
)

const reasonPromptTemplate = "請為查詢 '%s' 生成推薦理由，並以簡短中文說明。"

// fallbackReason is attached when the LLM cannot supply a justification.
// A degraded reason beats failing the whole request.
const fallbackReason = "根據您的查詢為您挑選的相關商品。"

// Service orchestrates one recommendation request.
// All collaborators are injected at construction; there are no hidden
// default singletons.
type Service struct {
	intents IntentParser
	store   Store
	embed   Embedder
	explain Explainer
	logger  *zap.Logger

	defaultLimit int
	maxLimit     int
	timeout      time.Duration
}

// New creates the recommendation orchestrator.
func New(intents IntentParser, store Store, embed Embedder, explain Explainer, logger *zap.Logger) *Service {
	return &Service{
		intents:      intents,
		store:        store,
		embed:        embed,
		explain:      explain,
		logger:       logger,
		defaultLimit: 10,
		maxLimit:     100,
		timeout:      90 * time.Second,
	}
}

// WithLimits overrides the default and maximum candidate limits.
func (s *Service) WithLimits(defaultLimit, maxLimit int) *Service {
	if defaultLimit > 0 {
		s.defaultLimit = defaultLimit
	}
	if maxLimit > 0 {
		s.maxLimit = maxLimit
	}
	return s
}

// WithTimeout overrides the overall per-request deadline covering intent
// parsing, retrieval, and justification generation.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Recommend runs the pipeline: parse intent, dispatch to the matching
// retrieval strategy, generate one shared justification, and zip the result.
//
// Exact and style matches score 1.0; semantic matches carry the true cosine
// similarity. Zero matches is a valid empty result, not an error.
func (s *Service) Recommend(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidQuery
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parsed := s.intents.Parse(ctx, query)

	scored, err := s.retrieve(ctx, query, parsed, limit)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(string(parsed.Type), "error").Inc()
		return nil, err
	}

	reason := s.justify(ctx, query)

	candidates := make([]domain.Candidate, len(scored))
	for i, sp := range scored {
		candidates[i] = domain.Candidate{
			ProductID:  sp.ProductID,
			MatchScore: sp.Score,
			Reason:     reason,
		}
	}

	metrics.RecommendationsTotal.WithLabelValues(string(parsed.Type), "success").Inc()
	metrics.RecommendationCandidates.WithLabelValues(string(parsed.Type)).Observe(float64(len(candidates)))

	s.logger.Debug("Recommendation completed",
		zap.String("intent", string(parsed.Type)),
		zap.Int("candidates", len(candidates)),
	)

	return candidates, nil
}

// retrieve dispatches on the intent type. Anything other than the three known
// strategies (including the parser fallback) goes through semantic search so
// the pipeline always has a ranked list to return.
func (s *Service) retrieve(
	ctx context.Context, query string, parsed domain.Intent, limit int,
) ([]domain.ScoredProduct, error) {
	switch parsed.Type {
	case domain.IntentExact:
		ids, err := s.store.ExactSearch(ctx, parsed.Entities, limit)
		if err != nil {
			return nil, fmt.Errorf("exact search: %w", err)
		}
		return constantScore(ids), nil

	case domain.IntentStyle:
		ids, err := s.store.StyleSearch(ctx, parsed.Filters, limit)
		if err != nil {
			return nil, fmt.Errorf("style search: %w", err)
		}
		return constantScore(ids), nil

	case domain.IntentSemantic:
		return s.semantic(ctx, query, limit)

	default:
		return s.semantic(ctx, query, limit)
	}
}

func (s *Service) semantic(ctx context.Context, query string, limit int) ([]domain.ScoredProduct, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	scored, err := s.store.SemanticSearch(ctx, emb.Embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return scored, nil
}

// justify asks the LLM for one short explanation shared by the whole batch.
// An unreachable LLM degrades to the static fallback reason instead of
// failing the request.
func (s *Service) justify(ctx context.Context, query string) string {
	reason, err := s.explain.Chat(ctx, fmt.Sprintf(reasonPromptTemplate, query), "")
	if err != nil {
		s.logger.Warn("Justification generation failed, using fallback reason", zap.Error(err))
		return fallbackReason
	}
	if strings.TrimSpace(reason) == "" {
		return fallbackReason
	}
	return reason
}

func constantScore(ids []int64) []domain.ScoredProduct {
	scored := make([]domain.ScoredProduct, len(ids))
	for i, id := range ids {
		scored[i] = domain.ScoredProduct{ProductID: id, Score: 1.0}
	}
	return scored
}
