// Package indexer maintains the product_embeddings table: products whose
// descriptive text has no stored vector (or an outdated one) are re-encoded
// in batches.
package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
)

// Service batch-encodes product texts and persists the vectors.
type Service struct {
	store     Store
	embed     domain.BatchEmbedder
	model     string
	batchSize int
	logger    *zap.Logger
}

// New creates an embedding indexer. model is recorded on every row so stale
// vectors can be told apart after a model upgrade.
func New(store Store, embed domain.BatchEmbedder, model string, batchSize int, logger *zap.Logger) *Service {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &Service{
		store:     store,
		embed:     embed,
		model:     model,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Reindex encodes and stores embeddings for every product that needs one,
// batch by batch, until the backlog is drained or ctx is cancelled.
// Returns the number of products indexed.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("reindex cancelled: %w", err)
		}

		batch, err := s.store.ListProductsNeedingEmbedding(ctx, s.batchSize)
		if err != nil {
			return total, fmt.Errorf("list products: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		texts := make([]string, len(batch))
		for i, pt := range batch {
			texts[i] = pt.Text
		}

		result, err := s.embed.BatchEmbed(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("batch embed: %w", err)
		}

		for i, pt := range batch {
			if err := s.store.UpsertEmbedding(ctx, pt.ProductID, s.model, result.Embeddings[i], pt.Text); err != nil {
				return total, fmt.Errorf("store embedding: %w", err)
			}
			total++
		}

		s.logger.Info("Indexed embedding batch",
			zap.Int("batch", len(batch)),
			zap.Int("total", total),
		)

		if len(batch) < s.batchSize {
			break
		}
	}

	return total, nil
}
