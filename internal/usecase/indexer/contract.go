package indexer

import (
	"context"

	"github.com/modamart/stylist/internal/repository/catalog"
)

// Store reads products awaiting embeddings and persists computed vectors.
type Store interface {
	ListProductsNeedingEmbedding(ctx context.Context, limit int) ([]catalog.ProductText, error)
	UpsertEmbedding(ctx context.Context, productID int64, model string, vector []float32, text string) error
}
