// Package catalog is the read path into the product and embedding tables.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/modamart/stylist/internal/domain"
)

// Repo executes retrieval queries against the catalog database.
// Every call checks a connection out of the pool for its own duration, so
// concurrent requests never share transaction state.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ExactSearch returns up to limit product ids matching every given attribute
// exactly, in primary-key order. An empty entities map degenerates to the
// first limit products; callers must not rely on that for ranking quality.
func (r *Repo) ExactSearch(ctx context.Context, entities map[string]any, limit int) ([]int64, error) {
	return r.equalitySearch(ctx, entities, exactColumns, limit)
}

// StyleSearch is ExactSearch over the soft-attribute subset (season, usage,
// gender, year).
func (r *Repo) StyleSearch(ctx context.Context, filters map[string]any, limit int) ([]int64, error) {
	return r.equalitySearch(ctx, filters, styleColumns, limit)
}

func (r *Repo) equalitySearch(
	ctx context.Context, attrs map[string]any, allowed map[string]struct{}, limit int,
) ([]int64, error) {
	where, args := buildEqualityFilter(attrs, allowed)

	query := fmt.Sprintf(
		"SELECT id FROM products WHERE 1=1%s ORDER BY id LIMIT $%d",
		where, len(args)+1,
	)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0, limit)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return ids, nil
}

// SemanticSearch loads every stored (product_id, embedding) pair, scores it
// against the query vector by cosine similarity, and returns the topK best
// with their scores. Ordering is best-similarity-first with storage-order
// tie-breaking. A stored all-zero vector scores finitely (epsilon guard).
func (r *Repo) SemanticSearch(ctx context.Context, query []float32, topK int) ([]domain.ScoredProduct, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT product_id, embedding_vector FROM product_embeddings ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var stored []storedVector
	for rows.Next() {
		var sv storedVector
		var raw []byte
		if err := rows.Scan(&sv.productID, &raw); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal(raw, &sv.embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for product %d: %w", sv.productID, err)
		}
		stored = append(stored, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read embeddings: %w", err)
	}

	return rankBySimilarity(query, stored, topK), nil
}

// ProductText is the descriptive text of one product used for embedding.
type ProductText struct {
	ProductID int64
	Text      string
}

// ListProductsNeedingEmbedding returns products that have no stored embedding
// or whose descriptive text changed since it was embedded, in id order.
func (r *Repo) ListProductsNeedingEmbedding(ctx context.Context, limit int) ([]ProductText, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.product_display_name || ' ' || COALESCE(p.description, '')
		FROM products p
		LEFT JOIN product_embeddings e ON e.product_id = p.id
		WHERE p.is_active
		  AND (e.product_id IS NULL
		       OR e.embedding_text IS DISTINCT FROM p.product_display_name || ' ' || COALESCE(p.description, ''))
		ORDER BY p.id
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query products needing embedding: %w", err)
	}
	defer rows.Close()

	var out []ProductText
	for rows.Next() {
		var pt ProductText
		if err := rows.Scan(&pt.ProductID, &pt.Text); err != nil {
			return nil, fmt.Errorf("scan product text: %w", err)
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read product texts: %w", err)
	}
	return out, nil
}

// UpsertEmbedding stores a product's embedding vector (JSON-serialized) along
// with the model that produced it and the text it was computed from.
func (r *Repo) UpsertEmbedding(
	ctx context.Context, productID int64, model string, vector []float32, text string,
) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO product_embeddings (product_id, embedding_model, embedding_vector, embedding_text)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id) DO UPDATE SET
			embedding_model = EXCLUDED.embedding_model,
			embedding_vector = EXCLUDED.embedding_vector,
			embedding_text = EXCLUDED.embedding_text`,
		productID, model, raw, text,
	)
	if err != nil {
		return fmt.Errorf("upsert embedding for product %d: %w", productID, err)
	}
	return nil
}
