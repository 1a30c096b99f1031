package domain

// Candidate is a recommended product: catalog id, match score, and the
// shared justification for the batch it belongs to. Never persisted.
//
// MatchScore is 1.0 for exact and style matches, and the cosine similarity
// (in [-1, 1]) for semantic matches.
type Candidate struct {
	ProductID  int64
	MatchScore float64
	Reason     string
}

// ScoredProduct is a product id with its retrieval score, as produced by the
// candidate store before justification is attached.
type ScoredProduct struct {
	ProductID int64
	Score     float64
}
