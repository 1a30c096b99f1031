// Package chi exposes the recommendation pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
	healthuc "github.com/modamart/stylist/internal/usecase/health"
)

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}

// Reindexer refreshes stored product embeddings.
type Reindexer interface {
	Reindex(ctx context.Context) (int, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	recommender   Recommender
	indexer       Reindexer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(recommender Recommender, indexer Reindexer, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		recommender: recommender,
		indexer:     indexer,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, "invalid_query"),
		sentinelHandler(domain.ErrUnknownAttribute, http.StatusBadRequest, "unknown_attribute"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrLLMUnavailable, http.StatusServiceUnavailable, "llm_unavailable"),
	}
	return s
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/recommend", s.PostRecommend)
	r.Post("/api/v1/admin/reindex", s.PostReindex)
	r.Get("/api/v1/health", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// recommendRequest is the POST /api/v1/recommend body.
type recommendRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// productRecommendation mirrors the public response contract of the service.
type productRecommendation struct {
	ProductID  int64   `json:"product_id"`
	MatchScore float64 `json:"matchScore"`
	Reason     string  `json:"reason"`
}

type recommendResponse struct {
	Recommendations []productRecommendation `json:"recommendations"`
}

// PostRecommend handles POST /api/v1/recommend.
func (s *Server) PostRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	candidates, err := s.recommender.Recommend(r.Context(), req.Query, req.Limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	// Always a valid (possibly empty) array, never null.
	items := make([]productRecommendation, len(candidates))
	for i, c := range candidates {
		items[i] = productRecommendation{
			ProductID:  c.ProductID,
			MatchScore: c.MatchScore,
			Reason:     c.Reason,
		}
	}

	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: items})
}

// reindexResponse is the POST /api/v1/admin/reindex body.
type reindexResponse struct {
	Indexed int `json:"indexed"`
}

// PostReindex handles POST /api/v1/admin/reindex.
func (s *Server) PostReindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.indexer.Reindex(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reindexResponse{Indexed: n})
}

// healthResponse is the GET /api/v1/health body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GetHealth handles GET /api/v1/health. The catalog database is the only
// dependency that turns the endpoint into a 503.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	checks := make(map[string]string, len(report.Checks))
	for name, res := range report.Checks {
		checks[name] = string(res)
	}

	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// handleDomainError walks the sentinel table; anything unmatched is a 500.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
