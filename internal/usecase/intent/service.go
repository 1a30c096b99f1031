// Package intent turns free-text queries into structured retrieval intents
// by delegating to an LLM.
package intent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
)

const systemInstruction = "你是電商商品搜尋的意圖解析器。只回傳 JSON，不要任何其他文字。"

const promptTemplate = "請將以下使用者查詢解析為 JSON 格式，包含 intentType, entities, filters。" +
	"\n查詢: '%s'" +
	"\n請回傳格式: {\"intentType\": \"exact|semantic|style\", \"entities\": {\"欄位\": 值}, \"filters\": {\"欄位\": 值}}"

// Service parses user queries into intents.
type Service struct {
	llm    LLMClient
	logger *zap.Logger
}

// New creates an intent parsing service.
func New(llm LLMClient, logger *zap.Logger) *Service {
	return &Service{llm: llm, logger: logger}
}

// Parse asks the LLM to classify the query and decodes the JSON answer.
// It never fails: any transport error, malformed JSON, or non-object shape
// yields domain.FallbackIntent, which the orchestrator routes through the
// semantic path.
func (s *Service) Parse(ctx context.Context, query string) domain.Intent {
	raw, err := s.llm.Chat(ctx, fmt.Sprintf(promptTemplate, query), systemInstruction)
	if err != nil {
		s.logger.Warn("Intent parsing LLM call failed, using fallback", zap.Error(err))
		return domain.FallbackIntent()
	}

	parsed, err := domain.DecodeIntent(raw)
	if err != nil {
		s.logger.Debug("Intent response not decodable, using fallback",
			zap.String("response", truncate(raw, 200)),
			zap.Error(err),
		)
		return domain.FallbackIntent()
	}
	return parsed
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
