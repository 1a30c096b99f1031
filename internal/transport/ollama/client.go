// Package ollama is the HTTP client for the local LLM inference service.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/modamart/stylist/internal/domain"
	"github.com/modamart/stylist/internal/metrics"
)

// maxLineSize bounds a single streamed response line.
const maxLineSize = 1 << 20

// Client talks to an Ollama-compatible /api/generate endpoint.
// Safe for concurrent use.
type Client struct {
	baseURL string
	model   string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the LLM client settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates an LLM client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		timeout: timeout,
		// Transport-level timeout is handled per call via context.
		http:   &http.Client{},
		logger: logger,
	}
}

// generateRequest is the /api/generate request body.
type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
}

// generateLine is one (possibly partial) response object. The service streams
// newline-delimited objects; the last one carries the accumulated answer.
type generateLine struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Chat sends a prompt (and optional system instruction) and returns the final
// response text. The service may answer with a single JSON object or with a
// newline-delimited stream of partial objects; in either case the last
// successfully parsed line wins and malformed lines are skipped.
//
// Transport failures and non-2xx statuses are returned wrapped in
// domain.ErrLLMUnavailable so callers can degrade instead of surfacing raw
// HTTP errors.
func (c *Client) Chat(ctx context.Context, prompt, system string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		System: system,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := c.http.Do(req)

	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("llm request: %v: %w", err, domain.ErrLLMUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("llm status %d: %w", resp.StatusCode, domain.ErrLLMUnavailable)
	}

	text, err := decodeResponse(resp.Body)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", err
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.model).Observe(time.Since(start).Seconds())

	c.logger.Debug("LLM request completed",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_len", len(text)),
	)

	return text, nil
}

// HealthCheck verifies the inference service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("llm health: %v: %w", err, domain.ErrLLMUnavailable)
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("llm health status %d: %w", resp.StatusCode, domain.ErrLLMUnavailable)
	}
	return nil
}

// decodeResponse parses either a single JSON object or a newline-delimited
// stream of partial objects, returning the response field of the last line
// that parses. Lines that fail to parse are skipped.
func decodeResponse(r io.Reader) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxLineSize*16))
	if err != nil {
		return "", fmt.Errorf("read llm response: %v: %w", err, domain.ErrLLMUnavailable)
	}

	var last string
	var parsed bool

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var part generateLine
		if err := json.Unmarshal(line, &part); err != nil {
			continue
		}
		last = part.Response
		parsed = true
	}

	if !parsed {
		// Non-streaming services may pretty-print a single object across lines.
		var whole generateLine
		if err := json.Unmarshal(bytes.TrimSpace(body), &whole); err != nil {
			return "", fmt.Errorf("no parsable llm response: %w", domain.ErrLLMUnavailable)
		}
		return whole.Response, nil
	}
	return last, nil
}
