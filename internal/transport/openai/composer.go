package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/metrics"
)

const quotaCode = "insufficient_quota"

// Composer generates answers through an OpenAI-compatible chat completion API (DeepSeek by default).
type Composer struct {
	client      *openai.Client
	model       string
	temperature float32
	limiter     *RateLimiter
	logger      *zap.Logger
}

// Config holds the chat completion provider settings.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Backoff           time.Duration
	Logger            *zap.Logger
}

// NewComposer creates an OpenAI-compatible answer composer.
func NewComposer(cfg *Config) *Composer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Composer{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst, cfg.Backoff),
		logger:      logger,
	}
}

// Model returns the configured model name.
func (c *Composer) Model() string { return c.model }

// Temperature returns the configured sampling temperature.
func (c *Composer) Temperature() float32 { return c.temperature }

// Compose implements domain.Composer.
func (c *Composer) Compose(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.LLMErrorsTotal.WithLabelValues(c.model, "rate_limit_wait").Inc()
		return domain.Completion{}, fmt.Errorf("wait for rate limiter: %w: %w", domain.ErrRateLimited, err)
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toChatMessages(messages),
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		translated := translateError(err)
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(c.model, errorKind(translated)).Inc()
		if errors.Is(translated, domain.ErrRateLimited) {
			c.limiter.RecordRateLimit(0)
			c.logger.Warn("llm rate limited, backing off", zap.String("model", c.model))
		}
		return domain.Completion{}, translated
	}

	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(c.model, "error").Inc()
		metrics.LLMErrorsTotal.WithLabelValues(c.model, "empty_response").Inc()
		return domain.Completion{}, fmt.Errorf("empty completion response: %w", domain.ErrLLMProviderError)
	}

	metrics.LLMRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.LLMRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.LLMTokensTotal.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.LLMTokensTotal.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.LLMTokensTotal.WithLabelValues(c.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Composer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// translateError maps a provider failure onto the domain sentinels.
// Quota exhaustion is checked before rate limiting: providers answer both with HTTP 429.
func translateError(err error) error {
	var (
		status  int
		code    string
		errType string
		detail  string
	)

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		errType = apiErr.Type
		detail = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		detail = strings.TrimSpace(string(reqErr.Body))
		if detail == "" && reqErr.Err != nil {
			detail = reqErr.Err.Error()
		}
	default:
		detail = err.Error()
	}

	lower := strings.ToLower(detail)
	switch {
	case code == quotaCode || errType == quotaCode || strings.Contains(lower, quotaCode):
		return fmt.Errorf("llm API error %d: %s: %w", status, detail, domain.ErrLLMQuotaExceeded)
	case status == http.StatusTooManyRequests || strings.Contains(lower, "rate limit"):
		return fmt.Errorf("llm API error %d: %s: %w", status, detail, domain.ErrRateLimited)
	case status != 0:
		return fmt.Errorf("llm API error %d: %s: %w", status, detail, domain.ErrLLMProviderError)
	default:
		return fmt.Errorf("llm request failed: %w: %w", domain.ErrLLMProviderError, err)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrLLMQuotaExceeded):
		return "quota"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "api_error"
	}
}
