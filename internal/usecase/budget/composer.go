package budget

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/metrics"
)

// Checker is the budget interface the composer decorator needs.
type Checker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Composer enforces the token budget around an inner composer.
// It sits below the answer cache so cache hits never count against the budget.
type Composer struct {
	inner  domain.Composer
	model  string
	budget Checker
	logger *zap.Logger
}

// NewComposer wraps inner with budget enforcement.
func NewComposer(inner domain.Composer, model string, budget Checker, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{inner: inner, model: model, budget: budget, logger: logger}
}

// Compose checks the budget, delegates and records the consumed tokens.
func (c *Composer) Compose(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	if err := c.budget.Check(ctx); err != nil {
		c.logger.Error("Budget exceeded", zap.String("model", c.model), zap.Error(err))
		return domain.Completion{}, fmt.Errorf("budget check: %w", err)
	}

	completion, err := c.inner.Compose(ctx, messages)
	if err != nil {
		return domain.Completion{}, err
	}

	if completion.TotalTokens > 0 {
		c.budget.Record(int64(completion.TotalTokens))
		gauge := metrics.LLMBudgetTokensRemaining
		gauge.WithLabelValues(c.model, "daily").Set(float64(c.budget.RemainingDaily()))
		gauge.WithLabelValues(c.model, "monthly").Set(float64(c.budget.RemainingMonthly()))
	}
	return completion, nil
}

// HealthCheck forwards to the inner composer when it supports health checks.
func (c *Composer) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
