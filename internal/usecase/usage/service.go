package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/drugfacts/internal/domain/usage"
	"github.com/kailas-cloud/drugfacts/internal/domain/usage/budget"
)

// Service reports LLM token usage against the configured budget.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil when no budget is tracked; reports are
// then empty and unlimited.
func New(br BudgetReader) *Service {
	return &Service{br: br, now: func() time.Time { return time.Now().UTC() }}
}

// GetReport builds a usage report for the current UTC day or month.
// Unknown periods fall back to day.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	if period != domusage.PeriodMonth {
		period = domusage.PeriodDay
	}
	start, end := bounds(s.now(), period)

	var c domusage.Counters
	if s.br != nil {
		c = s.br.Counters(period)
	}

	b := budget.New(c.Limit, c.Remaining, end.UnixMilli())
	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), c.Used, b)
}

func bounds(now time.Time, period domusage.Period) (start, end time.Time) {
	if period == domusage.PeriodMonth {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	}
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
