package usage

import domusage "github.com/kailas-cloud/drugfacts/internal/domain/usage"

// BudgetReader reads the token counters of the current day or month.
type BudgetReader interface {
	Counters(period domusage.Period) domusage.Counters
}
