package chi

import "time"

type askRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	LastUpdated []string `json:"last_updated"`
}

type searchResultItem struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	LastUpdated string  `json:"last_updated"`
}

type searchResponse struct {
	Query   string             `json:"query"`
	Results []searchResultItem `json:"results"`
	Context string             `json:"context"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Documents int               `json:"documents"`
	Corpus    string            `json:"corpus,omitempty"`
}

type budgetStatus struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	Unlimited       bool       `json:"unlimited"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

type usageResponse struct {
	Period      string       `json:"period"`
	PeriodStart time.Time    `json:"period_start"`
	PeriodEnd   time.Time    `json:"period_end"`
	TokensUsed  int64        `json:"tokens_used"`
	Budget      budgetStatus `json:"budget"`
}
