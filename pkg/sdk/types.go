package drugfacts

import "time"

// Record is one drug entry supplied through WithRecords.
type Record struct {
	GenericName string
	BrandNames  []string
	Uses        string
	Dosage      string
	Warnings    string
	SideEffects string
	Sources     []string
	LastUpdated string
}

// Hit is a ranked record.
type Hit struct {
	Name        string
	Score       float64
	LastUpdated string
	Text        string
}

// SearchResult carries the ranked hits and the grounding context built from them.
type SearchResult struct {
	Query   string
	Hits    []Hit
	Context string
}

// Answer is a grounded response.
type Answer struct {
	Question    string
	Answer      string
	Sources     []string
	LastUpdated []string
	Cached      bool
}

// Role of a chat message.
type Role string

// Role constants.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single prompt message handed to a Composer.
type Message struct {
	Role    Role
	Content string
}

// Completion is a Composer's generated answer.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Usage is the token consumption for the current UTC day or month.
type Usage struct {
	Period          string
	TokensUsed      int64
	TokensLimit     int64 // 0 when unlimited
	TokensRemaining int64
	Exhausted       bool
	ResetsAt        time.Time
}
