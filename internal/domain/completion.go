package domain

import "context"

// Role of a chat message sent to the answer composer.
type Role string

const (
	// RoleSystem carries instructions and grounding documents.
	RoleSystem Role = "system"
	// RoleUser carries the end user's question.
	RoleUser Role = "user"
)

// Message is a single chat message of a completion prompt.
type Message struct {
	Role    Role
	Content string
}

// Completion carries the generated answer and token usage through the decorator chain.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cached           bool
}

// Composer turns a grounded prompt into a natural-language answer.
type Composer interface {
	Compose(ctx context.Context, messages []Message) (Completion, error)
}

// HealthChecker verifies external provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
