package drugfacts

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/drugfacts/internal/domain"
)

// Composer turns a grounded prompt into an answer. Plug one in with WithComposer
// to use a provider other than an OpenAI-compatible endpoint.
type Composer interface {
	Compose(ctx context.Context, messages []Message) (Completion, error)
}

// composerAdapter wraps a public Composer to satisfy domain.Composer.
type composerAdapter struct {
	inner Composer
}

func (a *composerAdapter) Compose(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	public := make([]Message, len(messages))
	for i, m := range messages {
		public[i] = Message{Role: Role(m.Role), Content: m.Content}
	}

	c, err := a.inner.Compose(ctx, public)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("compose: %w", err)
	}
	return domain.Completion{
		Content:          c.Content,
		PromptTokens:     c.PromptTokens,
		CompletionTokens: c.CompletionTokens,
		TotalTokens:      c.TotalTokens,
	}, nil
}
