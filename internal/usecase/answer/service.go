package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/logger"
	"github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
)

const groundingPrefix = "Grounding documents:\n"

// Answer is a grounded response to a user question.
type Answer struct {
	Question    string
	Answer      string
	Sources     []string
	LastUpdated []string
	Cached      bool
}

// Options tune prompt construction.
type Options struct {
	TopK         int
	SystemPrompt string
}

// Service answers questions by retrieving records and asking the composer.
type Service struct {
	retriever Retriever
	composer  Composer
	opts      Options
}

// New creates an answer service. composer may be nil when generation is not
// configured; Ask then fails with domain.ErrComposerUnavailable.
func New(retriever Retriever, composer Composer, opts Options) *Service {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	return &Service{retriever: retriever, composer: composer, opts: opts}
}

// Available reports whether a composer is configured.
func (s *Service) Available() bool { return s.composer != nil }

// Ask retrieves the top records for question and composes a grounded answer.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	query := strings.TrimSpace(question)
	if query == "" {
		return Answer{}, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidQuestion)
	}
	if s.composer == nil {
		return Answer{}, domain.ErrComposerUnavailable
	}

	results := s.retriever.Retrieve(ctx, query, s.opts.TopK)
	messages := BuildMessages(s.opts.SystemPrompt, retrieve.FormatContext(results), question)

	completion, err := s.composer.Compose(ctx, messages)
	if err != nil {
		return Answer{}, fmt.Errorf("compose answer: %w", err)
	}

	logger.FromContext(ctx).Debug("answer composed",
		zap.Int("sources", len(results)),
		zap.Int("total_tokens", completion.TotalTokens),
		zap.Bool("cached", completion.Cached),
	)

	return Answer{
		Question:    question,
		Answer:      completion.Content,
		Sources:     retrieve.Sources(results),
		LastUpdated: retrieve.LastUpdated(results),
		Cached:      completion.Cached,
	}, nil
}

// BuildMessages lays out the prompt: safety template, grounding documents, question.
func BuildMessages(systemPrompt, grounding, question string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleSystem, Content: groundingPrefix + grounding},
		{Role: domain.RoleUser, Content: question},
	}
}
