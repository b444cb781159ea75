package mcp

import (
	"context"

	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
	answeruc "github.com/kailas-cloud/drugfacts/internal/usecase/answer"
)

// Searcher ranks corpus records against a query.
type Searcher interface {
	Retrieve(ctx context.Context, query string, k int) []result.Result
}

// Answerer composes grounded answers.
type Answerer interface {
	Available() bool
	Ask(ctx context.Context, question string) (answeruc.Answer, error)
}

// Ports aggregates the services the MCP server drives.
type Ports struct {
	// Search is required.
	Search Searcher

	// Answers is optional; ask_drug_question is only registered when it
	// reports a configured composer.
	Answers Answerer

	// DefaultK is used when a tool call omits k.
	DefaultK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
