package answer

import (
	"context"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
)

// Retriever ranks corpus records against a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) []result.Result
}

// Composer generates the answer text from a grounded prompt.
type Composer interface {
	Compose(ctx context.Context, messages []domain.Message) (domain.Completion, error)
}
