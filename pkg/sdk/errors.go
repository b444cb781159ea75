package drugfacts

import (
	"errors"

	"github.com/kailas-cloud/drugfacts/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDataSource          = domain.ErrDataSource
	ErrInvalidQuestion     = domain.ErrInvalidQuestion
	ErrComposerUnavailable = domain.ErrComposerUnavailable
	ErrRateLimited         = domain.ErrRateLimited
	ErrLLMQuotaExceeded    = domain.ErrLLMQuotaExceeded
	ErrLLMProviderError    = domain.ErrLLMProviderError
)

// ErrNoCorpusFile is returned by Reload when the client was built from in-memory records.
var ErrNoCorpusFile = errors.New("drugfacts: client has no corpus file to reload")
