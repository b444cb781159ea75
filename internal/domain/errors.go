package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource signals that the drug corpus could not be loaded.
	ErrDataSource = errors.New("data source error")
	// ErrInvalidQuestion signals an empty or malformed question.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrComposerUnavailable signals that answer generation is not configured.
	ErrComposerUnavailable = errors.New("answer composer unavailable")
	// ErrRateLimited signals a rate limit hit at the LLM provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrLLMQuotaExceeded signals an exhausted LLM account quota.
	ErrLLMQuotaExceeded = errors.New("llm quota exceeded")
	// ErrLLMProviderError signals an LLM provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
)

// DataSourceError describes why the corpus failed to load.
// Record is the zero-based record index, or -1 for file-level failures.
type DataSourceError struct {
	Path   string
	Record int
	Field  string
	Err    error
}

func (e *DataSourceError) Error() string {
	msg := ErrDataSource.Error() + ": " + e.Path
	if e.Record >= 0 {
		msg += fmt.Sprintf(": record %d", e.Record)
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrDataSource and the underlying cause.
func (e *DataSourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDataSource}
	}
	return []error{ErrDataSource, e.Err}
}

// NewDataSourceError creates a file-level data source error.
func NewDataSourceError(path string, err error) error {
	return &DataSourceError{Path: path, Record: -1, Err: err}
}

// NewRecordError creates a data source error pointing at a single record field.
func NewRecordError(path string, record int, field string, err error) error {
	return &DataSourceError{Path: path, Record: record, Field: field, Err: err}
}
