// Package mcp exposes drug fact retrieval over the Model Context Protocol so
// assistants can look up grounded records without going through HTTP.
package mcp

import "errors"

// ErrMissingSearchService is returned when the retrieval service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
