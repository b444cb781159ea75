package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	retrieveuc "github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
)

const (
	defaultK = 3
	maxK     = 50

	toolSearch = "search_drug_facts"
	toolAsk    = "ask_drug_question"
)

// SearchInput is the input for search_drug_facts.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text question or keywords, e.g. drug name or symptom"`
	K     int    `json:"k,omitempty" jsonschema:"number of records to return (default 3, max 50)"`
}

// SearchResult is one ranked record.
type SearchResult struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	LastUpdated string  `json:"last_updated"`
}

// SearchOutput is the output of search_drug_facts.
type SearchOutput struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Context string         `json:"context"`
	Count   int            `json:"count"`
}

// AskInput is the input for ask_drug_question.
type AskInput struct {
	Question string `json:"question" jsonschema:"question about a medication"`
}

// AskOutput is the output of ask_drug_question.
type AskOutput struct {
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Sources     []string `json:"sources"`
	LastUpdated []string `json:"last_updated"`
	Cached      bool     `json:"cached"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: toolSearch,
		Description: "Search the drug facts corpus. Returns the best matching records " +
			"with relevance scores and the formatted grounding context.",
	}, s.handleSearch)
	s.tools = append(s.tools, toolSearch)

	if s.ports.Answers != nil && s.ports.Answers.Available() {
		mcp.AddTool(s.server, &mcp.Tool{
			Name: toolAsk,
			Description: "Answer a medication question grounded in the drug facts corpus. " +
				"Not a substitute for advice from a doctor or pharmacist.",
		}, s.handleAsk)
		s.tools = append(s.tools, toolAsk)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}

	k := input.K
	if k <= 0 {
		k = s.ports.DefaultK
	}
	if k > maxK {
		k = maxK
	}

	results := s.ports.Search.Retrieve(ctx, query, k)

	out := SearchOutput{
		Query:   query,
		Results: make([]SearchResult, len(results)),
		Context: retrieveuc.FormatContext(results),
		Count:   len(results),
	}
	for i, r := range results {
		out.Results[i] = SearchResult{
			Name:        r.Record().DisplayName(),
			Score:       r.Score(),
			LastUpdated: r.Record().LastUpdated(),
		}
	}
	return nil, out, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	ans, err := s.ports.Answers.Ask(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, toolError(err)
	}

	sources := ans.Sources
	if sources == nil {
		sources = []string{}
	}
	lastUpdated := ans.LastUpdated
	if lastUpdated == nil {
		lastUpdated = []string{}
	}

	return nil, AskOutput{
		Question:    ans.Question,
		Answer:      ans.Answer,
		Sources:     sources,
		LastUpdated: lastUpdated,
		Cached:      ans.Cached,
	}, nil
}

// toolError keeps domain failures recognizable to the client without leaking
// provider payloads.
func toolError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuestion):
		return fmt.Errorf("invalid question: %w", err)
	case errors.Is(err, domain.ErrLLMQuotaExceeded):
		return errors.New("llm quota exceeded, try again later")
	case errors.Is(err, domain.ErrRateLimited):
		return errors.New("rate limited by llm provider, try again later")
	case errors.Is(err, domain.ErrComposerUnavailable):
		return errors.New("answer generation is not configured")
	case errors.Is(err, domain.ErrLLMProviderError):
		return errors.New("llm provider error")
	default:
		return fmt.Errorf("ask failed: %w", err)
	}
}
