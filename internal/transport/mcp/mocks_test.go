package mcp

import (
	"context"

	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
	answeruc "github.com/kailas-cloud/drugfacts/internal/usecase/answer"
)

type mockSearcher struct {
	results []result.Result
	gotK    int
	gotQ    string
}

func (m *mockSearcher) Retrieve(_ context.Context, query string, k int) []result.Result {
	m.gotQ = query
	m.gotK = k
	if len(m.results) > k {
		return m.results[:k]
	}
	return m.results
}

type mockAnswerer struct {
	available bool
	answer    answeruc.Answer
	err       error
}

func (m *mockAnswerer) Available() bool { return m.available }

func (m *mockAnswerer) Ask(_ context.Context, question string) (answeruc.Answer, error) {
	if m.err != nil {
		return answeruc.Answer{}, m.err
	}
	ans := m.answer
	ans.Question = question
	return ans, nil
}

func sampleResults() []result.Result {
	return []result.Result{
		result.New(drug.New(drug.Fields{
			GenericName: "ibuprofen",
			BrandNames:  []string{"Advil"},
			Uses:        "pain and inflammation",
			LastUpdated: "2024-02-01",
		}), 0.82),
		result.New(drug.New(drug.Fields{
			GenericName: "naproxen",
			Uses:        "pain relief",
			LastUpdated: "2023-12-15",
		}), 0.41),
	}
}
