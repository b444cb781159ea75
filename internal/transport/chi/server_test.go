package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
	answeruc "github.com/kailas-cloud/drugfacts/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/drugfacts/internal/usecase/health"
	retrieveuc "github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
)

// --- Mocks ---

type mockComposer struct {
	composeFn func(ctx context.Context, messages []domain.Message) (domain.Completion, error)
}

func (m *mockComposer) Compose(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	if m.composeFn != nil {
		return m.composeFn(ctx, messages)
	}
	return domain.Completion{Content: "grounded answer"}, nil
}

type mockLLMChecker struct{ err error }

func (m *mockLLMChecker) HealthCheck(context.Context) error { return m.err }

// --- Helpers ---

func records() []drug.Record {
	return []drug.Record{
		drug.New(drug.Fields{
			GenericName: "acetaminophen",
			BrandNames:  []string{"Tylenol", "Panadol"},
			Uses:        "pain and fever relief",
			Sources:     []string{"FDA"},
			LastUpdated: "2024-01-10",
		}),
		drug.New(drug.Fields{
			GenericName: "amoxicillin",
			Uses:        "antibiotic for bacterial infections",
			Sources:     []string{"NIH"},
			LastUpdated: "2023-11-05",
		}),
	}
}

type fixture struct {
	handler   http.Handler
	retrieval *retrieveuc.Service
}

func newFixture(t *testing.T, composer answeruc.Composer, llm healthuc.LLMChecker) fixture {
	t.Helper()
	ret := retrieveuc.New(retrieveuc.NewHolder(retrieveuc.NewSnapshot(records())))
	answers := answeruc.New(ret, composer, answeruc.Options{TopK: 3, SystemPrompt: "safety"})
	health := healthuc.New(ret, llm, nil)
	srv := NewServer(answers, ret, health, 3, zap.NewNop())
	return fixture{handler: srv.Router(), retrieval: ret}
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, http.NoBody)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return e
}

// --- Tests ---

func TestAsk_Success(t *testing.T) {
	var got []domain.Message
	f := newFixture(t, &mockComposer{composeFn: func(_ context.Context, m []domain.Message) (domain.Completion, error) {
		got = m
		return domain.Completion{Content: "Amoxicillin is an antibiotic. Not medical advice."}, nil
	}}, nil)

	rr := do(t, f.handler, "POST", "/ask", `{"question":"what antibiotic treats infections?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp answerResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Question != "what antibiotic treats infections?" {
		t.Errorf("unexpected question %q", resp.Question)
	}
	if !strings.Contains(resp.Answer, "antibiotic") {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if len(resp.Sources) == 0 || resp.Sources[0] != "amoxicillin" {
		t.Errorf("unexpected sources %v", resp.Sources)
	}
	if len(resp.LastUpdated) != len(resp.Sources) {
		t.Errorf("sources and last_updated must align: %v / %v", resp.Sources, resp.LastUpdated)
	}
	if len(got) != 3 || !strings.HasPrefix(got[1].Content, "Grounding documents:\n[Relevance: ") {
		t.Errorf("unexpected prompt %+v", got)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestAsk_EmptyArraysNotNull(t *testing.T) {
	f := newFixture(t, &mockComposer{}, nil)

	rr := do(t, f.handler, "POST", "/ask", `{"question":"zzz qqq"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"sources":[]`) || !strings.Contains(rr.Body.String(), `"last_updated":[]`) {
		t.Errorf("expected empty arrays, got %s", rr.Body.String())
	}
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"quota", fmt.Errorf("llm API error 429: %w", domain.ErrLLMQuotaExceeded), http.StatusTooManyRequests, codeQuotaExceeded},
		{"rate limit", domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited},
		{"provider", fmt.Errorf("llm API error 500: boom: %w", domain.ErrLLMProviderError), http.StatusBadGateway, codeProviderError},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, codeInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, &mockComposer{composeFn: func(context.Context, []domain.Message) (domain.Completion, error) {
				return domain.Completion{}, tc.err
			}}, nil)

			rr := do(t, f.handler, "POST", "/ask", `{"question":"fever"}`)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rr.Code)
			}
			e := decodeError(t, rr)
			if e.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, e.Code)
			}
			if strings.Contains(e.Message, "boom") || strings.Contains(e.Message, "disk") {
				t.Errorf("internal details leaked: %q", e.Message)
			}
		})
	}
}

func TestAsk_InvalidInput(t *testing.T) {
	f := newFixture(t, &mockComposer{}, nil)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"question":`, codeBadRequest},
		{"blank question", `{"question":"   "}`, codeInvalidQuestion},
		{"missing question", `{}`, codeInvalidQuestion},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, f.handler, "POST", "/ask", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if e := decodeError(t, rr); e.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, e.Code)
			}
		})
	}
}

func TestAsk_BodyTooLarge(t *testing.T) {
	f := newFixture(t, &mockComposer{}, nil)
	body := `{"question":"` + strings.Repeat("a", maxBodyBytes+1) + `"}`

	rr := do(t, f.handler, "POST", "/ask", body)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
}

func TestAsk_ComposerUnavailable(t *testing.T) {
	f := newFixture(t, nil, nil)

	rr := do(t, f.handler, "POST", "/ask", `{"question":"fever"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != codeComposerUnavailable {
		t.Errorf("expected code %q, got %q", codeComposerUnavailable, e.Code)
	}
	if !strings.Contains(e.Message, "DEEPSEEK_API_KEY") {
		t.Errorf("expected operator hint, got %q", e.Message)
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t, nil, nil)

	rr := do(t, f.handler, "GET", "/search?q=fever+relief&k=1", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Query != "fever relief" {
		t.Errorf("unexpected query %q", resp.Query)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Name != "acetaminophen (brands: Tylenol, Panadol)" {
		t.Errorf("unexpected name %q", resp.Results[0].Name)
	}
	if resp.Results[0].Score <= 0 || resp.Results[0].Score > 1 {
		t.Errorf("score out of range %f", resp.Results[0].Score)
	}
	if resp.Results[0].LastUpdated != "2024-01-10" {
		t.Errorf("unexpected last_updated %q", resp.Results[0].LastUpdated)
	}
	if !strings.HasPrefix(resp.Context, "[Relevance: ") {
		t.Errorf("unexpected context %q", resp.Context)
	}
}

func TestSearch_NoMatchesIsEmptyList(t *testing.T) {
	f := newFixture(t, nil, nil)

	rr := do(t, f.handler, "GET", "/search?q=zzz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"results":[]`) {
		t.Errorf("expected empty results array, got %s", rr.Body.String())
	}
}

func TestSearch_BadParams(t *testing.T) {
	f := newFixture(t, nil, nil)

	for _, target := range []string{"/search", "/search?q=+", "/search?q=fever&k=0", "/search?q=fever&k=abc", "/search?q=fever&k=51"} {
		t.Run(target, func(t *testing.T) {
			rr := do(t, f.handler, "GET", target, "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestSearch_SeesSwappedCorpus(t *testing.T) {
	f := newFixture(t, nil, nil)

	extra := append(records(), drug.New(drug.Fields{GenericName: "loratadine", Uses: "allergy relief"}))
	f.retrieval.Swap(retrieveuc.NewSnapshot(extra))

	rr := do(t, f.handler, "GET", "/search?q=allergy", "")
	if !strings.Contains(rr.Body.String(), "loratadine") {
		t.Errorf("expected swapped corpus to be served, got %s", rr.Body.String())
	}
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t, nil, nil)
	rr := do(t, f.handler, "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Checks["corpus"] != "ok" || resp.Documents != 2 {
		t.Errorf("unexpected health %+v", resp)
	}

	down := newFixture(t, &mockComposer{}, &mockLLMChecker{err: errors.New("timeout")})
	rr = do(t, down.handler, "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"llm":"error"`) {
		t.Errorf("expected llm error, got %s", rr.Body.String())
	}
}

func TestIndexAndMetrics(t *testing.T) {
	f := newFixture(t, nil, nil)

	rr := do(t, f.handler, "GET", "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), `fetch("/ask"`) {
		t.Error("landing page should post to /ask")
	}

	rr = do(t, f.handler, "GET", "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "drugfacts_http_requests_total") {
		t.Error("expected http metrics to be exported")
	}
}

func TestRouting_NotFoundAndMethod(t *testing.T) {
	f := newFixture(t, nil, nil)

	if rr := do(t, f.handler, "GET", "/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
	if rr := do(t, f.handler, "GET", "/ask", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != codeInternalError {
		t.Errorf("unexpected code %q", e.Code)
	}
}

func TestSafeDomainMessage(t *testing.T) {
	if got := safeDomainMessage(fmt.Errorf("x: %w", domain.ErrRateLimited)); got != domain.ErrRateLimited.Error() {
		t.Errorf("unexpected message %q", got)
	}
	if got := safeDomainMessage(errors.New("secret")); got != "internal error" {
		t.Errorf("unexpected message %q", got)
	}
}
