package chi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	domusage "github.com/kailas-cloud/drugfacts/internal/domain/usage"
	"github.com/kailas-cloud/drugfacts/internal/metrics"
	answeruc "github.com/kailas-cloud/drugfacts/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/drugfacts/internal/usecase/health"
	retrieveuc "github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
	usageuc "github.com/kailas-cloud/drugfacts/internal/usecase/usage"
)

const (
	maxBodyBytes = 64 << 10
	maxSearchK   = 50
)

//go:embed static/index.html
var landingPage []byte

// Server serves the drug Q&A HTTP API.
type Server struct {
	answers       *answeruc.Service
	retrieval     *retrieveuc.Service
	health        *healthuc.Service
	usage         *usageuc.Service
	topK          int
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. topK is the default k for /search.
func NewServer(
	answers *answeruc.Service,
	retrieval *retrieveuc.Service,
	health *healthuc.Service,
	topK int,
	logger *zap.Logger,
) *Server {
	if topK <= 0 {
		topK = 3
	}
	return &Server{
		answers:       answers,
		retrieval:     retrieval,
		health:        health,
		topK:          topK,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithUsage enables GET /usage backed by svc.
func (s *Server) WithUsage(svc *usageuc.Service) *Server {
	s.usage = svc
	return s
}

// Router builds the chi router with the middleware chain and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/", s.Index)
	r.Post("/ask", s.Ask)
	r.Get("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	if s.usage != nil {
		r.Get("/usage", s.GetUsage)
	}
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// Index handles GET / with the static question form.
func (s *Server) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(landingPage)
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBadRequest, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ans, err := s.answers.Ask(r.Context(), req.Question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if ans.Cached {
		w.Header().Set("X-Answer-Cache", "hit")
	}
	writeJSON(w, http.StatusOK, answerResponse{
		Question:    ans.Question,
		Answer:      ans.Answer,
		Sources:     nonNil(ans.Sources),
		LastUpdated: nonNil(ans.LastUpdated),
	})
}

// Search handles GET /search?q=...&k=... (retrieval only, no LLM call).
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter q is required")
		return
	}

	k := s.topK
	if raw := r.URL.Query().Get("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxSearchK {
			writeError(w, http.StatusBadRequest, codeBadRequest,
				"query parameter k must be an integer between 1 and "+strconv.Itoa(maxSearchK))
			return
		}
		k = v
	}

	results := s.retrieval.Retrieve(r.Context(), q, k)

	items := make([]searchResultItem, len(results))
	for i, res := range results {
		items[i] = searchResultItem{
			Name:        res.Record().DisplayName(),
			Score:       res.Score(),
			LastUpdated: res.Record().LastUpdated(),
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Query:   q,
		Results: items,
		Context: retrieveuc.FormatContext(results),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:    string(report.Status),
		Checks:    checks,
		Documents: report.Documents,
		Corpus:    report.Corpus,
	})
}

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query parameter period must be \"day\" or \"month\"")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	b := report.Budget()

	resp := usageResponse{
		Period:      string(report.Period()),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		TokensUsed:  report.TokensUsed(),
		Budget: budgetStatus{
			TokensLimit:     b.TokensLimit(),
			TokensRemaining: b.TokensRemaining(),
			Unlimited:       b.Unlimited(),
			IsExhausted:     b.IsExhausted(),
		},
	}
	if b.ResetsAt() > 0 {
		resetsAt := time.UnixMilli(b.ResetsAt()).UTC()
		resp.Budget.ResetsAt = &resetsAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
