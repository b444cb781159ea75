package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/logger"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest          = "bad_request"
	codeInvalidQuestion     = "invalid_question"
	codeRateLimited         = "rate_limited"
	codeQuotaExceeded       = "llm_quota_exceeded"
	codeProviderError       = "llm_provider_error"
	codeComposerUnavailable = "composer_unavailable"
	codeInternalError       = "internal_error"
)

const composerUnavailableHint = "DEEPSEEK_API_KEY is required for generation. " +
	"Please set the DEEPSEEK_API_KEY environment variable."

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidQuestion, http.StatusBadRequest, codeInvalidQuestion),
		// Quota before rate limit: both surface as 429 but carry different codes.
		sentinelHandler(domain.ErrLLMQuotaExceeded, http.StatusTooManyRequests, codeQuotaExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrComposerUnavailable, http.StatusInternalServerError, codeComposerUnavailable),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrComposerUnavailable) {
		return composerUnavailableHint
	}
	sentinels := []error{
		domain.ErrInvalidQuestion,
		domain.ErrLLMQuotaExceeded,
		domain.ErrRateLimited,
		domain.ErrLLMProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
