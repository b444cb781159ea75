package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status    Status
	Checks    map[string]CheckResult
	Documents int
	Corpus    string // fingerprint of the served corpus
}

// Service coordinates health checks.
type Service struct {
	corpus Corpus
	llm    LLMChecker
	cache  CachePinger
}

// New creates a Service. llm and cache can be nil when not configured.
func New(corpus Corpus, llm LLMChecker, cache CachePinger) *Service {
	return &Service{corpus: corpus, llm: llm, cache: cache}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	var r Report

	if snap := s.corpus.Snapshot(); snap == nil {
		checks["corpus"] = CheckError
	} else {
		checks["corpus"] = CheckOK
		r.Documents = snap.Len()
		r.Corpus = snap.Fingerprint()
	}

	if s.llm != nil {
		checks["llm"] = result(s.llm.HealthCheck(ctx))
	}
	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}

	r.Status = Healthy
	for _, v := range checks {
		if v == CheckError {
			r.Status = Degraded
			break
		}
	}
	r.Checks = checks

	return r
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
