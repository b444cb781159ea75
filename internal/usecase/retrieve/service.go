package retrieve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
	"github.com/kailas-cloud/drugfacts/internal/logger"
	"github.com/kailas-cloud/drugfacts/internal/metrics"
)

// Service answers retrieval queries against the current corpus snapshot.
type Service struct {
	holder *Holder
}

// New creates a retrieval service over holder.
func New(holder *Holder) *Service {
	return &Service{holder: holder}
}

// Snapshot returns the snapshot currently being served.
func (s *Service) Snapshot() *Snapshot { return s.holder.Load() }

// Swap installs a freshly built snapshot and updates the corpus gauge.
func (s *Service) Swap(snap *Snapshot) *Snapshot {
	old := s.holder.Swap(snap)
	metrics.CorpusDocuments.Set(float64(snap.Len()))
	return old
}

// Retrieve ranks the current snapshot against query. The snapshot is loaded
// once so a concurrent Swap never mixes two corpora within one call.
func (s *Service) Retrieve(ctx context.Context, query string, k int) []result.Result {
	snap := s.holder.Load()
	start := time.Now()
	results := snap.Retrieve(query, k)
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	metrics.RetrievalResults.Observe(float64(len(results)))

	logger.FromContext(ctx).Debug("retrieved",
		zap.Int("k", k),
		zap.Int("results", len(results)),
		zap.String("corpus", shortFingerprint(snap.Fingerprint())),
	)
	return results
}

// FormatContext renders results as grounding text for the composer:
// one "[Relevance: 0.00]" header plus record text per result, blank-line separated.
func FormatContext(results []result.Result) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("[Relevance: %.2f]\n%s", r.Score(), r.Record().Text())
	}
	return strings.Join(blocks, "\n\n")
}

// Sources returns display names in rank order.
func Sources(results []result.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Record().DisplayName()
	}
	return out
}

// LastUpdated returns last-updated markers in rank order.
func LastUpdated(results []result.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Record().LastUpdated()
	}
	return out
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
