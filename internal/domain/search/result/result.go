package result

import "github.com/kailas-cloud/drugfacts/internal/domain/drug"

// Result is a single retrieval hit: a corpus record and its relevance.
type Result struct {
	record drug.Record
	score  float64
}

// New creates a retrieval result.
func New(record drug.Record, score float64) Result {
	return Result{record: record, score: score}
}

// Record returns the matched drug record.
func (r Result) Record() drug.Record { return r.record }

// Score returns the cosine similarity in (0, 1].
func (r Result) Score() float64 { return r.score }
