package retrieve

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
	"github.com/kailas-cloud/drugfacts/internal/retrieval"
)

// Snapshot binds a built index to the records it was built from.
// Immutable once constructed.
type Snapshot struct {
	records     []drug.Record
	index       *retrieval.Index
	fingerprint string
	builtAt     time.Time
}

// NewSnapshot renders every record, builds the index and fingerprints the corpus.
func NewSnapshot(records []drug.Record) *Snapshot {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text()
	}
	return &Snapshot{
		records:     append([]drug.Record(nil), records...),
		index:       retrieval.NewIndex(texts),
		fingerprint: fingerprint(texts),
		builtAt:     time.Now(),
	}
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.records) }

// Fingerprint is a hex sha256 over the rendered record texts.
func (s *Snapshot) Fingerprint() string { return s.fingerprint }

// BuiltAt returns the build time.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Records returns a copy of the records in corpus order.
func (s *Snapshot) Records() []drug.Record {
	return append([]drug.Record(nil), s.records...)
}

// Retrieve returns up to k records ranked by similarity to query.
func (s *Snapshot) Retrieve(query string, k int) []result.Result {
	hits := s.index.Search(query, k)
	if len(hits) == 0 {
		return nil
	}
	out := make([]result.Result, len(hits))
	for i, h := range hits {
		out[i] = result.New(s.records[h.Doc], h.Score)
	}
	return out
}

func fingerprint(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Holder keeps the current snapshot. Safe for concurrent use.
type Holder struct {
	current atomic.Pointer[Snapshot]
}

// NewHolder returns a holder serving snap.
func NewHolder(snap *Snapshot) *Holder {
	h := &Holder{}
	h.current.Store(snap)
	return h
}

// Load returns the current snapshot.
func (h *Holder) Load() *Snapshot { return h.current.Load() }

// Swap installs snap and returns the previous snapshot.
func (h *Holder) Swap(snap *Snapshot) *Snapshot { return h.current.Swap(snap) }
