package retrieve

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
)

func sampleRecords() []drug.Record {
	return []drug.Record{
		drug.New(drug.Fields{
			GenericName: "acetaminophen",
			BrandNames:  []string{"Tylenol"},
			Uses:        "pain and fever relief",
			Dosage:      "500 mg every 6 hours",
			Warnings:    "liver damage at high doses",
			SideEffects: "nausea",
			Sources:     []string{"FDA label"},
			LastUpdated: "2024-01-10",
		}),
		drug.New(drug.Fields{
			GenericName: "ibuprofen",
			Uses:        "pain, inflammation and fever relief",
			Dosage:      "200 mg every 4 hours",
			Warnings:    "stomach bleeding",
			SideEffects: "heartburn",
			Sources:     []string{"FDA label"},
			LastUpdated: "2024-02-01",
		}),
		drug.New(drug.Fields{
			GenericName: "amoxicillin",
			BrandNames:  []string{"Amoxil"},
			Uses:        "antibiotic for bacterial infections",
			Dosage:      "500 mg every 8 hours",
			Warnings:    "penicillin allergy",
			SideEffects: "diarrhea",
			Sources:     []string{"NIH"},
			LastUpdated: "2023-11-05",
		}),
	}
}

func TestSnapshot_Retrieve(t *testing.T) {
	snap := NewSnapshot(sampleRecords())
	if snap.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", snap.Len())
	}

	results := snap.Retrieve("antibiotic for infections", 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := results[0].Record().GenericName(); got != "amoxicillin" {
		t.Errorf("expected amoxicillin, got %s", got)
	}
	if s := results[0].Score(); s <= 0 || s > 1 {
		t.Errorf("score out of range: %f", s)
	}
}

func TestSnapshot_RetrieveDegenerate(t *testing.T) {
	snap := NewSnapshot(sampleRecords())
	if r := snap.Retrieve("", 3); r != nil {
		t.Errorf("empty query: expected nil, got %v", r)
	}
	if r := snap.Retrieve("fever", 0); r != nil {
		t.Errorf("k=0: expected nil, got %v", r)
	}
	if r := snap.Retrieve("zzz", 3); r != nil {
		t.Errorf("unknown token: expected nil, got %v", r)
	}
	if r := NewSnapshot(nil).Retrieve("fever", 3); r != nil {
		t.Errorf("empty corpus: expected nil, got %v", r)
	}
}

func TestSnapshot_Fingerprint(t *testing.T) {
	a := NewSnapshot(sampleRecords())
	b := NewSnapshot(sampleRecords())
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("same corpus should fingerprint identically")
	}
	if len(a.Fingerprint()) != 64 {
		t.Errorf("expected hex sha256, got %q", a.Fingerprint())
	}

	c := NewSnapshot(sampleRecords()[:2])
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("different corpora should differ")
	}
}

func TestFormatContext(t *testing.T) {
	snap := NewSnapshot(sampleRecords())
	results := snap.Retrieve("antibiotic for infections", 1)

	ctx := FormatContext(results)
	if !strings.HasPrefix(ctx, "[Relevance: ") {
		t.Errorf("missing relevance header: %q", ctx)
	}
	if !strings.Contains(ctx, "amoxicillin") {
		t.Errorf("missing record text: %q", ctx)
	}
	if !strings.Contains(ctx, "]\nName: amoxicillin (brands: Amoxil)\n") {
		t.Errorf("header must be followed by record text: %q", ctx)
	}
}

func TestFormatContext_Separator(t *testing.T) {
	recs := sampleRecords()
	results := []result.Result{result.New(recs[0], 0.5), result.New(recs[1], 0.25)}

	want := "[Relevance: 0.50]\n" + recs[0].Text() + "\n\n[Relevance: 0.25]\n" + recs[1].Text()
	if got := FormatContext(results); got != want {
		t.Errorf("FormatContext =\n%q\nwant\n%q", got, want)
	}
	if got := FormatContext(nil); got != "" {
		t.Errorf("expected empty context, got %q", got)
	}
}

func TestSourcesAndLastUpdated(t *testing.T) {
	recs := sampleRecords()
	results := []result.Result{result.New(recs[2], 0.9), result.New(recs[0], 0.1)}

	src := Sources(results)
	if len(src) != 2 || src[0] != "amoxicillin (brands: Amoxil)" || src[1] != "acetaminophen (brands: Tylenol)" {
		t.Errorf("unexpected sources %v", src)
	}
	lu := LastUpdated(results)
	if len(lu) != 2 || lu[0] != "2023-11-05" || lu[1] != "2024-01-10" {
		t.Errorf("unexpected last_updated %v", lu)
	}
}

func TestService_Swap(t *testing.T) {
	svc := New(NewHolder(NewSnapshot(sampleRecords()[:2])))

	if r := svc.Retrieve(context.Background(), "antibiotic", 1); r != nil {
		t.Fatalf("antibiotic should be unknown before swap, got %v", r)
	}

	old := svc.Swap(NewSnapshot(sampleRecords()))
	if old.Len() != 2 {
		t.Errorf("expected previous snapshot of 2, got %d", old.Len())
	}
	if svc.Snapshot().Len() != 3 {
		t.Errorf("expected current snapshot of 3, got %d", svc.Snapshot().Len())
	}

	r := svc.Retrieve(context.Background(), "antibiotic", 1)
	if len(r) != 1 || r[0].Record().GenericName() != "amoxicillin" {
		t.Errorf("expected amoxicillin after swap, got %v", r)
	}
}

func TestService_ConcurrentSwapAndRetrieve(t *testing.T) {
	small := NewSnapshot(sampleRecords()[:1])
	full := NewSnapshot(sampleRecords())
	svc := New(NewHolder(small))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if i%2 == 0 {
					if j%2 == 0 {
						svc.Swap(full)
					} else {
						svc.Swap(small)
					}
					continue
				}
				for _, r := range svc.Retrieve(context.Background(), "fever relief", 3) {
					if r.Score() <= 0 || r.Score() > 1 {
						t.Errorf("score out of range: %f", r.Score())
					}
				}
			}
		}(i)
	}
	wg.Wait()
}
