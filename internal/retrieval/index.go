package retrieval

import (
	"math"
	"slices"
)

// Hit is a ranked match: the position of the document in the build input and
// its cosine similarity to the query.
type Hit struct {
	Doc   int
	Score float64
}

// Index is an immutable TF-IDF vector space over a fixed document collection.
type Index struct {
	df      map[string]int
	idf     map[string]float64
	vectors []sparseVector
}

// sparseVector keeps its terms sorted so that floating point sums are
// accumulated in the same order on every build.
type sparseVector struct {
	terms   []string
	weights map[string]float64
	norm    float64
}

// NewIndex tokenizes texts and builds document frequencies, smoothed IDF
// weights and one tf-idf vector per text. Text order defines document identity.
func NewIndex(texts []string) *Index {
	tokenized := make([][]string, len(texts))
	df := make(map[string]int)
	for i, text := range texts {
		tokens := Tokenize(text)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	n := float64(len(texts))
	idf := make(map[string]float64, len(df))
	for term, freq := range df {
		idf[term] = math.Log((1+n)/(1+float64(freq))) + 1
	}

	idx := &Index{df: df, idf: idf, vectors: make([]sparseVector, len(texts))}
	for i, tokens := range tokenized {
		idx.vectors[i] = idx.vectorize(tokens)
	}
	return idx
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int { return len(idx.vectors) }

// DocumentFrequency returns how many documents contain token at least once.
func (idx *Index) DocumentFrequency(token string) int { return idx.df[token] }

// IDF returns the inverse document frequency of token, or 0 if it never
// occurs in the collection.
func (idx *Index) IDF(token string) float64 { return idx.idf[token] }

// Search ranks every document by cosine similarity to query and returns at
// most k hits with a strictly positive score, best first. Equal scores keep
// document insertion order. Degenerate input (blank query, k <= 0, empty
// index) yields an empty result, never an error.
func (idx *Index) Search(query string, k int) []Hit {
	if k <= 0 || len(idx.vectors) == 0 {
		return nil
	}
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	q := idx.vectorize(tokens)
	hits := make([]Hit, len(idx.vectors))
	for i := range idx.vectors {
		hits[i] = Hit{Doc: i, Score: cosine(q, idx.vectors[i])}
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]Hit, 0, k)
	for _, h := range hits[:k] {
		if h.Score <= 0 {
			continue
		}
		out = append(out, h)
	}
	return out
}

// vectorize weighs tokens by (count / total) * idf using the build-time IDF
// table. Tokens unknown to the collection get weight 0.
func (idx *Index) vectorize(tokens []string) sparseVector {
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	total := float64(len(tokens))
	if total == 0 {
		total = 1
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	weights := make(map[string]float64, len(counts))
	var sumSq float64
	for _, term := range terms {
		w := (float64(counts[term]) / total) * idx.idf[term]
		weights[term] = w
		sumSq += w * w
	}
	return sparseVector{terms: terms, weights: weights, norm: math.Sqrt(sumSq)}
}

// cosine returns the cosine similarity of q and d, or 0 when either has zero
// norm. The dot product walks q's terms, so pass the query first. The result
// is clamped to 1 to absorb rounding overshoot.
func cosine(q, d sparseVector) float64 {
	if q.norm == 0 || d.norm == 0 {
		return 0
	}
	var dot float64
	for _, term := range q.terms {
		if v, ok := d.weights[term]; ok {
			dot += q.weights[term] * v
		}
	}
	sim := dot / (q.norm * d.norm)
	if sim > 1 {
		return 1
	}
	return sim
}
