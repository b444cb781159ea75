package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval and corpus Prometheus metrics.
var (
	RetrievalDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "drugfacts",
			Name:      "retrieval_duration_seconds",
			Help:      "TF-IDF retrieval latency in seconds",
			Buckets:   []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "drugfacts",
			Name:      "retrieval_results",
			Help:      "Number of records returned per retrieval",
			Buckets:   []float64{0, 1, 2, 3, 5, 10},
		},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "drugfacts",
			Name:      "corpus_documents",
			Help:      "Number of records in the active corpus snapshot",
		},
	)

	CorpusReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "drugfacts",
			Name:      "corpus_reloads_total",
			Help:      "Corpus reload attempts",
		},
		[]string{"status"},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers the LLM, budget, cache, retrieval and corpus metrics.
// Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMRequestDuration)
	prometheus.MustRegister(LLMTokensTotal)
	prometheus.MustRegister(LLMErrorsTotal)
	prometheus.MustRegister(LLMBudgetTokensRemaining)
	prometheus.MustRegister(AnswerCacheTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(RetrievalResults)
	prometheus.MustRegister(CorpusDocuments)
	prometheus.MustRegister(CorpusReloadsTotal)
	domainMetricsRegistered = true
}
