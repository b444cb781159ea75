package drugfacts

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultBaseURL     = "https://api.deepseek.com"
	defaultModel       = "deepseek-chat"
	defaultTemperature = float32(0.2)
	defaultTopK        = 3
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusPath string
	records    []Record

	topK         int
	systemPrompt string

	composer    Composer
	apiKey      string
	baseURL     string
	model       string
	temperature float32
	llmTimeout  time.Duration
	rps         float64

	dailyTokens   int64
	monthlyTokens int64
	rejectOverrun bool

	cacheDriver   string // "valkey" or "redis"
	cacheAddrs    []string
	cachePassword string
	cacheTTL      time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		topK:        defaultTopK,
		baseURL:     defaultBaseURL,
		model:       defaultModel,
		temperature: defaultTemperature,
		llmTimeout:  45 * time.Second,
	}
}

// WithCorpusFile loads records from a JSON or YAML file. Reload re-reads it.
func WithCorpusFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusPath = path
	})
}

// WithRecords serves the given in-memory records instead of a file.
func WithRecords(records []Record) Option {
	return optionFunc(func(c *clientConfig) {
		c.records = records
	})
}

// WithTopK sets how many records ground an answer. Default: 3.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithSystemPrompt replaces the default safety template.
func WithSystemPrompt(prompt string) Option {
	return optionFunc(func(c *clientConfig) {
		c.systemPrompt = prompt
	})
}

// WithDeepSeek enables answer generation against the DeepSeek API.
func WithDeepSeek(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = defaultBaseURL
		c.model = defaultModel
	})
}

// WithOpenAICompatible enables answer generation against any OpenAI-compatible
// chat completion endpoint.
func WithOpenAICompatible(baseURL, model, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
		c.model = model
		c.apiKey = apiKey
	})
}

// WithTemperature sets the sampling temperature. Default: 0.2.
func WithTemperature(t float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = t
	})
}

// WithRateLimit caps outgoing LLM requests per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.rps = rps
	})
}

// WithTokenBudget caps LLM tokens per UTC day and month. Zero disables a cap.
// With reject set, Ask fails with ErrLLMQuotaExceeded once a cap is spent;
// otherwise the overrun is only logged. Counters persist in the cache when one is configured.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
		c.rejectOverrun = reject
	})
}

// WithComposer plugs a custom answer generator. It takes precedence over
// WithDeepSeek and WithOpenAICompatible.
func WithComposer(comp Composer) Option {
	return optionFunc(func(c *clientConfig) {
		c.composer = comp
	})
}

// WithValkeyCache caches generated answers in Valkey for ttl.
func WithValkeyCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithRedisCache caches generated answers in Redis for ttl.
func WithRedisCache(addr, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
