package drugfacts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/config"
	"github.com/kailas-cloud/drugfacts/internal/corpus"
	dbRedis "github.com/kailas-cloud/drugfacts/internal/db/redis"
	"github.com/kailas-cloud/drugfacts/internal/domain"
	"github.com/kailas-cloud/drugfacts/internal/domain/drug"
	"github.com/kailas-cloud/drugfacts/internal/domain/search/result"
	domusage "github.com/kailas-cloud/drugfacts/internal/domain/usage"
	"github.com/kailas-cloud/drugfacts/internal/metrics"
	"github.com/kailas-cloud/drugfacts/internal/repository/answercache"
	budgetRepo "github.com/kailas-cloud/drugfacts/internal/repository/budget"
	openaiComp "github.com/kailas-cloud/drugfacts/internal/transport/openai"
	answeruc "github.com/kailas-cloud/drugfacts/internal/usecase/answer"
	"github.com/kailas-cloud/drugfacts/internal/usecase/budget"
	healthuc "github.com/kailas-cloud/drugfacts/internal/usecase/health"
	retrieveuc "github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
	usageuc "github.com/kailas-cloud/drugfacts/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces for substitution in tests.
type retrievalUseCase interface {
	Retrieve(ctx context.Context, query string, k int) []result.Result
	Snapshot() *retrieveuc.Snapshot
	Swap(snap *retrieveuc.Snapshot) *retrieveuc.Snapshot
}

type answerUseCase interface {
	Available() bool
	Ask(ctx context.Context, question string) (answeruc.Answer, error)
}

// Client is the drugfacts SDK entry point. It is safe for concurrent use.
type Client struct {
	corpusPath   string
	store        *dbRedis.Store
	retrievalSvc retrievalUseCase
	answerSvc    answerUseCase
	healthSvc    healthUseCase
	usageSvc     *usageuc.Service
	obs          *observer
}

// New loads the corpus, builds the index and wires the optional composer and cache.
// The provided context is used for the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	records, err := loadRecords(cfg)
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store *dbRedis.Store
	if len(cfg.cacheAddrs) > 0 {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("drugfacts: cache not ready: %w", err)
		}
	}

	return wireClient(ctx, cfg, records, store, obs), nil
}

func loadRecords(cfg *clientConfig) ([]drug.Record, error) {
	switch {
	case cfg.corpusPath != "" && cfg.records != nil:
		return nil, errors.New("drugfacts: use either WithCorpusFile or WithRecords, not both")
	case cfg.corpusPath != "":
		records, err := corpus.Load(cfg.corpusPath)
		if err != nil {
			return nil, fmt.Errorf("drugfacts: %w", err)
		}
		return records, nil
	case cfg.records != nil:
		return toDomainRecords(cfg.records), nil
	default:
		return nil, errors.New("drugfacts: corpus required (use WithCorpusFile or WithRecords)")
	}
}

func createStore(cfg *clientConfig) (*dbRedis.Store, error) {
	switch cfg.cacheDriver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.cacheAddrs,
			Password:   cfg.cachePassword,
			ClientName: "drugfacts-sdk",
		})
		if err != nil {
			return nil, fmt.Errorf("drugfacts: create %s store: %w", cfg.cacheDriver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("drugfacts: unknown cache driver %q", cfg.cacheDriver)
	}
}

func wireClient(ctx context.Context, cfg *clientConfig, records []drug.Record, store *dbRedis.Store, obs *observer) *Client {
	snap := retrieveuc.NewSnapshot(records)
	retrievalSvc := retrieveuc.New(retrieveuc.NewHolder(snap))
	obs.setDocuments(snap.Len())

	// Pass nil interfaces (not typed nil pointers) for absent dependencies.
	var (
		composer   domain.Composer
		llmChecker healthuc.LLMChecker
		cache      healthuc.CachePinger
		model      = cfg.model
	)
	switch {
	case cfg.composer != nil:
		composer = &composerAdapter{inner: cfg.composer}
		model = "custom"
	case cfg.apiKey != "":
		base := openaiComp.NewComposer(&openaiComp.Config{
			APIKey:            cfg.apiKey,
			BaseURL:           cfg.baseURL,
			Model:             cfg.model,
			Temperature:       cfg.temperature,
			Timeout:           cfg.llmTimeout,
			RequestsPerSecond: cfg.rps,
			Logger:            zap.NewNop(),
		})
		composer = base
		llmChecker = base
	}

	var usageReader usageuc.BudgetReader
	if composer != nil && (cfg.dailyTokens > 0 || cfg.monthlyTokens > 0) {
		action := budget.ActionWarn
		if cfg.rejectOverrun {
			action = budget.ActionReject
		}
		tracker := budget.NewTracker(model, cfg.dailyTokens, cfg.monthlyTokens, action, zap.NewNop())
		if store != nil {
			tracker.WithStore(ctx, budgetRepo.New(store, budgetRepo.Options{}))
		}
		usageReader = tracker
		composer = budget.NewComposer(composer, model, tracker, zap.NewNop())
	}

	if composer != nil && store != nil {
		cache = store
		composer = answercache.New(composer, store, answercache.Options{
			Model:       model,
			Temperature: cfg.temperature,
			TTL:         cfg.cacheTTL,
		}, metrics.AnswerCacheTotal, zap.NewNop())
	}

	systemPrompt := cfg.systemPrompt
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}

	return &Client{
		corpusPath:   cfg.corpusPath,
		store:        store,
		retrievalSvc: retrievalSvc,
		answerSvc: answeruc.New(retrievalSvc, composer, answeruc.Options{
			TopK:         cfg.topK,
			SystemPrompt: systemPrompt,
		}),
		healthSvc: healthuc.New(retrievalSvc, llmChecker, cache),
		usageSvc:  usageuc.New(usageReader),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Documents returns the number of records currently served.
func (c *Client) Documents() int {
	return c.retrievalSvc.Snapshot().Len()
}

// Search ranks the corpus against query and returns at most k hits with a
// positive score. It never fails; degenerate queries yield no hits.
func (c *Client) Search(ctx context.Context, query string, k int) SearchResult {
	start := time.Now()
	results := c.retrievalSvc.Retrieve(ctx, query, k)
	c.obs.observe("search", start, nil, "k", k, "hits", len(results))

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			Name:        r.Record().DisplayName(),
			Score:       r.Score(),
			LastUpdated: r.Record().LastUpdated(),
			Text:        r.Record().Text(),
		}
	}
	return SearchResult{
		Query:   query,
		Hits:    hits,
		Context: retrieveuc.FormatContext(results),
	}
}

// CanAnswer reports whether a composer is configured.
func (c *Client) CanAnswer() bool {
	return c.answerSvc.Available()
}

// Ask answers question from the top ranked records.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err, "cached", ans.Cached) }()

	a, err := c.answerSvc.Ask(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return Answer{
		Question:    a.Question,
		Answer:      a.Answer,
		Sources:     a.Sources,
		LastUpdated: a.LastUpdated,
		Cached:      a.Cached,
	}, nil
}

// Usage reports token consumption for period ("day" or "month", empty means day).
// Without WithTokenBudget the budget is unlimited and nothing is counted.
func (c *Client) Usage(ctx context.Context, period string) (Usage, error) {
	p, ok := domusage.ParsePeriod(period)
	if !ok {
		return Usage{}, fmt.Errorf("drugfacts: unknown usage period %q", period)
	}
	report := c.usageSvc.GetReport(ctx, p)
	b := report.Budget()
	return Usage{
		Period:          string(report.Period()),
		TokensUsed:      report.TokensUsed(),
		TokensLimit:     b.TokensLimit(),
		TokensRemaining: b.TokensRemaining(),
		Exhausted:       b.IsExhausted(),
		ResetsAt:        time.UnixMilli(b.ResetsAt()).UTC(),
	}, nil
}

// Reload re-reads the corpus file and atomically swaps in the rebuilt index.
// On failure the current index keeps serving.
func (c *Client) Reload(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reload", start, err) }()

	if c.corpusPath == "" {
		return ErrNoCorpusFile
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	records, err := corpus.Load(c.corpusPath)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	snap := retrieveuc.NewSnapshot(records)
	c.retrievalSvc.Swap(snap)
	c.obs.setDocuments(snap.Len())
	return nil
}

func toDomainRecords(in []Record) []drug.Record {
	out := make([]drug.Record, len(in))
	for i, r := range in {
		out[i] = drug.New(drug.Fields{
			GenericName: r.GenericName,
			BrandNames:  r.BrandNames,
			Uses:        r.Uses,
			Dosage:      r.Dosage,
			Warnings:    r.Warnings,
			SideEffects: r.SideEffects,
			Sources:     r.Sources,
			LastUpdated: r.LastUpdated,
		})
	}
	return out
}
