package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/config"
	"github.com/kailas-cloud/drugfacts/internal/corpus"
	dbRedis "github.com/kailas-cloud/drugfacts/internal/db/redis"
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


// app is the wired object graph shared by the subcommands.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	retrieval *retrieveuc.Service
	answers   *answeruc.Service
	health    *healthuc.Service
	usage     *usageuc.Service
	store     *dbRedis.Store
}

// buildApp is the composition root. withCache connects the answer cache when
// it is enabled; the search command never talks to the LLM and skips it.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger, withCache bool) (*app, error) {
	metrics.RegisterDomainMetrics()

	records, err := corpus.Load(cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}
	snap := retrieveuc.NewSnapshot(records)
	retrieval := retrieveuc.New(retrieveuc.NewHolder(snap))
	metrics.CorpusDocuments.Set(float64(snap.Len()))
	logger.Info("Corpus loaded",
		zap.String("path", cfg.Corpus.Path),
		zap.Int("documents", snap.Len()),
	)

	a := &app{cfg: cfg, logger: logger, retrieval: retrieval}

	// Pass nil interfaces (not typed nil pointers) for absent dependencies.
	var (
		composer   answeruc.Composer
		llmChecker healthuc.LLMChecker
		cache      healthuc.CachePinger
	)

	if cfg.LLMEnabled() {
		base := openaiComp.NewComposer(&openaiComp.Config{
			APIKey:            cfg.LLM.APIKey,
			BaseURL:           cfg.LLM.BaseURL,
			Model:             cfg.LLM.Model,
			Temperature:       *cfg.LLM.Temperature,
			Timeout:           time.Duration(cfg.LLM.TimeoutSec) * time.Second,
			RequestsPerSecond: cfg.LLM.RequestsPerSecond,
			Burst:             cfg.LLM.Burst,
			Logger:            logger,
		})
		llmChecker = base

		if withCache && cfg.Cache.Enabled {
			store, err := connectCache(ctx, cfg, logger)
			if err != nil {
				return nil, err
			}
			a.store = store
			cache = store
		}

		// Budget sits below the cache so cache hits are free.
		tracker := budget.NewTracker(base.Model(),
			cfg.LLM.Budget.DailyTokenLimit, cfg.LLM.Budget.MonthlyTokenLimit,
			budget.Action(cfg.LLM.Budget.Action), logger)
		if a.store != nil {
			tracker.WithStore(ctx, budgetRepo.New(a.store, budgetRepo.Options{}))
		}
		a.usage = usageuc.New(tracker)
		composer = budget.NewComposer(base, base.Model(), tracker, logger)

		if a.store != nil {
			composer = answercache.New(composer, a.store, answercache.Options{
				Model:       base.Model(),
				Temperature: base.Temperature(),
				KeyPrefix:   cfg.Cache.KeyPrefix,
				TTL:         time.Duration(cfg.Cache.TTLSec) * time.Second,
			}, metrics.AnswerCacheTotal, logger)
		}
		logger.Info("Answer composer configured",
			zap.String("base_url", cfg.LLM.BaseURL),
			zap.String("model", cfg.LLM.Model),
		)
	} else {
		logger.Warn("DEEPSEEK_API_KEY not set, /ask is disabled; retrieval still works")
	}

	a.answers = answeruc.New(retrieval, composer, answeruc.Options{
		TopK:         cfg.Retrieval.TopK,
		SystemPrompt: cfg.LLM.SystemPrompt,
	})
	a.health = healthuc.New(retrieval, llmChecker, cache)
	if a.usage == nil {
		a.usage = usageuc.New(nil)
	}
	return a, nil
}

func connectCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Cache.Addrs,
		Username:   cfg.Cache.Username,
		Password:   cfg.Cache.Password,
		DB:         cfg.Cache.DB,
		ClientName: "drugfacts",
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	logger.Info("Connected to answer cache",
		zap.String("driver", cfg.Cache.Driver),
		zap.Strings("addrs", cfg.Cache.Addrs),
	)
	return store, nil
}

// Close releases external connections.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
