package answercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/db"
	"github.com/kailas-cloud/drugfacts/internal/domain"
)

// DefaultKeyPrefix namespaces cached answers.
const DefaultKeyPrefix = "drugfacts:answer:"

// store is the consumer interface for the answer cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Options configure the cache key space and expiry.
type Options struct {
	// Model and Temperature are folded into the key so a config change never
	// serves answers generated under different settings.
	Model       string
	Temperature float32
	KeyPrefix   string
	TTL         time.Duration
}

// CachedComposer caches completions in a key-value store.
type CachedComposer struct {
	inner      domain.Composer
	store      store
	opts       Options
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.Composer,
	s store,
	opts Options,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedComposer {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}
	return &CachedComposer{
		inner:      inner,
		store:      s,
		opts:       opts,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

type entry struct {
	Content          string `json:"content"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// Compose returns a cached completion or calls the inner composer.
// Cache hit: Cached = true, token counts are those of the original call.
// Cache failures are logged and never fail the request.
func (c *CachedComposer) Compose(ctx context.Context, messages []domain.Message) (domain.Completion, error) {
	key := c.cacheKey(messages)

	if hit, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return hit, nil
	}

	c.incCache("miss")

	completion, err := c.inner.Compose(ctx, messages)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("compose: %w", err)
	}

	c.putToCache(ctx, key, completion)
	return completion, nil
}

func (c *CachedComposer) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedComposer) cacheKey(messages []domain.Message) string {
	h := sha256.New()
	h.Write([]byte(c.opts.Model))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(float64(c.opts.Temperature), 'g', -1, 32)))
	for _, m := range messages {
		h.Write([]byte{0})
		h.Write([]byte(m.Role))
		h.Write([]byte{0})
		h.Write([]byte(m.Content))
	}
	return c.opts.KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedComposer) getFromCache(ctx context.Context, key string) (domain.Completion, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached answer", zap.String("key", key), zap.Error(err))
		}
		return domain.Completion{}, false
	}
	if len(data) == 0 {
		return domain.Completion{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Dropping unreadable cached answer", zap.String("key", key), zap.Error(err))
		if err := c.store.Del(ctx, key); err != nil {
			c.logger.Warn("Failed to drop cached answer", zap.String("key", key), zap.Error(err))
		}
		return domain.Completion{}, false
	}

	return domain.Completion{
		Content:          e.Content,
		PromptTokens:     e.PromptTokens,
		CompletionTokens: e.CompletionTokens,
		TotalTokens:      e.TotalTokens,
		Cached:           true,
	}, true
}

func (c *CachedComposer) putToCache(ctx context.Context, key string, completion domain.Completion) {
	data, err := json.Marshal(entry{
		Content:          completion.Content,
		PromptTokens:     completion.PromptTokens,
		CompletionTokens: completion.CompletionTokens,
		TotalTokens:      completion.TotalTokens,
	})
	if err != nil {
		c.logger.Warn("Failed to encode answer for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.opts.TTL); err != nil {
		c.logger.Warn("Failed to cache answer", zap.String("key", key), zap.Error(err))
	}
}
