// Package budget persists LLM token counters in Valkey/Redis so the budget
// survives restarts and is shared by every replica.
package budget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/drugfacts/internal/db"
)

// Default key lifetimes. A daily key must outlive its UTC day, a monthly key
// the longest month.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Options configures counter expiry. Zero values use the defaults.
type Options struct {
	DailyTTL   time.Duration
	MonthlyTTL time.Duration
}

// Store keeps one integer counter per key, laid out as
// <prefix>:<model>:daily:YYYY-MM-DD or <prefix>:<model>:monthly:YYYY-MM.
type Store struct {
	kv   kv
	opts Options
}

// New creates a counter store over kv.
func New(s kv, opts Options) *Store {
	if opts.DailyTTL <= 0 {
		opts.DailyTTL = DefaultDailyTTL
	}
	if opts.MonthlyTTL <= 0 {
		opts.MonthlyTTL = DefaultMonthlyTTL
	}
	return &Store{kv: s, opts: opts}
}

// IncrBy adds val to the counter. The expiry is set only once (EXPIRE NX)
// so later increments never extend it.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.kv.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("increment %s: %w", key, err)
	}
	if err := s.kv.Expire(ctx, key, s.ttl(key), true); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Get reads a counter. Missing or empty keys read as 0.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read %s: %w", key, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("read %s: counter is not an integer: %w", key, err)
	}
	return n, nil
}

// ttl picks the lifetime from the period segment before the date.
func (s *Store) ttl(key string) time.Duration {
	parts := strings.Split(key, ":")
	if len(parts) >= 2 && parts[len(parts)-2] == "daily" {
		return s.opts.DailyTTL
	}
	return s.opts.MonthlyTTL
}
