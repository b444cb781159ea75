package answercache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/drugfacts/internal/db"
	"github.com/kailas-cloud/drugfacts/internal/domain"
)

type mockComposer struct {
	result domain.Completion
	err    error
	calls  int
}

func (m *mockComposer) Compose(_ context.Context, _ []domain.Message) (domain.Completion, error) {
	m.calls++
	return m.result, m.err
}

// mockKVStore implements the consumer interface for tests.
// Without fns it behaves as a map-backed store.
type mockKVStore struct {
	getFn   func(ctx context.Context, key string) ([]byte, error)
	setFn   func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	data    map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	if m.data == nil {
		m.data = map[string][]byte{}
		m.ttls = map[string]time.Duration{}
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.data, key)
	return nil
}

func newTestCachedComposer(t *testing.T, inner *mockComposer) (*CachedComposer, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	cc := New(inner, ms, Options{Model: "deepseek-chat", Temperature: 0.2, TTL: time.Hour}, nil, zap.NewNop())
	return cc, ms
}

func messages(question string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: "safety"},
		{Role: domain.RoleSystem, Content: "Grounding documents:\n"},
		{Role: domain.RoleUser, Content: question},
	}
}
