package health

import (
	"context"

	"github.com/kailas-cloud/drugfacts/internal/usecase/retrieve"
)

// Corpus exposes the snapshot currently being served.
type Corpus interface {
	Snapshot() *retrieve.Snapshot
}

// LLMChecker checks answer composer availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger checks answer cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
