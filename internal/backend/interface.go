// Package backend assembles the ledger service from configuration: the
// persister behind the store, the optional event publisher and the
// dashboard cache.
package backend

import (
	"context"
	"time"

	"moneymanager/internal/api"
	"moneymanager/internal/cache"
	"moneymanager/internal/ledger"
	"moneymanager/internal/services"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// BackendResult contains the wired service and what the server needs next
// to it. Close releases everything the factory opened.
type BackendResult struct {
	Service   *services.LedgerService
	Dashboard cache.Cache[api.DashboardSummary]
	Checks    map[string]ReadinessCheck
}

func (r *BackendResult) Close() error {
	return r.Service.Close()
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the ledger service described by config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)

	// OpenStore opens the persisted ledger without publisher or cache, for
	// processes that only read it.
	OpenStore(ctx context.Context, config Config) (*ledger.Store, CleanupFunc, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Persistence
	Type          BackendType
	SQLiteDBPath  string
	DataDirectory string
	SeedSample    bool

	// Events (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Dashboard cache; Redis when RedisURL is set
	RedisURL string
	CacheTTL time.Duration
}

// BackendType represents the type of persister
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
