package backend

import (
	"context"
	"fmt"
	"time"

	"moneymanager/internal/amqp"
	"moneymanager/internal/api"
	"moneymanager/internal/cache"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
	"moneymanager/internal/seed"
	"moneymanager/internal/services"
	"moneymanager/internal/storage"
	"moneymanager/internal/storage/memory"
)

const (
	dashboardCacheSize   = 100
	dashboardCachePrefix = "moneymanager:dashboard"
	cacheCleanupInterval = time.Minute
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		now:    time.Now,
	}
}

// CreateBackend implements Factory.CreateBackend. AMQP and Redis are
// optional: when either is unreachable the backend starts without it.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	checks := make(map[string]ReadinessCheck)
	store, closeStore, err := f.openStore(ctx, config, checks)
	if err != nil {
		return nil, err
	}
	closers := []func() error{closeStore}

	dashboard, closeCache := f.createCache(ctx, config, checks)
	closers = append(closers, closeCache)

	var publisher services.EventPublisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	f.logger.InfoContext(ctx, "Initialized ledger backend",
		"backend", config.Type,
		"amqp_enabled", publisher != nil,
		"redis_enabled", checks["redis"] != nil)

	return &BackendResult{
		Service:   services.NewLedgerService(store, publisher, f.logger, closers...),
		Dashboard: dashboard,
		Checks:    checks,
	}, nil
}

// OpenStore implements Factory.OpenStore
func (f *DefaultFactory) OpenStore(ctx context.Context, config Config) (*ledger.Store, CleanupFunc, error) {
	if err := config.Validate(); err != nil {
		return nil, nil, err
	}
	store, closeStore, err := f.openStore(ctx, config, nil)
	if err != nil {
		return nil, nil, err
	}
	return store, closeStore, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config, checks map[string]ReadinessCheck) (*ledger.Store, CleanupFunc, error) {
	var (
		persister ledger.Persister
		cleanup   CleanupFunc = func() error { return nil }
	)

	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		persister, cleanup = repo, repo.Close
		if checks != nil {
			checks["sqlite"] = repo.Ping
		}
		f.logger.InfoContext(ctx, "Initialized SQLite persister", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		dataDir := config.DataDirectory
		if dataDir == "" {
			dataDir = "data"
		}
		persister = memory.NewFromDir(dataDir)
		f.logger.InfoContext(ctx, "Initialized memory persister", "data_directory", dataDir)
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	dataset := ledger.Dataset{Accounts: seed.OpeningAccounts()}
	if config.SeedSample {
		dataset = seed.Sample(f.now())
	}

	store, err := ledger.New(ctx, ledger.Options{
		Categories: seed.DefaultCategories(),
		Persister:  persister,
		Seed:       dataset,
		Clock:      f.now,
		Logger:     f.logger,
	})
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}
	return store, cleanup, nil
}

func (f *DefaultFactory) createCache(ctx context.Context, config Config, checks map[string]ReadinessCheck) (cache.Cache[api.DashboardSummary], CleanupFunc) {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	if config.RedisURL != "" {
		client, err := cache.Dial(ctx, config.RedisURL)
		if err == nil {
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
			f.logger.InfoContext(ctx, "Initialized Redis dashboard cache", "ttl", ttl)
			return cache.NewRedisCache[api.DashboardSummary](client, dashboardCachePrefix, ttl, f.logger), client.Close
		}
		f.logger.WarnContext(ctx, "Failed to connect to Redis, using in-process cache", log.FieldError, err)
	}

	lru := cache.NewLRUCache[api.DashboardSummary](dashboardCacheSize, ttl)
	manager := cache.NewManager(f.logger)
	manager.Register(lru)
	manager.StartCleanup(cacheCleanupInterval)
	return lru, func() error {
		manager.Stop()
		return nil
	}
}
