// Package http serves the ledger as a JSON REST API under /api.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"moneymanager/internal/api"
	"moneymanager/internal/cache"
	"moneymanager/internal/core"
	"moneymanager/internal/log"
	"moneymanager/internal/middleware/ratelimit"
	"moneymanager/internal/middleware/security"
	"moneymanager/internal/middleware/trace"
)

// Ledger is the set of operations the API exposes. *services.LedgerService
// satisfies it.
type Ledger interface {
	Now() time.Time
	CanEdit(createdAt time.Time) bool

	FilteredTransactions(f core.FilterOptions) []core.Transaction
	Transaction(id string) (core.Transaction, error)
	AddTransaction(ctx context.Context, d core.TransactionDraft) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, u core.TransactionUpdate) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	Accounts() []core.Account
	Account(id string) (core.Account, error)
	TotalBalance() core.Money
	AddAccount(ctx context.Context, d core.AccountDraft) (core.Account, error)
	UpdateAccount(ctx context.Context, id, name, color string) (core.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	Transfers() []core.Transfer
	Transfer(id string) (core.Transfer, error)
	TransfersBetween(start, end time.Time) []core.Transfer
	AddTransfer(ctx context.Context, d core.TransferDraft) (core.Transfer, error)
	DeleteTransfer(ctx context.Context, id string) error

	Categories() []core.Category
	CategoriesByType(t core.TransactionType) []core.Category
	Category(id string) (core.Category, error)

	Summary(kind core.PeriodKind, offset int) core.DashboardSummary
	CustomSummary(start, end time.Time) core.DashboardSummary
	CategorySummary(f core.FilterOptions) []core.CategorySummary
	Totals() core.Totals
	TotalsBetween(start, end time.Time) core.Totals
}

// Config holds server settings. Zero values fall back to defaults.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
}

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	ledger Ledger
	logger *log.Logger

	dashboard    cache.Cache[api.DashboardSummary]
	dashboardGen uint64
	flight       singleflight.Group
	metrics      appMetrics

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware

	checksMu sync.Mutex
	checks   map[string]ReadinessCheck

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware. dashboard may be nil, in which
// case an in-process LRU is used.
func NewServer(cfg Config, ledger Ledger, dashboard cache.Cache[api.DashboardSummary], logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	if dashboard == nil {
		dashboard = cache.NewLRUCache[api.DashboardSummary](100, 5*time.Minute)
	}

	rl := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		rl.RequestsPerMinute = cfg.RateLimitPerMinute
	}

	s := &Server{
		ledger:      ledger,
		logger:      logger,
		dashboard:   dashboard,
		rateLimiter: ratelimit.NewLimiter(rl),
		detector:    security.NewDetector(logger),
		checks:      make(map[string]ReadinessCheck),
	}
	s.metrics.started = time.Now()
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.chain(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       orDefault(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      orDefault(cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       orDefault(cfg.IdleTimeout, 60*time.Second),
	}
	return s
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("GET /api/accounts/total-balance", s.handleTotalBalance)
	mux.HandleFunc("GET /api/accounts/{id}", s.handleGetAccount)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("GET /api/transfers", s.handleListTransfers)
	mux.HandleFunc("GET /api/transfers/date-range", s.handleTransfersByDateRange)
	mux.HandleFunc("GET /api/transfers/{id}", s.handleGetTransfer)
	mux.HandleFunc("POST /api/transfers", s.handleCreateTransfer)
	mux.HandleFunc("DELETE /api/transfers/{id}", s.handleDeleteTransfer)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("GET /api/categories/type/{type}", s.handleCategoriesByType)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("POST /api/categories", s.handleCategoryWrite)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleCategoryWrite)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleCategoryWrite)

	mux.HandleFunc("GET /api/dashboard/summary/custom", s.handleCustomSummary)
	mux.HandleFunc("GET /api/dashboard/summary/{kind}", s.handleSummary)
	mux.HandleFunc("GET /api/dashboard/category-summary", s.handleCategorySummary)
	mux.HandleFunc("GET /api/dashboard/totals", s.handleTotals)
}

// chain wraps the mux in, outermost first: tracing, security headers,
// suspicious request logging and the write rate limiter.
func (s *Server) chain(h http.Handler) http.Handler {
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.tracer.Middleware(h)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, api.Fail("Rate limit exceeded. Please try again later."))
}

// AddReadinessCheck registers a dependency check reported by /readyz.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checksMu.Lock()
	defer s.checksMu.Unlock()
	s.checks[name] = check
}

// Shutdown stops background goroutines and drains the HTTP server. Only the
// first call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
