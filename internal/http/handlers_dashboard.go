package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
	"moneymanager/internal/log"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParsePeriodKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	offset := 0
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			writeError(w, r, fmt.Errorf("%w: offset must be a non-negative integer", errBadRequest), log.OpRead)
			return
		}
	}

	// keyed by period start so a rollover never serves the previous period
	start, _ := core.PeriodBounds(kind, offset, s.ledger.Now())
	key := fmt.Sprintf("summary:%s:%d", kind, start.Unix())
	sum, err := s.cachedSummary(r.Context(), key, func() core.DashboardSummary {
		return s.ledger.Summary(kind, offset)
	})
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	writeOK(w, sum)
}

func (s *Server) handleCustomSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r, true)
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	key := fmt.Sprintf("summary:custom:%d:%d", start.Unix(), end.Unix())
	sum, err := s.cachedSummary(r.Context(), key, func() core.DashboardSummary {
		return s.ledger.CustomSummary(start, end)
	})
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	writeOK(w, sum)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	f, err := api.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), log.OpRead)
		return
	}
	writeOK(w, api.CategorySummariesFrom(s.ledger.CategorySummary(f)))
}

// handleTotals covers the whole ledger, or the range when either bound is given.
func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	start, end, err := queryRange(r, false)
	if err != nil {
		writeError(w, r, err, log.OpRead)
		return
	}
	if start.IsZero() && end.IsZero() {
		writeOK(w, api.TotalsFrom(s.ledger.Totals()))
		return
	}
	writeOK(w, api.TotalsFrom(s.ledger.TotalsBetween(start, end)))
}

// cachedSummary serves key from the dashboard cache. Concurrent misses for
// the same key share one computation.
func (s *Server) cachedSummary(ctx context.Context, key string, compute func() core.DashboardSummary) (api.DashboardSummary, error) {
	if sum, ok := s.dashboard.Get(ctx, key); ok {
		atomic.AddInt64(&s.metrics.cacheHits, 1)
		return sum, nil
	}
	atomic.AddInt64(&s.metrics.cacheMisses, 1)

	gen := atomic.LoadUint64(&s.dashboardGen)
	v, err, shared := s.flight.Do(fmt.Sprintf("%d/%s", gen, key), func() (any, error) {
		sum := api.DashboardSummaryFrom(compute())
		// a mutation during compute makes the result stale
		if atomic.LoadUint64(&s.dashboardGen) == gen {
			cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			s.dashboard.Set(cctx, key, sum)
		}
		return sum, nil
	})
	if err != nil {
		return api.DashboardSummary{}, err
	}
	if shared {
		log.FromContext(ctx).DebugContext(ctx, "Dashboard summary shared", "key", key)
	}
	return v.(api.DashboardSummary), nil
}

// invalidateDashboard drops every cached summary after a mutation.
func (s *Server) invalidateDashboard(r *http.Request) {
	atomic.AddUint64(&s.dashboardGen, 1)
	s.dashboard.Purge(r.Context())
}
