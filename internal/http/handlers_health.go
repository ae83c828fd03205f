package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

type appMetrics struct {
	started     time.Time
	cacheHits   int64
	cacheMisses int64
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.started).Round(time.Second).String(),
	})
}

// handleReady runs every registered readiness check.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s.checksMu.Lock()
	names := make([]string, 0, len(s.checks))
	checks := make(map[string]ReadinessCheck, len(s.checks))
	for name, c := range s.checks {
		names = append(names, name)
		checks[name] = c
	}
	s.checksMu.Unlock()
	sort.Strings(names)

	status, code := "ready", http.StatusOK
	results := map[string]any{
		"rate_limiter": map[string]any{"active_clients": s.rateLimiter.ActiveClients(), "status": "ok"},
	}
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			results[name] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    results,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	trace := s.tracer.GetMetrics()
	sec := s.detector.GetMetrics()
	rl := s.rateLimiter.GetMetrics()

	var b strings.Builder
	counter := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
	}
	gauge := func(name, help string, v int64) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s gauge\n%s %d\n\n", name, help, name, name, v)
	}

	counter("http_requests_total", "Total number of HTTP requests", trace.TotalRequests)
	gauge("http_last_response_time_microseconds", "Duration of the most recent request", trace.LastResponseTimeUs)
	counter("dashboard_cache_hits_total", "Dashboard summaries served from cache", atomic.LoadInt64(&s.metrics.cacheHits))
	counter("dashboard_cache_misses_total", "Dashboard summaries computed", atomic.LoadInt64(&s.metrics.cacheMisses))
	counter("rate_limit_hits_total", "Requests rejected by the rate limiter", rl.TotalHits)
	gauge("rate_limit_active_clients", "Clients tracked by the rate limiter", rl.ClientCount)
	counter("suspicious_requests_total", "Requests matching scanner patterns", sec.SuspiciousRequests)
	gauge("uptime_seconds", "Seconds since the server started", int64(time.Since(s.metrics.started).Seconds()))

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}
