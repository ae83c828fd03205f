package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"moneymanager/internal/api"
	"moneymanager/internal/ledger"
	"moneymanager/internal/log"
	"moneymanager/internal/seed"
	"moneymanager/internal/services"
	"moneymanager/internal/storage/memory"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type harness struct {
	srv   *Server
	clock *testClock
}

func newHarness(t *testing.T, cfg Config) harness {
	t.Helper()
	return newLoggedHarness(t, cfg, log.New(log.Config{Output: io.Discard}))
}

func newLoggedHarness(t *testing.T, cfg Config, logger *log.Logger) harness {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 3, 12, 9, 0, 0, 0, time.Local)}
	store, err := ledger.New(context.Background(), ledger.Options{
		Categories: seed.DefaultCategories(),
		Persister:  memory.New(),
		Seed:       ledger.Dataset{Accounts: seed.OpeningAccounts()},
		Clock:      clock.Now,
		Logger:     logger,
	})
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	srv := NewServer(cfg, services.NewLedgerService(store, nil, logger), nil, logger)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return harness{srv: srv, clock: clock}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (h harness) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode body %q: %v", method, path, rr.Body.String(), err)
	}
	return rr.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func (h harness) balance(t *testing.T, id string) int64 {
	t.Helper()
	code, env := h.do(t, http.MethodGet, "/api/accounts/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("get account %s: %d %s", id, code, env.Message)
	}
	return decodeData[api.Account](t, env).Balance.Money().Cents
}

const dinner = `{"type":"EXPENSE","amount":45.99,"description":"Dinner","category":"food","division":"PERSONAL","accountId":"cash","dateTime":"2025-03-12T08:30:00"}`

func TestHealthAndReady(t *testing.T) {
	h := newHarness(t, Config{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		h.srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	h.srv.AddReadinessCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	rr := httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with failing check = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "connection refused") {
		t.Errorf("readyz body should name the failure: %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Errorf("metrics missing request counter: %s", rr.Body.String())
	}
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestTransactionLifecycle(t *testing.T) {
	h := newHarness(t, Config{})
	before := h.balance(t, "cash")

	code, env := h.do(t, http.MethodPost, "/api/transactions", dinner)
	if code != http.StatusCreated || env.Message != "Transaction created successfully" {
		t.Fatalf("create = %d %q", code, env.Message)
	}
	created := decodeData[api.Transaction](t, env)
	if created.ID == "" || !created.Editable || created.Type != "EXPENSE" {
		t.Fatalf("created = %+v", created)
	}
	if got := h.balance(t, "cash"); got != before-4599 {
		t.Fatalf("cash = %d, want %d", got, before-4599)
	}

	code, env = h.do(t, http.MethodPut, "/api/transactions/"+created.ID, `{"amount": 50}`)
	if code != http.StatusOK {
		t.Fatalf("update = %d %q", code, env.Message)
	}
	if got := h.balance(t, "cash"); got != before-5000 {
		t.Fatalf("cash after update = %d, want %d", got, before-5000)
	}

	code, env = h.do(t, http.MethodGet, "/api/transactions?division=PERSONAL&category=food", "")
	if code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}
	if list := decodeData[[]api.Transaction](t, env); len(list) != 1 {
		t.Fatalf("filtered list = %d items, want 1", len(list))
	}

	h.clock.now = h.clock.now.Add(13 * time.Hour)

	code, env = h.do(t, http.MethodPut, "/api/transactions/"+created.ID, `{"description":"late"}`)
	if code != http.StatusForbidden || env.Message != "Transaction cannot be edited after 12 hours" {
		t.Fatalf("late update = %d %q", code, env.Message)
	}
	code, env = h.do(t, http.MethodDelete, "/api/transactions/"+created.ID, "")
	if code != http.StatusForbidden || env.Message != "Transaction cannot be deleted after 12 hours" {
		t.Fatalf("late delete = %d %q", code, env.Message)
	}
	code, env = h.do(t, http.MethodGet, "/api/transactions/"+created.ID, "")
	if code != http.StatusOK || decodeData[api.Transaction](t, env).Editable {
		t.Fatalf("locked transaction should be reported as not editable")
	}
}

func TestDeleteTransactionRestoresBalance(t *testing.T) {
	h := newHarness(t, Config{})
	before := h.balance(t, "cash")

	_, env := h.do(t, http.MethodPost, "/api/transactions", dinner)
	id := decodeData[api.Transaction](t, env).ID

	code, env := h.do(t, http.MethodDelete, "/api/transactions/"+id, "")
	if code != http.StatusOK || env.Message != "Transaction deleted successfully" {
		t.Fatalf("delete = %d %q", code, env.Message)
	}
	if got := h.balance(t, "cash"); got != before {
		t.Fatalf("cash = %d, want %d", got, before)
	}
	if code, _ := h.do(t, http.MethodDelete, "/api/transactions/"+id, ""); code != http.StatusNotFound {
		t.Fatalf("second delete = %d, want 404", code)
	}
}

func TestErrorStatuses(t *testing.T) {
	h := newHarness(t, Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"malformed json", http.MethodPost, "/api/transactions", `{"type":`, http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/transactions", "", http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/api/transactions", strings.Replace(dinner, "45.99", "0", 1), http.StatusBadRequest},
		{"unknown type", http.MethodPost, "/api/transactions", strings.Replace(dinner, "EXPENSE", "REFUND", 1), http.StatusBadRequest},
		{"category mismatch", http.MethodPost, "/api/transactions", strings.Replace(dinner, `"food"`, `"salary"`, 1), http.StatusBadRequest},
		{"unknown account", http.MethodPost, "/api/transactions", strings.Replace(dinner, `"cash"`, `"nope"`, 1), http.StatusNotFound},
		{"unknown transaction", http.MethodGet, "/api/transactions/missing", "", http.StatusNotFound},
		{"bad division filter", http.MethodGet, "/api/transactions?division=HOME", "", http.StatusBadRequest},
		{"bad date filter", http.MethodGet, "/api/transactions?startDate=yesterday", "", http.StatusBadRequest},
		{"unknown account lookup", http.MethodGet, "/api/accounts/nope", "", http.StatusNotFound},
		{"account without name", http.MethodPost, "/api/accounts", `{"name":"","color":"#000"}`, http.StatusBadRequest},
		{"unknown period", http.MethodGet, "/api/dashboard/summary/daily", "", http.StatusBadRequest},
		{"negative offset", http.MethodGet, "/api/dashboard/summary/monthly?offset=-1", "", http.StatusBadRequest},
		{"custom without range", http.MethodGet, "/api/dashboard/summary/custom", "", http.StatusBadRequest},
		{"unknown category", http.MethodGet, "/api/categories/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := h.do(t, tt.method, tt.path, tt.body)
			if code != tt.want {
				t.Fatalf("status = %d (%q), want %d", code, env.Message, tt.want)
			}
			if env.Success || env.Message == "" {
				t.Errorf("error envelope = %+v", env)
			}
		})
	}
}

func TestAccounts(t *testing.T) {
	h := newHarness(t, Config{})

	code, env := h.do(t, http.MethodPost, "/api/accounts", `{"name":"Savings","balance":100.5,"color":"#123456"}`)
	if code != http.StatusCreated || env.Message != "Account created successfully" {
		t.Fatalf("create = %d %q", code, env.Message)
	}
	acc := decodeData[api.Account](t, env)

	code, env = h.do(t, http.MethodPut, "/api/accounts/"+acc.ID, `{"name":"Rainy day","color":"#654321"}`)
	if code != http.StatusOK || decodeData[api.Account](t, env).Name != "Rainy day" {
		t.Fatalf("update = %d %s", code, env.Data)
	}

	_, env = h.do(t, http.MethodGet, "/api/accounts/total-balance", "")
	if got := decodeData[api.Amount](t, env).Money().Cents; got != 3000000+10050 {
		t.Fatalf("total balance = %d", got)
	}

	h.do(t, http.MethodPost, "/api/transactions", dinner)
	if code, _ := h.do(t, http.MethodDelete, "/api/accounts/cash", ""); code != http.StatusConflict {
		t.Fatalf("deleting a referenced account = %d, want 409", code)
	}
	if code, _ := h.do(t, http.MethodDelete, "/api/accounts/"+acc.ID, ""); code != http.StatusOK {
		t.Fatalf("delete unused account = %d", code)
	}
	_, env = h.do(t, http.MethodGet, "/api/accounts", "")
	if got := len(decodeData[[]api.Account](t, env)); got != 3 {
		t.Fatalf("accounts = %d, want 3", got)
	}
}

func TestTransfers(t *testing.T) {
	h := newHarness(t, Config{})
	bank, cash := h.balance(t, "bank"), h.balance(t, "cash")

	code, env := h.do(t, http.MethodPost, "/api/transfers", `{"fromAccountId":"bank","toAccountId":"bank","amount":10,"dateTime":"2025-03-12T08:00:00"}`)
	if code != http.StatusBadRequest || env.Message != "Cannot transfer to the same account" {
		t.Fatalf("same account = %d %q", code, env.Message)
	}

	code, env = h.do(t, http.MethodPost, "/api/transfers", `{"fromAccountId":"bank","toAccountId":"cash","amount":200,"description":"ATM","dateTime":"2025-03-12T08:00:00"}`)
	if code != http.StatusCreated || env.Message != "Transfer created successfully" {
		t.Fatalf("create = %d %q", code, env.Message)
	}
	tr := decodeData[api.Transfer](t, env)
	if h.balance(t, "bank") != bank-20000 || h.balance(t, "cash") != cash+20000 {
		t.Fatal("transfer should move 200 from bank to cash")
	}

	_, env = h.do(t, http.MethodGet, "/api/transfers/date-range?startDate=2025-03-12T00:00:00&endDate=2025-03-12T23:59:59", "")
	if got := decodeData[[]api.Transfer](t, env); len(got) != 1 || got[0].ID != tr.ID {
		t.Fatalf("date range = %+v", got)
	}
	if code, _ := h.do(t, http.MethodGet, "/api/transfers/date-range?startDate=2025-03-12", ""); code != http.StatusBadRequest {
		t.Fatalf("open range = %d, want 400", code)
	}

	if code, _ := h.do(t, http.MethodDelete, "/api/transfers/"+tr.ID, ""); code != http.StatusOK {
		t.Fatalf("delete = %d", code)
	}
	if h.balance(t, "bank") != bank {
		t.Fatal("delete should restore the bank balance")
	}
}

func TestCategoriesAreReadOnly(t *testing.T) {
	h := newHarness(t, Config{})

	_, env := h.do(t, http.MethodGet, "/api/categories/type/INCOME", "")
	cats := decodeData[[]api.Category](t, env)
	if len(cats) == 0 {
		t.Fatal("expected income categories")
	}
	for _, c := range cats {
		if c.Type != "INCOME" {
			t.Errorf("category %s has type %s", c.ID, c.Type)
		}
	}

	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		path := "/api/categories"
		if m != http.MethodPost {
			path += "/food"
		}
		if code, _ := h.do(t, m, path, `{}`); code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", m, path, code)
		}
	}
}

func TestDashboardCacheIsInvalidatedByWrites(t *testing.T) {
	h := newHarness(t, Config{})

	_, env := h.do(t, http.MethodGet, "/api/dashboard/summary/monthly", "")
	first := decodeData[api.DashboardSummary](t, env)
	if first.Label != "March 2025" {
		t.Fatalf("label = %q", first.Label)
	}
	if len(first.PeriodComparison) != 6 {
		t.Fatalf("history = %d, want 6", len(first.PeriodComparison))
	}

	h.do(t, http.MethodGet, "/api/dashboard/summary/monthly", "")
	if hits := h.srv.metrics.cacheHits; hits != 1 {
		t.Fatalf("cache hits = %d, want 1", hits)
	}

	h.do(t, http.MethodPost, "/api/transactions", dinner)
	_, env = h.do(t, http.MethodGet, "/api/dashboard/summary/monthly", "")
	second := decodeData[api.DashboardSummary](t, env)
	diff := second.TotalExpense.Money().Cents - first.TotalExpense.Money().Cents
	if diff != 4599 {
		t.Fatalf("expense delta = %d, want 4599", diff)
	}
	if second.TransactionCount != first.TransactionCount+1 {
		t.Fatalf("count = %d, want %d", second.TransactionCount, first.TransactionCount+1)
	}
}

func TestMutationsAreLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggedHarness(t, Config{}, log.New(log.Config{Output: &buf, Format: "text"}))

	if code, _ := h.do(t, http.MethodPost, "/api/transactions", dinner); code != http.StatusCreated {
		t.Fatalf("create transaction = %d", code)
	}
	if code, _ := h.do(t, http.MethodPost, "/api/transfers", `{"fromAccountId":"bank","toAccountId":"cash","amount":20,"dateTime":"2025-03-12T08:00:00"}`); code != http.StatusCreated {
		t.Fatalf("create transfer = %d", code)
	}

	out := buf.String()
	for _, msg := range []string{"Transaction created", "Transfer created"} {
		if n := strings.Count(out, msg); n != 1 {
			t.Errorf("%q logged %d times, want 1", msg, n)
		}
	}
}

func TestDashboardCacheFollowsPeriodRollover(t *testing.T) {
	h := newHarness(t, Config{})

	_, env := h.do(t, http.MethodGet, "/api/dashboard/summary/monthly", "")
	if got := decodeData[api.DashboardSummary](t, env).Label; got != "March 2025" {
		t.Fatalf("label = %q, want March 2025", got)
	}

	h.clock.now = time.Date(2025, 4, 1, 0, 5, 0, 0, time.Local)
	_, env = h.do(t, http.MethodGet, "/api/dashboard/summary/monthly", "")
	sum := decodeData[api.DashboardSummary](t, env)
	if sum.Label != "April 2025" {
		t.Fatalf("label after rollover = %q, want April 2025", sum.Label)
	}
	if !sum.StartDate.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.Local)) {
		t.Errorf("start = %v, want 2025-04-01", sum.StartDate.Time)
	}
	if hits := h.srv.metrics.cacheHits; hits != 0 {
		t.Errorf("cache hits = %d, want 0", hits)
	}
}

func TestTotalsAndCategorySummary(t *testing.T) {
	h := newHarness(t, Config{})
	h.do(t, http.MethodPost, "/api/transactions", dinner)
	h.do(t, http.MethodPost, "/api/transactions", `{"type":"INCOME","amount":1000,"description":"Pay","category":"salary","division":"OFFICE","accountId":"bank","dateTime":"2025-02-01T09:00:00"}`)

	_, env := h.do(t, http.MethodGet, "/api/dashboard/totals", "")
	all := decodeData[api.Totals](t, env)
	if all.Balance.Money().Cents != 100000-4599 {
		t.Fatalf("balance = %d", all.Balance.Money().Cents)
	}

	_, env = h.do(t, http.MethodGet, "/api/dashboard/totals?startDate=2025-03-01", "")
	march := decodeData[api.Totals](t, env)
	if march.TotalIncome.Money().Cents != 0 || march.TotalExpense.Money().Cents != 4599 {
		t.Fatalf("march totals = %+v", march)
	}

	_, env = h.do(t, http.MethodGet, "/api/dashboard/category-summary?division=OFFICE", "")
	sums := decodeData[[]api.CategorySummary](t, env)
	if len(sums) != 1 || sums[0].CategoryID != "salary" || sums[0].CategoryName != "Salary" {
		t.Fatalf("category summary = %+v", sums)
	}
}

func TestRateLimitAppliesToWritesOnly(t *testing.T) {
	h := newHarness(t, Config{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		if code, env := h.do(t, http.MethodPost, "/api/transactions", dinner); code != http.StatusCreated {
			t.Fatalf("write %d = %d %q", i+1, code, env.Message)
		}
	}
	code, env := h.do(t, http.MethodPost, "/api/transactions", dinner)
	if code != http.StatusTooManyRequests || env.Success {
		t.Fatalf("third write = %d %+v", code, env)
	}
	if code, _ := h.do(t, http.MethodGet, "/api/transactions", ""); code != http.StatusOK {
		t.Fatalf("reads should not be limited, got %d", code)
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	h := newHarness(t, Config{})
	if err := h.srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := h.srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ledger.ErrTransferNotFound, http.StatusNotFound},
		{ledger.ErrTransactionLocked, http.StatusForbidden},
		{ledger.ErrAccountInUse, http.StatusConflict},
		{errBadRequest, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
	if got := messageFor(errors.New("disk on fire"), http.StatusInternalServerError); got != "Internal server error" {
		t.Errorf("internal errors must not leak: %q", got)
	}
}
