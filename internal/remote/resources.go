package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
)

func idPath(resource, id string) string {
	return resource + "/" + url.PathEscape(id)
}

func rangeQuery(start, end time.Time) url.Values {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("startDate", api.FormatQueryTime(start))
	}
	if !end.IsZero() {
		q.Set("endDate", api.FormatQueryTime(end))
	}
	return q
}

// Transactions

func (c *Client) ListTransactions(ctx context.Context, f core.FilterOptions) ([]api.Transaction, error) {
	return call[[]api.Transaction](ctx, c, http.MethodGet, "transactions", api.FilterQuery(f), nil)
}

func (c *Client) GetTransaction(ctx context.Context, id string) (api.Transaction, error) {
	return call[api.Transaction](ctx, c, http.MethodGet, idPath("transactions", id), nil, nil)
}

func (c *Client) CreateTransaction(ctx context.Context, d core.TransactionDraft) (api.Transaction, error) {
	return call[api.Transaction](ctx, c, http.MethodPost, "transactions", nil, api.TransactionFromDraft(d))
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, u core.TransactionUpdate) (api.Transaction, error) {
	return call[api.Transaction](ctx, c, http.MethodPut, idPath("transactions", id), nil, api.PatchFrom(u))
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	_, err := call[discard](ctx, c, http.MethodDelete, idPath("transactions", id), nil, nil)
	return err
}

// Accounts

func (c *Client) ListAccounts(ctx context.Context) ([]api.Account, error) {
	return call[[]api.Account](ctx, c, http.MethodGet, "accounts", nil, nil)
}

func (c *Client) GetAccount(ctx context.Context, id string) (api.Account, error) {
	return call[api.Account](ctx, c, http.MethodGet, idPath("accounts", id), nil, nil)
}

func (c *Client) TotalBalance(ctx context.Context) (core.Money, error) {
	a, err := call[api.Amount](ctx, c, http.MethodGet, "accounts/total-balance", nil, nil)
	return a.Money(), err
}

func (c *Client) CreateAccount(ctx context.Context, d core.AccountDraft) (api.Account, error) {
	return call[api.Account](ctx, c, http.MethodPost, "accounts", nil, api.AccountFromDraft(d))
}

func (c *Client) UpdateAccount(ctx context.Context, id, name, color string) (api.Account, error) {
	body := map[string]string{"name": name, "color": color}
	return call[api.Account](ctx, c, http.MethodPut, idPath("accounts", id), nil, body)
}

func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	_, err := call[discard](ctx, c, http.MethodDelete, idPath("accounts", id), nil, nil)
	return err
}

// Transfers

func (c *Client) ListTransfers(ctx context.Context) ([]api.Transfer, error) {
	return call[[]api.Transfer](ctx, c, http.MethodGet, "transfers", nil, nil)
}

func (c *Client) GetTransfer(ctx context.Context, id string) (api.Transfer, error) {
	return call[api.Transfer](ctx, c, http.MethodGet, idPath("transfers", id), nil, nil)
}

func (c *Client) TransfersByDateRange(ctx context.Context, start, end time.Time) ([]api.Transfer, error) {
	return call[[]api.Transfer](ctx, c, http.MethodGet, "transfers/date-range", rangeQuery(start, end), nil)
}

func (c *Client) CreateTransfer(ctx context.Context, d core.TransferDraft) (api.Transfer, error) {
	return call[api.Transfer](ctx, c, http.MethodPost, "transfers", nil, api.TransferFromDraft(d))
}

func (c *Client) DeleteTransfer(ctx context.Context, id string) error {
	_, err := call[discard](ctx, c, http.MethodDelete, idPath("transfers", id), nil, nil)
	return err
}

// Categories

func (c *Client) ListCategories(ctx context.Context) ([]api.Category, error) {
	return call[[]api.Category](ctx, c, http.MethodGet, "categories", nil, nil)
}

func (c *Client) CategoriesByType(ctx context.Context, t core.TransactionType) ([]api.Category, error) {
	return call[[]api.Category](ctx, c, http.MethodGet, "categories/type/"+t.Wire(), nil, nil)
}

func (c *Client) GetCategory(ctx context.Context, id string) (api.Category, error) {
	return call[api.Category](ctx, c, http.MethodGet, idPath("categories", id), nil, nil)
}

// CreateCategory, UpdateCategory and DeleteCategory exist for contract
// parity; the bundled server rejects them with 405.
func (c *Client) CreateCategory(ctx context.Context, cat api.Category) (api.Category, error) {
	return call[api.Category](ctx, c, http.MethodPost, "categories", nil, cat)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, cat api.Category) (api.Category, error) {
	return call[api.Category](ctx, c, http.MethodPut, idPath("categories", id), nil, cat)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := call[discard](ctx, c, http.MethodDelete, idPath("categories", id), nil, nil)
	return err
}

// Dashboard

func (c *Client) Summary(ctx context.Context, kind core.PeriodKind) (api.DashboardSummary, error) {
	return c.SummaryAt(ctx, kind, 0)
}

// SummaryAt returns the period offset periods before the current one.
func (c *Client) SummaryAt(ctx context.Context, kind core.PeriodKind, offset int) (api.DashboardSummary, error) {
	var q url.Values
	if offset > 0 {
		q = url.Values{"offset": {strconv.Itoa(offset)}}
	}
	return call[api.DashboardSummary](ctx, c, http.MethodGet, api.PeriodPath(kind), q, nil)
}

func (c *Client) CustomSummary(ctx context.Context, start, end time.Time) (api.DashboardSummary, error) {
	return call[api.DashboardSummary](ctx, c, http.MethodGet, "dashboard/summary/custom", rangeQuery(start, end), nil)
}

func (c *Client) CategorySummary(ctx context.Context, f core.FilterOptions) ([]api.CategorySummary, error) {
	return call[[]api.CategorySummary](ctx, c, http.MethodGet, "dashboard/category-summary", api.FilterQuery(f), nil)
}

func (c *Client) Totals(ctx context.Context) (api.Totals, error) {
	return c.TotalsBetween(ctx, time.Time{}, time.Time{})
}

// TotalsBetween limits the totals to a range; zero bounds are omitted.
func (c *Client) TotalsBetween(ctx context.Context, start, end time.Time) (api.Totals, error) {
	return call[api.Totals](ctx, c, http.MethodGet, "dashboard/totals", rangeQuery(start, end), nil)
}
