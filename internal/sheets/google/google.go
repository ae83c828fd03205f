package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
	ports "moneymanager/internal/sheets"
)

var _ ports.Mirror = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
// CredentialsJSON takes precedence over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger

	mu       sync.Mutex
	sheetIDs map[ports.Tab]int64
}

// New creates a Sheets mirror authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test endpoint.
func NewWithService(svc *gsheet.Service, spreadsheetID string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func credentials(cfg Config) ([]byte, error) {
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(cfg.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

func (c *Client) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	return c.upsert(ctx, ports.TransactionsTab, ports.TransactionRow(t))
}

func (c *Client) UpsertTransfer(ctx context.Context, t core.Transfer) error {
	return c.upsert(ctx, ports.TransfersTab, ports.TransferRow(t))
}

func (c *Client) UpsertAccount(ctx context.Context, a core.Account) error {
	return c.upsert(ctx, ports.AccountsTab, ports.AccountRow(a))
}

func (c *Client) upsert(ctx context.Context, tab ports.Tab, row []any) error {
	if _, err := c.sheetID(ctx, tab); err != nil {
		return err
	}
	id := fmt.Sprint(row[0])
	ids, err := c.readIDs(ctx, tab)
	if err != nil {
		return err
	}

	if n := findRow(ids, id); n > 0 {
		rng := fmt.Sprintf("%s!A%d", tab, n)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		c.logger.DebugContext(ctx, "Sheet row updated", "tab", tab, "row", n, "id", id)
		return nil
	}

	values := [][]any{row}
	if len(ids) == 0 {
		values = [][]any{ports.Header(tab), row}
	}
	rng := fmt.Sprintf("%s!A1", tab)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", tab, err)
	}
	c.logger.DebugContext(ctx, "Sheet row appended", "tab", tab, "id", id)
	return nil
}

func (c *Client) DeleteRow(ctx context.Context, tab ports.Tab, id string) error {
	sheetID, err := c.sheetID(ctx, tab)
	if err != nil {
		return err
	}
	ids, err := c.readIDs(ctx, tab)
	if err != nil {
		return err
	}
	n := findRow(ids, id)
	if n < 0 {
		c.logger.DebugContext(ctx, "Sheet row already absent", "tab", tab, "id", id)
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    sheetID,
			Dimension:  "ROWS",
			StartIndex: int64(n - 1),
			EndIndex:   int64(n),
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d of %s: %w", n, tab, err)
	}
	c.logger.DebugContext(ctx, "Sheet row deleted", "tab", tab, "row", n, "id", id)
	return nil
}

func (c *Client) readIDs(ctx context.Context, tab ports.Tab) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return firstColumn(resp.Values), nil
}

// sheetID resolves the numeric id of tab, creating every missing mirror tab
// on first use.
func (c *Client) sheetID(ctx context.Context, tab ports.Tab) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sheetIDs == nil {
		ids, err := c.ensureTabs(ctx)
		if err != nil {
			return 0, err
		}
		c.sheetIDs = ids
	}
	id, ok := c.sheetIDs[tab]
	if !ok {
		return 0, fmt.Errorf("unknown tab %q", tab)
	}
	return id, nil
}

func (c *Client) ensureTabs(ctx context.Context) (map[ports.Tab]int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	ids := tabIDs(ss.Sheets)

	var add []*gsheet.Request
	for _, tab := range ports.Tabs {
		if _, ok := ids[tab]; !ok {
			add = append(add, &gsheet.Request{AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: string(tab)},
			}})
		}
	}
	if len(add) == 0 {
		return ids, nil
	}

	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: add}).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create mirror tabs: %w", err)
	}
	for _, r := range resp.Replies {
		if r.AddSheet != nil && r.AddSheet.Properties != nil {
			ids[ports.Tab(r.AddSheet.Properties.Title)] = r.AddSheet.Properties.SheetId
		}
	}
	c.logger.InfoContext(ctx, "Created mirror tabs", "count", len(add))
	return ids, nil
}
