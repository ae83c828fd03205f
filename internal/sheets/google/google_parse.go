package google

import (
	"fmt"
	"strings"

	gsheet "google.golang.org/api/sheets/v4"

	ports "moneymanager/internal/sheets"
)

// firstColumn flattens a column read into trimmed strings. Empty rows stay
// as empty strings so indexes keep matching sheet rows.
func firstColumn(values [][]any) []string {
	out := make([]string, len(values))
	for i, row := range values {
		if len(row) > 0 {
			out[i] = strings.TrimSpace(fmt.Sprint(row[0]))
		}
	}
	return out
}

// findRow returns the 1-based sheet row holding id, or -1. Row 1 is the
// header and never matches.
func findRow(ids []string, id string) int {
	for i := 1; i < len(ids); i++ {
		if ids[i] == id {
			return i + 1
		}
	}
	return -1
}

func tabIDs(sheets []*gsheet.Sheet) map[ports.Tab]int64 {
	ids := make(map[ports.Tab]int64, len(sheets))
	for _, s := range sheets {
		if s == nil || s.Properties == nil {
			continue
		}
		ids[ports.Tab(s.Properties.Title)] = s.Properties.SheetId
	}
	return ids
}
