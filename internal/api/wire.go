// Package api holds the JSON contract shared by the HTTP server and the
// remote client: the response envelope, the DTOs and their wire encodings.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
)

// DateTimeLayout is the ISO-8601 local date-time written on the wire.
const DateTimeLayout = "2006-01-02T15:04:05"

// Envelope wraps every response body.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

func OK[T any](data T) Envelope[T] {
	return Envelope[T]{Success: true, Data: data}
}

func OKWithMessage[T any](message string, data T) Envelope[T] {
	return Envelope[T]{Success: true, Message: message, Data: data}
}

func Fail(message string) Envelope[any] {
	return Envelope[any]{Success: false, Message: message}
}

// Amount is a currency amount in units, written as a plain JSON number.
type Amount struct {
	decimal.Decimal
}

func AmountOf(m core.Money) Amount {
	return Amount{m.Decimal()}
}

func (a Amount) Money() core.Money {
	return core.MoneyFromDecimal(a.Decimal)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

// Time is a timestamp written in DateTimeLayout.
type Time struct {
	time.Time
}

func TimeOf(t time.Time) Time { return Time{t} }

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(DateTimeLayout))
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts local date-times with optional fractional seconds,
// RFC 3339 timestamps and plain dates. Local forms are read in time.Local.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// FormatQueryTime renders t for a query parameter.
func FormatQueryTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// FilterQuery encodes f as transaction list query parameters.
func FilterQuery(f core.FilterOptions) url.Values {
	q := url.Values{}
	if f.Division != "" && f.Division != core.FilterAll {
		q.Set("division", strings.ToUpper(f.Division))
	}
	if f.Category != "" && f.Category != core.FilterAll {
		q.Set("category", f.Category)
	}
	if !f.StartDate.IsZero() {
		q.Set("startDate", FormatQueryTime(f.StartDate))
	}
	if !f.EndDate.IsZero() {
		q.Set("endDate", FormatQueryTime(f.EndDate))
	}
	return q
}

// ParseFilter decodes the query parameters produced by FilterQuery. Missing
// parameters match everything.
func ParseFilter(q url.Values) (core.FilterOptions, error) {
	f := core.FilterOptions{Category: q.Get("category")}
	if d := q.Get("division"); d != "" && !strings.EqualFold(d, core.FilterAll) {
		div, err := core.ParseDivision(d)
		if err != nil {
			return f, err
		}
		f.Division = string(div)
	}
	var err error
	if f.StartDate, err = queryTime(q, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryTime(q, "endDate"); err != nil {
		return f, err
	}
	return f, nil
}

func queryTime(q url.Values, key string) (time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := ParseTime(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", key, err)
	}
	return t, nil
}
