package main

import (
	"fmt"
	"time"

	"moneymanager/internal/api"
	"moneymanager/internal/core"
)

// parseAmount reads a positive decimal amount such as 12.50 or 12,50.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return core.Money{Cents: cents}, nil
}

// parseWhen reads a date flag; empty means now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.Truncate(time.Second), nil
	}
	return api.ParseTime(s)
}

// parseOptionalDate reads a filter bound; empty stays the zero time.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return api.ParseTime(s)
}
