package core

import "strings"

// ParseTransactionType accepts both the in-memory (lowercase) and wire (uppercase) forms.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

// ParseDivision accepts both the in-memory (lowercase) and wire (uppercase) forms.
func ParseDivision(s string) (Division, error) {
	d := Division(strings.ToLower(strings.TrimSpace(s)))
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d, nil
}

// Wire returns the uppercase form used by the REST contract.
func (t TransactionType) Wire() string { return strings.ToUpper(string(t)) }

// Wire returns the uppercase form used by the REST contract.
func (d Division) Wire() string { return strings.ToUpper(string(d)) }
