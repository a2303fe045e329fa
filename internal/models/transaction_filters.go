package models

import "strings"

// TransactionFilter selects transactions for listing and reports.
// Zero fields match everything; date bounds are inclusive.
type TransactionFilter struct {
	Type     TransactionType
	Category string
	From     Date
	To       Date
}

// IsEmpty returns true when the filter matches every transaction
func (f TransactionFilter) IsEmpty() bool {
	return f.Type == "" && f.Category == "" && f.From.IsZero() && f.To.IsZero()
}

// Matches reports whether the transaction passes the filter.
// Categories compare case-insensitively.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}

// Apply returns the matching transactions in their original order
func (f TransactionFilter) Apply(transactions []Transaction) []Transaction {
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
