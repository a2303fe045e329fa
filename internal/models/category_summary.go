package models

import "github.com/shopspring/decimal"

// CategorySummary contains income and expense totals for one category
type CategorySummary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// Report is a filtered view of the store with its aggregates
type Report struct {
	Filter       TransactionFilter
	Transactions []Transaction
	Summary      map[string]CategorySummary
	Balance      decimal.Decimal
}
