package services

import (
	"sort"

	"budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// Summarize groups transactions by category in a single pass. A category
// appears only if some transaction references it. Net is recomputed and
// rounded to two places after every update.
func Summarize(transactions []models.Transaction) map[string]models.CategorySummary {
	summary := make(map[string]models.CategorySummary)

	for _, tx := range transactions {
		entry, ok := summary[tx.Category]
		if !ok {
			entry = models.CategorySummary{
				Income:  decimal.Zero,
				Expense: decimal.Zero,
				Net:     decimal.Zero,
			}
		}

		if tx.IsIncome() {
			entry.Income = entry.Income.Add(tx.Amount)
		} else {
			entry.Expense = entry.Expense.Add(tx.Amount)
		}
		entry.Net = models.RoundAmount(entry.Income.Sub(entry.Expense))

		summary[tx.Category] = entry
	}

	return summary
}

// Balance returns total income minus total expense, rounded to two places
func Balance(transactions []models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.SignedAmount())
	}
	return models.RoundAmount(total)
}

// Totals returns the unrounded income and expense sums
func Totals(transactions []models.Transaction) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, tx := range transactions {
		if tx.IsIncome() {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense
}

// SortedCategories returns the summary keys in display order
func SortedCategories(summary map[string]models.CategorySummary) []string {
	categories := make([]string, 0, len(summary))
	for category := range summary {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}
