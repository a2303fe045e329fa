package dto

import (
	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/models"
)

// TransactionFilters contains filtering options for transaction queries
type TransactionFilters struct {
	Type     string `query:"type" json:"type" validate:"omitempty,transaction_type"`
	Category string `query:"category" json:"category" validate:"max=64"`
	From     string `query:"from" json:"from" validate:"iso_date"`
	To       string `query:"to" json:"to" validate:"iso_date"`
}

// ToFilter converts validated query parameters into a models.TransactionFilter
func (f TransactionFilters) ToFilter() (models.TransactionFilter, error) {
	var filter models.TransactionFilter

	if f.Type != "" {
		typ, err := models.ParseTransactionType(f.Type)
		if err != nil {
			return filter, err
		}
		filter.Type = typ
	}
	filter.Category = f.Category

	if f.From != "" {
		from, err := models.ParseDate(f.From)
		if err != nil {
			return filter, apierrors.NewValidationError(apierrors.ValidationInvalidDate, "from", err.Error())
		}
		filter.From = from
	}
	if f.To != "" {
		to, err := models.ParseDate(f.To)
		if err != nil {
			return filter, apierrors.NewValidationError(apierrors.ValidationInvalidDate, "to", err.Error())
		}
		filter.To = to
	}

	return filter, nil
}

// TransactionResponse is the wire form of a stored transaction
type TransactionResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	TotalIncome  string                `json:"total_income"`
	TotalExpense string                `json:"total_expense"`
	Balance      string                `json:"balance"`
}

// CategorySummaryResponse is one row of the per-category summary
type CategorySummaryResponse struct {
	Category string `json:"category"`
	Income   string `json:"income"`
	Expense  string `json:"expense"`
	Net      string `json:"net"`
}

// SummaryResponse lists categories in display order
type SummaryResponse struct {
	Categories []CategorySummaryResponse `json:"categories"`
	Balance    string                    `json:"balance"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Time    string `json:"time"`
}

// NewTransactionResponse maps a transaction to its wire form
func NewTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Type:        t.Type.String(),
		Amount:      t.Amount.StringFixed(models.AmountPlaces),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date.String(),
	}
}

// NewCategorySummaryResponse maps one summary entry
func NewCategorySummaryResponse(category string, s models.CategorySummary) CategorySummaryResponse {
	return CategorySummaryResponse{
		Category: category,
		Income:   s.Income.StringFixed(models.AmountPlaces),
		Expense:  s.Expense.StringFixed(models.AmountPlaces),
		Net:      s.Net.StringFixed(models.AmountPlaces),
	}
}
