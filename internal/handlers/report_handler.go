package handlers

import (
	"net/http"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/models"
	"budget-tracker/internal/services"

	"github.com/labstack/echo/v4"
)

// ReportHandler serves read-only views of the transaction store
type ReportHandler struct {
	service services.BudgetServiceInterface
}

func NewReportHandler(service services.BudgetServiceInterface) *ReportHandler {
	return &ReportHandler{service: service}
}

// ListTransactions returns stored transactions matching the query with their totals.
//
// Method: GET /transactions
//
// Query parameters:
//   - type: income or expense
//   - category: case-insensitive category match
//   - from, to: inclusive YYYY-MM-DD bounds
//
// Error Responses:
//   - 400: invalid query parameters
//   - 422: stored document is malformed
//   - 503: storage unavailable
func (h *ReportHandler) ListTransactions(c echo.Context) error {
	var query dto.TransactionFilters
	if err := c.Bind(&query); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("invalid query parameters"))
	}
	if err := c.Validate(&query); err != nil {
		return err
	}

	filter, err := query.ToFilter()
	if err != nil {
		return err
	}

	report, err := h.service.Report(filter)
	if err != nil {
		return err
	}

	income, expense := services.Totals(report.Transactions)
	response := dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(report.Transactions)),
		Count:        len(report.Transactions),
		TotalIncome:  income.StringFixed(models.AmountPlaces),
		TotalExpense: expense.StringFixed(models.AmountPlaces),
		Balance:      report.Balance.StringFixed(models.AmountPlaces),
	}
	for _, t := range report.Transactions {
		response.Transactions = append(response.Transactions, dto.NewTransactionResponse(t))
	}

	return c.JSON(http.StatusOK, response)
}

// GetSummary returns the per-category summary sorted by category.
//
// Method: GET /summary
func (h *ReportHandler) GetSummary(c echo.Context) error {
	report, err := h.service.Report(models.TransactionFilter{})
	if err != nil {
		return err
	}

	response := dto.SummaryResponse{
		Categories: make([]dto.CategorySummaryResponse, 0, len(report.Summary)),
		Balance:    report.Balance.StringFixed(models.AmountPlaces),
	}
	for _, category := range services.SortedCategories(report.Summary) {
		response.Categories = append(response.Categories,
			dto.NewCategorySummaryResponse(category, report.Summary[category]))
	}

	return c.JSON(http.StatusOK, response)
}

// GetBalance returns the balance over every stored transaction.
//
// Method: GET /balance
func (h *ReportHandler) GetBalance(c echo.Context) error {
	balance, err := h.service.Balance()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.BalanceResponse{
		Balance: balance.StringFixed(models.AmountPlaces),
	})
}
