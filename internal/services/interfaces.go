package services

import (
	"time"

	"budget-tracker/internal/models"

	"github.com/shopspring/decimal"
)

// BudgetServiceInterface orchestrates the load, append and save cycle of the
// transaction store and computes reports over it
type BudgetServiceInterface interface {
	// AddTransaction creates a transaction and appends it to the store
	AddTransaction(input models.TransactionInput) (models.Transaction, error)
	// AppendTransactions appends already created transactions in one save
	AppendTransactions(transactions []models.Transaction) error
	ListTransactions() ([]models.Transaction, error)
	Summary() (map[string]models.CategorySummary, error)
	Balance() (decimal.Decimal, error)
	// Report returns the filtered transactions with their summary and balance
	Report(filter models.TransactionFilter) (*models.Report, error)
	// HealthCheck reports whether the storage backend is reachable
	HealthCheck() error
}

// MetricsRecorderInterface provides metrics recording capabilities
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// TransactionGeneratorInterface produces realistic demo transactions
type TransactionGeneratorInterface interface {
	// Generate creates count transactions dated within [start, end], ordered by date
	Generate(count int, start, end models.Date) ([]models.Transaction, error)
}
