package services

import (
	"fmt"
	"log/slog"
	"time"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/models"
	"budget-tracker/internal/repositories"

	"github.com/shopspring/decimal"
)

// BudgetService implements BudgetServiceInterface over a transaction repository.
// Returned errors are not logged here; the caller reports them.
type BudgetService struct {
	repo    repositories.TransactionRepositoryInterface
	metrics MetricsRecorderInterface
	logger  *slog.Logger
	backend string
}

// NewBudgetService creates a new budget service
func NewBudgetService(
	repo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
	backend string,
) *BudgetService {
	return &BudgetService{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		backend: backend,
	}
}

func (s *BudgetService) AddTransaction(input models.TransactionInput) (models.Transaction, error) {
	// Validate before touching storage
	tx, err := models.NewTransaction(input)
	if err != nil {
		return models.Transaction{}, err
	}

	transactions, err := s.load()
	if err != nil {
		return models.Transaction{}, err
	}

	transactions = append(transactions, tx)
	if err := s.save(transactions); err != nil {
		return models.Transaction{}, err
	}

	s.metrics.IncrementCounter(MetricTransactionAdded, map[string]string{"type": tx.Type.String()})
	s.logger.Info("transaction added",
		"transaction_id", tx.ID,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(models.AmountPlaces),
		"category", tx.Category,
		"date", tx.Date.String(),
	)

	return tx, nil
}

func (s *BudgetService) AppendTransactions(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	stored, err := s.load()
	if err != nil {
		return err
	}

	stored = append(stored, transactions...)
	if err := s.save(stored); err != nil {
		return err
	}

	for _, tx := range transactions {
		s.metrics.IncrementCounter(MetricTransactionAdded, map[string]string{"type": tx.Type.String()})
	}
	s.logger.Info("transactions appended", "count", len(transactions), "total", len(stored))

	return nil
}

func (s *BudgetService) ListTransactions() ([]models.Transaction, error) {
	return s.load()
}

func (s *BudgetService) Summary() (map[string]models.CategorySummary, error) {
	transactions, err := s.load()
	if err != nil {
		return nil, err
	}
	return Summarize(transactions), nil
}

func (s *BudgetService) Balance() (decimal.Decimal, error) {
	transactions, err := s.load()
	if err != nil {
		return decimal.Zero, err
	}

	balance := Balance(transactions)
	s.metrics.RecordGauge(MetricBalance, balance.InexactFloat64(), nil)

	return balance, nil
}

func (s *BudgetService) Report(filter models.TransactionFilter) (*models.Report, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return nil, apierrors.NewValidationError(apierrors.ValidationInvalidDate, "from",
			fmt.Sprintf("from %s is after to %s", filter.From, filter.To))
	}

	transactions, err := s.load()
	if err != nil {
		return nil, err
	}

	selected := filter.Apply(transactions)

	s.logger.Debug("report built",
		"matched", len(selected),
		"total", len(transactions),
		"type", filter.Type,
		"category", filter.Category,
	)

	return &models.Report{
		Filter:       filter,
		Transactions: selected,
		Summary:      Summarize(selected),
		Balance:      Balance(selected),
	}, nil
}

// MalformedEntryReporter returns a callback for repositories.WithSkipMalformed
// that logs and counts each skipped entry
func MalformedEntryReporter(logger *slog.Logger, metrics MetricsRecorderInterface) func(index int, err error) {
	return func(index int, err error) {
		metrics.IncrementCounter(MetricEntrySkipped, nil)
		logger.Warn("skipping malformed transaction", "index", index, "error", err)
	}
}

func (s *BudgetService) HealthCheck() error {
	return s.repo.Ping()
}

func (s *BudgetService) load() ([]models.Transaction, error) {
	start := time.Now()
	transactions, err := s.repo.Load()
	s.metrics.RecordProcessingTime(MetricStoreLoad, time.Since(start))

	if err != nil {
		s.recordOperation("load", "failed")
		s.logger.Debug("store load failed", "location", s.repo.Location(), "error", err)
		return nil, err
	}

	s.recordOperation("load", "success")
	s.metrics.RecordGauge(MetricStoredTransactions, float64(len(transactions)), nil)
	s.logger.Debug("store loaded", "location", s.repo.Location(), "count", len(transactions))

	return transactions, nil
}

func (s *BudgetService) save(transactions []models.Transaction) error {
	start := time.Now()
	err := s.repo.Save(transactions)
	s.metrics.RecordProcessingTime(MetricStoreSave, time.Since(start))

	if err != nil {
		s.recordOperation("save", "failed")
		s.logger.Debug("store save failed", "location", s.repo.Location(), "error", err)
		return err
	}

	s.recordOperation("save", "success")
	s.metrics.RecordGauge(MetricStoredTransactions, float64(len(transactions)), nil)

	return nil
}

func (s *BudgetService) recordOperation(operation, status string) {
	s.metrics.IncrementCounter(MetricStoreOperation, map[string]string{
		"operation": operation,
		"backend":   s.backend,
		"status":    status,
	})
}
