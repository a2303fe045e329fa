package repositories

import (
	"errors"
	"fmt"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/models"

	"gorm.io/gorm"
)

const insertBatchSize = 200

// SQLiteTransactionRepository stores the collection in a SQLite table,
// one row per transaction ordered by position.
type SQLiteTransactionRepository struct {
	db       *gorm.DB
	location string
	ping     func() error
}

// NewSQLiteTransactionRepository creates a repository over an open database.
// ping may be nil when no health check is available.
func NewSQLiteTransactionRepository(db *gorm.DB, location string, ping func() error) *SQLiteTransactionRepository {
	return &SQLiteTransactionRepository{
		db:       db,
		location: location,
		ping:     ping,
	}
}

func (r *SQLiteTransactionRepository) Load() ([]models.Transaction, error) {
	var rows []models.TransactionRow
	if err := r.db.Order("position ASC").Find(&rows).Error; err != nil {
		return nil, apierrors.NewIOError(apierrors.StorageReadFailed, fmt.Errorf("failed to load transactions: %w", err))
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := row.ToTransaction()
		if err != nil {
			var appErr *apierrors.Error
			if errors.As(err, &appErr) {
				return nil, appErr.WithIndex(i)
			}
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

// Save replaces every row inside one database transaction
func (r *SQLiteTransactionRepository) Save(transactions []models.Transaction) error {
	rows := make([]models.TransactionRow, 0, len(transactions))
	for i, tx := range transactions {
		rows = append(rows, models.NewTransactionRow(i, tx))
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.TransactionRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return apierrors.NewIOError(apierrors.StorageWriteFailed, err)
	}

	return nil
}

func (r *SQLiteTransactionRepository) Location() string {
	return r.location
}

func (r *SQLiteTransactionRepository) Ping() error {
	if r.ping == nil {
		return nil
	}
	if err := r.ping(); err != nil {
		return apierrors.NewIOError(apierrors.StorageUnavailable, err)
	}
	return nil
}
