package repositories

import (
	"budget-tracker/internal/models"
)

// TransactionRepositoryInterface defines the contract for the transaction store.
// Load and Save always operate on the whole collection.
type TransactionRepositoryInterface interface {
	// Load returns every stored transaction in stored order. A store that
	// does not exist yet yields an empty collection.
	Load() ([]models.Transaction, error)
	// Save replaces the stored collection with transactions, in the given order
	Save(transactions []models.Transaction) error
	// Location describes where the data lives, for messages
	Location() string
	// Ping reports whether the backing storage is reachable
	Ping() error
}
