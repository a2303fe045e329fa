package models

import "encoding/json"

// TransactionRow is the SQLite representation of a transaction. Position
// keeps the collection order across a full rewrite.
type TransactionRow struct {
	Position      int    `gorm:"primaryKey;autoIncrement:false"`
	TransactionID string `gorm:"column:id;type:text;not null;index:idx_transactions_id"`
	Type          string `gorm:"type:text;not null"`
	Amount        string `gorm:"type:text;not null"`
	Category      string `gorm:"type:text;not null;index:idx_transactions_category"`
	Description   string `gorm:"type:text;not null"`
	Date          string `gorm:"type:text;not null;index:idx_transactions_date"`
}

// TableName returns the table name for TransactionRow
func (TransactionRow) TableName() string {
	return "transactions"
}

// NewTransactionRow converts a transaction stored at the given position
func NewTransactionRow(position int, t Transaction) TransactionRow {
	return TransactionRow{
		Position:      position,
		TransactionID: t.ID,
		Type:          t.Type.String(),
		Amount:        t.Amount.String(),
		Category:      t.Category,
		Description:   t.Description,
		Date:          t.Date.String(),
	}
}

// ToTransaction validates the stored values the same way a JSON record is
func (r TransactionRow) ToTransaction() (Transaction, error) {
	amount := json.Number(r.Amount)
	return FromRecord(TransactionRecord{
		ID:          &r.TransactionID,
		Type:        &r.Type,
		Amount:      &amount,
		Category:    &r.Category,
		Description: &r.Description,
		Date:        &r.Date,
	})
}
