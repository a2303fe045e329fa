package models

import (
	"encoding/json"
	stderrors "errors"
	"fmt"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/validation"

	"github.com/shopspring/decimal"
)

// TransactionRecord is the persisted form of a Transaction. Pointer fields
// distinguish an absent key from an empty value.
type TransactionRecord struct {
	ID          *string      `json:"id" validate:"required"`
	Type        *string      `json:"type" validate:"required"`
	Amount      *json.Number `json:"amount" validate:"required"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Date        *string      `json:"date" validate:"required"`
}

// ToRecord converts the transaction into its persisted form
func (t Transaction) ToRecord() TransactionRecord {
	id := t.ID
	typ := t.Type.String()
	amount := json.Number(t.Amount.String())
	category := t.Category
	description := t.Description
	date := t.Date.String()

	return TransactionRecord{
		ID:          &id,
		Type:        &typ,
		Amount:      &amount,
		Category:    &category,
		Description: &description,
		Date:        &date,
	}
}

// FromRecord reconstructs a transaction. Missing category and description
// fall back to their defaults; every other field must be present and valid.
func FromRecord(rec TransactionRecord) (Transaction, error) {
	if err := validation.GetValidator().Struct(rec); err != nil {
		field, _, _ := validation.FirstTag(err)
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatMissingField, field, nil)
	}

	if *rec.ID == "" {
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, "id", stderrors.New("id is empty"))
	}

	typ := TransactionType(*rec.Type)
	if !typ.IsValid() {
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, "type",
			fmt.Errorf("unknown transaction type %q", *rec.Type))
	}

	amount, err := decimal.NewFromString(rec.Amount.String())
	if err != nil {
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, "amount", err)
	}
	if err := CheckAmountMagnitude(amount); err != nil {
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, "amount", err)
	}
	if amount.IsNegative() {
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, "amount",
			fmt.Errorf("negative amount %s", amount.String()))
	}

	date, err := ParseDate(*rec.Date)
	if err != nil {
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, "date", err)
	}

	category := DefaultCategory
	if rec.Category != nil {
		category = *rec.Category
	}
	description := ""
	if rec.Description != nil {
		description = *rec.Description
	}

	return Transaction{
		ID:          *rec.ID,
		Type:        typ,
		Amount:      RoundAmount(amount),
		Category:    category,
		Description: description,
		Date:        date,
	}, nil
}

// DecodeTransaction reconstructs a transaction from one raw JSON entry
func DecodeTransaction(raw json.RawMessage) (Transaction, error) {
	var rec TransactionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) {
			if typeErr.Field == "" {
				return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidEntry, "",
					fmt.Errorf("entry must be an object, got %s", typeErr.Value))
			}
			return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidField, typeErr.Field, err)
		}
		return Transaction{}, apierrors.NewFormatError(apierrors.FormatInvalidEntry, "", err)
	}
	return FromRecord(rec)
}
