package models

import (
	"encoding/json"
	"fmt"
	"strings"

	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

const (
	// DefaultCategory is used when a transaction carries no category
	DefaultCategory = "uncategorized"

	MaxCategoryLength    = 64
	MaxDescriptionLength = 255

	// AmountPlaces is the number of fractional digits kept for every amount
	AmountPlaces = 2

	// MaxAmountIntegerDigits and MaxAmountScale bound the size of an amount
	// before it is rounded
	MaxAmountIntegerDigits = 15
	MaxAmountScale         = 20
)

// ParseTransactionType converts user or stored input into a TransactionType
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", apierrors.NewValidationError(apierrors.ValidationInvalidType, "type",
			fmt.Sprintf("unknown transaction type %q: must be income or expense", s))
	}
	return t, nil
}

// IsValid reports whether t is income or expense
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// Transaction is one recorded income or expense event. Values are never
// mutated after creation.
type Transaction struct {
	ID          string
	Type        TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        Date
}

// TransactionInput carries the caller supplied fields of a new transaction
type TransactionInput struct {
	Type        TransactionType `json:"type" validate:"required,transaction_type"`
	Amount      decimal.Decimal `json:"amount" validate:"non_negative_amount"`
	Category    string          `json:"category" validate:"max=64"`
	Description string          `json:"description" validate:"max=255"`
	Date        Date            `json:"date"`
}

// NewTransaction creates a transaction with a fresh identifier and an amount
// rounded half away from zero to two fractional digits.
func NewTransaction(input TransactionInput) (Transaction, error) {
	input.Category = strings.TrimSpace(input.Category)

	if err := CheckAmountMagnitude(input.Amount); err != nil {
		return Transaction{}, apierrors.NewValidationError(apierrors.ValidationInvalidAmount, "amount", err.Error())
	}
	if err := validation.GetValidator().Struct(input); err != nil {
		return Transaction{}, inputError(input, err)
	}
	if input.Date.IsZero() {
		return Transaction{}, apierrors.NewValidationError(apierrors.ValidationInvalidDate, "date", "date is required")
	}

	category := input.Category
	if category == "" {
		category = DefaultCategory
	}

	return Transaction{
		ID:          uuid.NewString(),
		Type:        input.Type,
		Amount:      RoundAmount(input.Amount),
		Category:    category,
		Description: input.Description,
		Date:        input.Date,
	}, nil
}

func inputError(input TransactionInput, err error) error {
	field, tag, ok := validation.FirstTag(err)
	if !ok {
		return apierrors.NewValidationError(apierrors.ValidationGeneral, "", err.Error())
	}

	switch tag {
	case "transaction_type":
		return apierrors.NewValidationError(apierrors.ValidationInvalidType, field,
			fmt.Sprintf("unknown transaction type %q: must be income or expense", input.Type))
	case "non_negative_amount":
		return apierrors.NewValidationError(apierrors.ValidationInvalidAmount, field,
			fmt.Sprintf("amount must not be negative, got %s", input.Amount.String()))
	case "max":
		return apierrors.NewValidationError(apierrors.ValidationOutOfRange, field,
			fmt.Sprintf("%s %s", field, validation.FieldErrors(err)[field]))
	case "required":
		return apierrors.NewValidationError(apierrors.ValidationRequiredField, field, field+" is required")
	default:
		return apierrors.NewValidationError(apierrors.ValidationGeneral, field, validation.FieldErrors(err)[field])
	}
}

// CheckAmountMagnitude rejects amounts with more than MaxAmountIntegerDigits
// integer digits or more than MaxAmountScale fractional digits. Only the
// exponent and coefficient length are inspected, so 1e900000000 fails fast.
func CheckAmountMagnitude(amount decimal.Decimal) error {
	exp := int64(amount.Exponent())
	if exp < -MaxAmountScale {
		return fmt.Errorf("amount has more than %d fractional digits", MaxAmountScale)
	}
	if int64(amount.NumDigits())+exp > MaxAmountIntegerDigits {
		return fmt.Errorf("amount exceeds %d integer digits", MaxAmountIntegerDigits)
	}
	return nil
}

// RoundAmount normalizes an amount to two fractional digits, half away from zero
func RoundAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(AmountPlaces)
}

// IsIncome returns true for income transactions
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionTypeIncome
}

// SignedAmount returns the amount as it contributes to a balance
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsIncome() {
		return t.Amount
	}
	return t.Amount.Neg()
}

// Equal compares transactions field by field; amounts compare by value
func (t Transaction) Equal(other Transaction) bool {
	return t.ID == other.ID &&
		t.Type == other.Type &&
		t.Amount.Equal(other.Amount) &&
		t.Category == other.Category &&
		t.Description == other.Description &&
		t.Date.Equal(other.Date)
}

// MarshalJSON renders the persisted record form
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToRecord())
}

// UnmarshalJSON reconstructs a transaction from its persisted record form
func (t *Transaction) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeTransaction(data)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}
