package models

import (
	"encoding/json"
	"testing"
	"time"

	apierrors "budget-tracker/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_ToRecord(t *testing.T) {
	tx := Transaction{
		ID:          "3f1c",
		Type:        TransactionTypeExpense,
		Amount:      decimal.RequireFromString("500.50"),
		Category:    "mieszkanie",
		Description: "",
		Date:        NewDate(2023, time.June, 2),
	}

	data, err := json.Marshal(tx.ToRecord())
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":"3f1c","type":"expense","amount":500.5,"category":"mieszkanie","description":"","date":"2023-06-02"}`,
		string(data))
}

func TestTransaction_RecordRoundTrip(t *testing.T) {
	tx, err := NewTransaction(TransactionInput{
		Type:        TransactionTypeIncome,
		Amount:      decimal.RequireFromString("1200.5"),
		Category:    "pensja",
		Description: "wynagrodzenie",
		Date:        NewDate(2023, time.June, 1),
	})
	require.NoError(t, err)

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, tx.Equal(decoded))
}

func TestDecodeTransaction_Defaults(t *testing.T) {
	tx, err := DecodeTransaction(json.RawMessage(`{"id":"a","type":"income","amount":2000,"date":"2023-06-01"}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultCategory, tx.Category)
	assert.Equal(t, "", tx.Description)
	assert.True(t, decimal.NewFromInt(2000).Equal(tx.Amount))
}

func TestDecodeTransaction_RoundsAmount(t *testing.T) {
	tx, err := DecodeTransaction(json.RawMessage(`{"id":"a","type":"expense","amount":10.125,"date":"2023-06-01"}`))
	require.NoError(t, err)
	assert.Equal(t, "10.13", tx.Amount.StringFixed(2))
}

func TestDecodeTransaction_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		code  apierrors.ErrorCode
		field string
	}{
		{"missing id", `{"type":"income","amount":1,"date":"2023-06-01"}`, apierrors.FormatMissingField, "id"},
		{"missing type", `{"id":"a","amount":1,"date":"2023-06-01"}`, apierrors.FormatMissingField, "type"},
		{"missing amount", `{"id":"a","type":"income","date":"2023-06-01"}`, apierrors.FormatMissingField, "amount"},
		{"missing date", `{"id":"a","type":"income","amount":1}`, apierrors.FormatMissingField, "date"},
		{"unknown type", `{"id":"a","type":"gift","amount":1,"date":"2023-06-01"}`, apierrors.FormatInvalidField, "type"},
		{"bad date", `{"id":"a","type":"income","amount":1,"date":"2023-13-01"}`, apierrors.FormatInvalidField, "date"},
		{"negative amount", `{"id":"a","type":"income","amount":-1,"date":"2023-06-01"}`, apierrors.FormatInvalidField, "amount"},
		{"huge amount exponent", `{"id":"a","type":"income","amount":1e900000000,"date":"2023-06-01"}`, apierrors.FormatInvalidField, "amount"},
		{"tiny amount exponent", `{"id":"a","type":"income","amount":1e-900000000,"date":"2023-06-01"}`, apierrors.FormatInvalidField, "amount"},
		{"padded date", `{"id":"a","type":"income","amount":1,"date":" 2023-06-01 "}`, apierrors.FormatInvalidField, "date"},
		{"amount wrong type", `{"id":"a","type":"income","amount":true,"date":"2023-06-01"}`, apierrors.FormatInvalidField, "amount"},
		{"id wrong type", `{"id":7,"type":"income","amount":1,"date":"2023-06-01"}`, apierrors.FormatInvalidField, "id"},
		{"not an object", `[1,2]`, apierrors.FormatInvalidEntry, ""},
		{"null entry", `null`, apierrors.FormatMissingField, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTransaction(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.True(t, apierrors.IsFormat(err))

			var appErr *apierrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}
