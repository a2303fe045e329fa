package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	v := NewValidationError(ValidationInvalidType, "type", "unknown transaction type \"bonus\"")
	f := NewFormatError(FormatMissingField, "amount", nil)
	i := NewIOError(StorageReadFailed, fs.ErrPermission)

	assert.True(t, IsValidation(v))
	assert.False(t, IsFormat(v))
	assert.True(t, IsFormat(f))
	assert.False(t, IsIO(f))
	assert.True(t, IsIO(i))
	assert.ErrorIs(t, i, fs.ErrPermission)
}

func TestErrorMessage(t *testing.T) {
	err := NewFormatError(FormatInvalidField, "date", errors.New("bad month"))
	assert.Equal(t, `Transaction record has a malformed field (field "date"): bad month`, err.Error())

	err = NewValidationError(ValidationInvalidAmount, "", "amount must not be negative")
	assert.Equal(t, "amount must not be negative", err.Error())
}

func TestWithIndex(t *testing.T) {
	base := NewFormatError(FormatMissingField, "type", nil)
	indexed := base.WithIndex(3)

	assert.Equal(t, `Transaction record is missing a required field at entry 3 (field "type")`, indexed.Error())
	assert.Equal(t, "", base.Message)
	assert.True(t, IsFormat(indexed))
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewIOError(StorageWriteFailed, nil))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, StorageWriteFailed, CodeOf(wrapped))
	assert.Equal(t, SystemUnexpectedError, CodeOf(errors.New("plain")))
}
