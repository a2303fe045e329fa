package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Process exit codes used by the CLI
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitFormat  = 3
	ExitStorage = 4
)

// ErrorResponse represents the standardized report server error response structure
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the detailed error information
type ErrorDetail struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	TraceID string   `json:"trace_id"`
}

// ErrorOption is a functional option for configuring error responses
type ErrorOption func(*ErrorResponse)

// WithDetails adds detail messages to the error response
func WithDetails(details ...string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Details = details
	}
}

// WithMessage overrides the default message for the error code
func WithMessage(message string) ErrorOption {
	return func(er *ErrorResponse) {
		er.Error.Message = message
	}
}

// NewErrorResponse creates a standardized error response with the given error code and trace ID
// Optional details can be added using functional options
func NewErrorResponse(code ErrorCode, traceID string, opts ...ErrorOption) *ErrorResponse {
	response := &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(code),
			Message: GetErrorMessage(code),
			TraceID: traceID,
			Details: []string{},
		},
	}

	for _, opt := range opts {
		opt(response)
	}

	return response
}

// NewValidationErrorResponse creates a validation error response with field-specific error details
func NewValidationErrorResponse(fieldErrors map[string]string, traceID string) *ErrorResponse {
	details := make([]string, 0, len(fieldErrors))
	for field, message := range fieldErrors {
		details = append(details, fmt.Sprintf("%s: %s", field, message))
	}

	return NewErrorResponse(ValidationGeneral, traceID, WithDetails(details...))
}

// FromError converts a classified error into a response. Storage and unknown
// errors are reported with a generic message so file paths are not exposed.
func FromError(err error, traceID string) *ErrorResponse {
	code := CodeOf(err)
	switch {
	case IsValidation(err):
		return NewErrorResponse(code, traceID, WithDetails(err.Error()))
	case IsFormat(err):
		return NewErrorResponse(code, traceID)
	case IsIO(err):
		return NewErrorResponse(StorageUnavailable, traceID)
	default:
		return NewErrorResponse(SystemInternalError, traceID)
	}
}

// ToJSON serializes the error response to JSON bytes
func (er *ErrorResponse) ToJSON() ([]byte, error) {
	return json.Marshal(er)
}

// GetHTTPStatus returns the appropriate HTTP status code for the error code
func GetHTTPStatus(code ErrorCode) int {
	switch code {
	case ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationOutOfRange, ValidationInvalidType, ValidationInvalidAmount,
		ValidationInvalidDate, ValidationInvalidArgument:
		return http.StatusBadRequest

	case ResourceNotFound:
		return http.StatusNotFound

	// The document exists but cannot be interpreted
	case FormatInvalidDocument, FormatMissingContainer, FormatMissingField,
		FormatInvalidField, FormatInvalidEntry:
		return http.StatusUnprocessableEntity

	case SystemRateLimitExceeded:
		return http.StatusTooManyRequests

	case SystemServiceUnavailable, StorageUnavailable:
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetExitCode returns the CLI exit status for the error code
func GetExitCode(code ErrorCode) int {
	switch code {
	case ValidationGeneral, ValidationRequiredField, ValidationInvalidFormat,
		ValidationOutOfRange, ValidationInvalidType, ValidationInvalidAmount,
		ValidationInvalidDate, ValidationInvalidArgument:
		return ExitUsage
	case FormatInvalidDocument, FormatMissingContainer, FormatMissingField,
		FormatInvalidField, FormatInvalidEntry:
		return ExitFormat
	case StorageReadFailed, StorageWriteFailed, StorageUnavailable:
		return ExitStorage
	default:
		return ExitFailure
	}
}

// ExitCodeFor maps any error to a CLI exit status
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	return GetExitCode(CodeOf(err))
}

// GetHTTPStatus returns the HTTP status code for the error response
func (er *ErrorResponse) GetHTTPStatus() int {
	return GetHTTPStatus(ErrorCode(er.Error.Code))
}

// IsClientError returns true if the error is a 4xx client error
func (er *ErrorResponse) IsClientError() bool {
	status := er.GetHTTPStatus()
	return status >= 400 && status < 500
}

// IsServerError returns true if the error is a 5xx server error
func (er *ErrorResponse) IsServerError() bool {
	return er.GetHTTPStatus() >= 500
}

// String returns a string representation of the error response
func (er *ErrorResponse) String() string {
	return fmt.Sprintf("[%s] %s (trace: %s)", er.Error.Code, er.Error.Message, er.Error.TraceID)
}
