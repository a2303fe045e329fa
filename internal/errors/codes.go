package errors

// ErrorCode represents a standardized error code used by the CLI and the report server
type ErrorCode string

// Validation error codes (VALIDATION_*)
const (
	ValidationGeneral         ErrorCode = "VALIDATION_001"
	ValidationRequiredField   ErrorCode = "VALIDATION_002"
	ValidationInvalidFormat   ErrorCode = "VALIDATION_003"
	ValidationOutOfRange      ErrorCode = "VALIDATION_004"
	ValidationInvalidType     ErrorCode = "VALIDATION_005"
	ValidationInvalidAmount   ErrorCode = "VALIDATION_006"
	ValidationInvalidDate     ErrorCode = "VALIDATION_007"
	ValidationInvalidArgument ErrorCode = "VALIDATION_008"
)

// Document format error codes (FORMAT_*)
const (
	FormatInvalidDocument  ErrorCode = "FORMAT_001"
	FormatMissingContainer ErrorCode = "FORMAT_002"
	FormatMissingField     ErrorCode = "FORMAT_003"
	FormatInvalidField     ErrorCode = "FORMAT_004"
	FormatInvalidEntry     ErrorCode = "FORMAT_005"
)

// Storage error codes (STORAGE_*)
const (
	StorageReadFailed  ErrorCode = "STORAGE_001"
	StorageWriteFailed ErrorCode = "STORAGE_002"
	StorageUnavailable ErrorCode = "STORAGE_003"
)

// Resource error codes (RESOURCE_*)
const (
	ResourceNotFound ErrorCode = "RESOURCE_001"
)

// System error codes (SYSTEM_*)
const (
	SystemInternalError      ErrorCode = "SYSTEM_001"
	SystemServiceUnavailable ErrorCode = "SYSTEM_003"
	SystemConfigurationError ErrorCode = "SYSTEM_004"
	SystemUnexpectedError    ErrorCode = "SYSTEM_005"
	SystemRateLimitExceeded  ErrorCode = "SYSTEM_006"
)

// errorMessages maps error codes to their default human-readable messages
var errorMessages = map[ErrorCode]string{
	// Validation errors
	ValidationGeneral:         "Validation failed",
	ValidationRequiredField:   "Required field is missing",
	ValidationInvalidFormat:   "Invalid field format",
	ValidationOutOfRange:      "Field value is out of allowed range",
	ValidationInvalidType:     "Transaction type must be income or expense",
	ValidationInvalidAmount:   "Amount must be a non-negative number",
	ValidationInvalidDate:     "Invalid date, expected YYYY-MM-DD",
	ValidationInvalidArgument: "Invalid command line arguments",

	// Format errors
	FormatInvalidDocument:  "Data file is not a valid JSON document",
	FormatMissingContainer: "Data file has no transactions list",
	FormatMissingField:     "Transaction record is missing a required field",
	FormatInvalidField:     "Transaction record has a malformed field",
	FormatInvalidEntry:     "Transaction record is malformed",

	// Storage errors
	StorageReadFailed:  "Could not read the data file",
	StorageWriteFailed: "Could not write the data file",
	StorageUnavailable: "Storage backend is unavailable",

	// Resource errors
	ResourceNotFound: "Resource not found",

	// System errors
	SystemInternalError:      "An unexpected error occurred. Please report it with the trace ID",
	SystemServiceUnavailable: "Service temporarily unavailable",
	SystemConfigurationError: "System configuration error",
	SystemUnexpectedError:    "An unexpected error occurred",
	SystemRateLimitExceeded:  "Rate limit exceeded. Please try again later",
}

// GetErrorMessage returns the default message for a given error code
// If the error code is not found, it returns a generic error message
func GetErrorMessage(code ErrorCode) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "An error occurred"
}

// IsValidErrorCode checks if the provided error code is a valid registered code
func IsValidErrorCode(code ErrorCode) bool {
	_, ok := errorMessages[code]
	return ok
}
