package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ResponseTestSuite defines the test suite for error responses
type ResponseTestSuite struct {
	suite.Suite
	traceID string
}

// SetupTest runs before each test
func (s *ResponseTestSuite) SetupTest() {
	s.traceID = "550e8400-e29b-41d4-a716-446655440000"
}

// TestResponseTestSuite runs the test suite
func TestResponseTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseTestSuite))
}

func (s *ResponseTestSuite) TestNewErrorResponse_BasicUsage() {
	response := NewErrorResponse(ResourceNotFound, s.traceID)

	s.NotNil(response)
	s.Equal("RESOURCE_001", response.Error.Code)
	s.Equal("Resource not found", response.Error.Message)
	s.Equal(s.traceID, response.Error.TraceID)
	s.Empty(response.Error.Details)
}

func (s *ResponseTestSuite) TestNewErrorResponse_WithOptions() {
	details := []string{"Detail 1", "Detail 2"}
	response := NewErrorResponse(
		ValidationInvalidDate,
		s.traceID,
		WithMessage("from must not be after to"),
		WithDetails(details...),
	)

	s.Equal("VALIDATION_007", response.Error.Code)
	s.Equal("from must not be after to", response.Error.Message)
	s.Equal(details, response.Error.Details)
}

func (s *ResponseTestSuite) TestNewValidationErrorResponse() {
	response := NewValidationErrorResponse(map[string]string{"type": "must be income or expense"}, s.traceID)

	s.Equal("VALIDATION_001", response.Error.Code)
	s.Equal([]string{"type: must be income or expense"}, response.Error.Details)
}

func (s *ResponseTestSuite) TestFromError() {
	testCases := []struct {
		name       string
		err        error
		code       string
		hasDetails bool
	}{
		{
			name:       "validation keeps its code and message",
			err:        NewValidationError(ValidationInvalidAmount, "amount", ""),
			code:       "VALIDATION_006",
			hasDetails: true,
		},
		{
			name: "format keeps its code",
			err:  NewFormatError(FormatMissingContainer, "transactions", nil),
			code: "FORMAT_002",
		},
		{
			name: "io hides the path",
			err:  NewIOError(StorageReadFailed, errors.New("open /home/u/.budget/transactions.json: permission denied")),
			code: "STORAGE_003",
		},
		{
			name: "unclassified",
			err:  errors.New("boom"),
			code: "SYSTEM_001",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			response := FromError(tc.err, s.traceID)
			s.Equal(tc.code, response.Error.Code)
			s.NotContains(response.Error.Message, "/home/u")
			if tc.hasDetails {
				s.NotEmpty(response.Error.Details)
			}
		})
	}
}

func (s *ResponseTestSuite) TestToJSON() {
	response := NewErrorResponse(ValidationInvalidType, s.traceID, WithDetails("type: bogus"))

	data, err := response.ToJSON()
	s.Require().NoError(err)

	var decoded map[string]map[string]any
	s.Require().NoError(json.Unmarshal(data, &decoded))
	s.Equal("VALIDATION_005", decoded["error"]["code"])
	s.Equal(s.traceID, decoded["error"]["trace_id"])
}

func (s *ResponseTestSuite) TestGetHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ValidationGeneral, http.StatusBadRequest},
		{ValidationInvalidDate, http.StatusBadRequest},
		{ResourceNotFound, http.StatusNotFound},
		{FormatInvalidEntry, http.StatusUnprocessableEntity},
		{SystemRateLimitExceeded, http.StatusTooManyRequests},
		{StorageUnavailable, http.StatusServiceUnavailable},
		{StorageReadFailed, http.StatusInternalServerError},
		{ErrorCode("UNKNOWN"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(string(tc.code), func() {
			s.Equal(tc.expected, GetHTTPStatus(tc.code))
		})
	}
}

func (s *ResponseTestSuite) TestGetExitCode() {
	s.Equal(ExitUsage, GetExitCode(ValidationInvalidArgument))
	s.Equal(ExitFormat, GetExitCode(FormatMissingField))
	s.Equal(ExitStorage, GetExitCode(StorageWriteFailed))
	s.Equal(ExitFailure, GetExitCode(SystemInternalError))
}

func (s *ResponseTestSuite) TestExitCodeFor() {
	s.Equal(ExitOK, ExitCodeFor(nil))
	s.Equal(ExitUsage, ExitCodeFor(NewValidationError(ValidationInvalidType, "type", "")))
	s.Equal(ExitFailure, ExitCodeFor(errors.New("plain")))
}

func (s *ResponseTestSuite) TestClientServerClassification() {
	client := NewErrorResponse(ValidationGeneral, s.traceID)
	server := NewErrorResponse(SystemInternalError, s.traceID)

	s.True(client.IsClientError())
	s.False(client.IsServerError())
	s.True(server.IsServerError())
	s.False(server.IsClientError())
	s.Equal("[SYSTEM_001] An unexpected error occurred. Please report it with the trace ID (trace: "+s.traceID+")", server.String())
}
