package middleware

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"budget-tracker/internal/dto"
	"budget-tracker/internal/errors"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/services"
	"budget-tracker/internal/services/service_mocks"
	"budget-tracker/internal/validation"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// ErrorHandlerTestSuite defines the test suite for error handler middleware
type ErrorHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	ctrl    *gomock.Controller
	metrics *service_mocks.MockMetricsRecorderInterface
	handler echo.HTTPErrorHandler
}

// SetupTest runs before each test
func (s *ErrorHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.echo = echo.New()
	s.handler = NewHTTPErrorHandler(logging.Discard(), s.metrics)
	s.echo.HTTPErrorHandler = s.handler
}

func (s *ErrorHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// TestErrorHandlerTestSuite runs the test suite
func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) newContext() (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")
	return c, rec
}

func (s *ErrorHandlerTestSuite) expectHTTPError(code, status string) {
	s.metrics.EXPECT().IncrementCounter(services.MetricHTTPError, map[string]string{
		"code":   code,
		"status": status,
	})
}

func (s *ErrorHandlerTestSuite) decode(rec *httptest.ResponseRecorder) errors.ErrorResponse {
	var response errors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	c, rec := s.newContext()
	s.expectHTTPError("RESOURCE_001", "404")

	s.handler(echo.NewHTTPError(http.StatusNotFound, "Resource not found"), c)

	s.Equal(http.StatusNotFound, rec.Code)
	response := s.decode(rec)
	s.Equal("Resource not found", response.Error.Message)
	s.Equal("test-trace-id", response.Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestMethodNotAllowedKeepsStatus() {
	c, rec := s.newContext()
	s.expectHTTPError("VALIDATION_001", "405")

	s.handler(echo.ErrMethodNotAllowed, c)

	s.Equal(http.StatusMethodNotAllowed, rec.Code)
}

func (s *ErrorHandlerTestSuite) TestValidationErrors() {
	c, rec := s.newContext()
	s.expectHTTPError("VALIDATION_001", "400")

	err := validation.GetValidator().Struct(dto.TransactionFilters{Type: "transfer", From: "yesterday"})
	s.Require().Error(err)
	s.handler(err, c)

	s.Equal(http.StatusBadRequest, rec.Code)
	response := s.decode(rec)
	s.Len(response.Error.Details, 2)
	s.Contains(rec.Body.String(), "type: must be income or expense")
}

func (s *ErrorHandlerTestSuite) TestServiceValidationError() {
	c, rec := s.newContext()
	s.expectHTTPError("VALIDATION_007", "400")

	s.handler(errors.NewValidationError(errors.ValidationInvalidDate, "from", "from is after to"), c)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "from is after to")
}

func (s *ErrorHandlerTestSuite) TestFormatError() {
	c, rec := s.newContext()
	s.expectHTTPError("FORMAT_002", "422")

	s.handler(errors.NewFormatError(errors.FormatMissingContainer, "transactions", nil), c)

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *ErrorHandlerTestSuite) TestStorageErrorHidesPath() {
	c, rec := s.newContext()
	s.expectHTTPError("STORAGE_003", "503")

	cause := &os.PathError{Op: "open", Path: "/home/user/.budget/transactions.json", Err: os.ErrPermission}
	s.handler(errors.NewIOError(errors.StorageReadFailed, cause), c)

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.NotContains(rec.Body.String(), "/home/user")
}

func (s *ErrorHandlerTestSuite) TestGenericError() {
	c, rec := s.newContext()
	s.expectHTTPError("SYSTEM_001", "500")

	s.handler(stderrors.New("generic error"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "generic error")
}

func (s *ErrorHandlerTestSuite) TestNoTraceID() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	s.expectHTTPError("SYSTEM_001", "500")

	s.handler(stderrors.New("boom"), c)

	s.Equal("unknown", s.decode(rec).Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	c, rec := s.newContext()
	s.Require().NoError(c.NoContent(http.StatusOK))

	s.handler(stderrors.New("late"), c)

	s.Equal(http.StatusOK, rec.Code)
}

func (s *ErrorHandlerTestSuite) TestServerErrorsLoggedAtErrorLevel() {
	var logs bytes.Buffer
	handler := NewHTTPErrorHandler(slog.New(slog.NewTextHandler(&logs, nil)), s.metrics)
	c, _ := s.newContext()
	s.metrics.EXPECT().IncrementCounter(services.MetricHTTPError, gomock.Any())

	handler(stderrors.New("boom"), c)

	s.Contains(logs.String(), "level=ERROR")
	s.Contains(logs.String(), "trace_id=test-trace-id")
}
