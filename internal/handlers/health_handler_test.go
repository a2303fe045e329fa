package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget-tracker/internal/dto"
	apierrors "budget-tracker/internal/errors"
	"budget-tracker/internal/logging"
	"budget-tracker/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Healthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := service_mocks.NewMockBudgetServiceInterface(ctrl)
	service.EXPECT().HealthCheck().Return(nil)

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)

	h := NewHealthCheckHandler(service, "sqlite", logging.Discard())
	require.NoError(t, h.HealthCheck(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var response dto.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "sqlite", response.Backend)
	assert.NotEmpty(t, response.Time)
}

func TestHealthCheck_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service := service_mocks.NewMockBudgetServiceInterface(ctrl)
	service.EXPECT().HealthCheck().Return(apierrors.NewIOError(apierrors.StorageUnavailable, errors.New("database unreachable")))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	c.Set(TraceIDContextKey, "health-trace")

	h := NewHealthCheckHandler(service, "sqlite", logging.Discard())
	require.NoError(t, h.HealthCheck(c))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, string(apierrors.SystemServiceUnavailable), response.Error.Code)
	assert.Equal(t, "health-trace", response.Error.TraceID)
	assert.Equal(t, []string{"storage backend unreachable"}, response.Error.Details)
}
