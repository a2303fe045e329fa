package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"budget-tracker/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveLimited(t *testing.T, rl *RateLimiter, e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	t.Helper()

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/balance", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestRateLimiter_AllowsBurstThenRejects(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 3)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }

	for i := 0; i < 3; i++ {
		rec := serveLimited(t, rl, e, "192.168.1.100:12345")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := serveLimited(t, rl, e, "192.168.1.100:12345")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var response errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, string(errors.SystemRateLimitExceeded), response.Error.Code)
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.Equal(t, http.StatusOK, serveLimited(t, rl, e, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(t, rl, e, "10.0.0.1:1").Code)

	now = now.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, serveLimited(t, rl, e, "10.0.0.1:1").Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)
	frozen := time.Now()
	rl.now = func() time.Time { return frozen }

	assert.Equal(t, http.StatusOK, serveLimited(t, rl, e, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, serveLimited(t, rl, e, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, serveLimited(t, rl, e, "10.0.0.2:1").Code)
	assert.Equal(t, 2, rl.visitorCount())
}

func TestRateLimiter_IndependentInstances(t *testing.T) {
	e := echo.New()
	a := NewRateLimiter(1, 1)
	b := NewRateLimiter(1, 1)

	assert.Equal(t, http.StatusOK, serveLimited(t, a, e, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusOK, serveLimited(t, b, e, "10.0.0.1:1").Code)
}

func TestRateLimiter_ForwardedFor(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1, 1)

	handler := rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for i, expected := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		req.RemoteAddr = "10.0.0.1:1"
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, expected, rec.Code, "request %d", i)
	}
}

func TestRateLimiter_CleanupEvictsIdleVisitors(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(5, 5)
	now := time.Now()
	rl.now = func() time.Time { return now }

	serveLimited(t, rl, e, "10.0.0.1:1")
	now = now.Add(2 * time.Minute)
	serveLimited(t, rl, e, "10.0.0.2:1")

	now = now.Add(2 * time.Minute)
	rl.cleanup()

	assert.Equal(t, 1, rl.visitorCount())
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(5, 5)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimiter_Concurrent(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(1000, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				serveLimited(t, rl, e, "10.0.0.9:1")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rl.visitorCount())
}
