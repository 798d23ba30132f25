package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

// observeLogs はグローバルロガーを観測用に差し替える
func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Get()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(prev) })
	return logs
}

func fieldsOf(entry observer.LoggedEntry) map[string]interface{} {
	return entry.ContextMap()
}

func TestSetupMiddleware(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, metrics.NewWithRegistry(prometheus.NewRegistry()))

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "test")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Body.String())
	// リクエストIDが付与される
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestSetupMiddleware_WithoutMetrics(t *testing.T) {
	e := echo.New()
	SetupMiddleware(e, nil)

	e.GET("/test", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, "existing-request-id")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "existing-request-id", rec.Header().Get(echo.HeaderXRequestID))
}

func TestRequestLogger(t *testing.T) {
	logs := observeLogs(t)
	e := echo.New()
	e.Use(RequestLogger())

	e.GET("/test", func(c echo.Context) error {
		// ハンドラー内のログにもリクエスト情報が付く
		logger.FromContext(c.Request().Context()).Info("handler log")
		return c.String(http.StatusOK, "success")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-1")
	req.Header.Set(HeaderUserID, "user-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	handlerLogs := logs.FilterMessage("handler log").All()
	require.Len(t, handlerLogs, 1)
	assert.Equal(t, "req-1", fieldsOf(handlerLogs[0])["request_id"])
	assert.Equal(t, "user-123", fieldsOf(handlerLogs[0])["user_id"])

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	assert.Equal(t, "/test", fieldsOf(completed[0])["route"])
	assert.EqualValues(t, http.StatusOK, fieldsOf(completed[0])["status"])
}

func TestRequestLogger_ClientError(t *testing.T) {
	logs := observeLogs(t)
	e := echo.New()
	e.Use(RequestLogger())

	e.GET("/error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad request")
	})

	req := httptest.NewRequest(http.MethodGet, "/error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	entries := logs.FilterMessage("client error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.EqualValues(t, http.StatusBadRequest, fieldsOf(entries[0])["status"])
}

func TestRequestLogger_ServerError(t *testing.T) {
	logs := observeLogs(t)
	e := echo.New()
	e.Use(RequestLogger())

	e.GET("/server-error", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "retry later")
	})

	req := httptest.NewRequest(http.MethodGet, "/server-error", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	entries := logs.FilterMessage("server error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestPrometheusMiddleware(t *testing.T) {
	e := echo.New()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	e.Use(PrometheusMiddleware(m))

	e.GET("/bookings/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", func(c echo.Context) error {
		return c.String(http.StatusOK, "metrics")
	})

	for _, path := range []string{"/bookings/a", "/bookings/b", "/bookings/missing", "/metrics"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	// ルート定義単位で集計される
	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/bookings/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/bookings/:id", "404")))
	// /metrics は記録しない
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestsTotal))
}
