package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/sanosuguru/go-show-booking/internal/api/handler"
	"github.com/sanosuguru/go-show-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

func testHandlers() Handlers {
	return Handlers{
		Booking: handler.NewBookingHandler(nil),
		Payment: handler.NewPaymentHandler(nil),
		Show:    handler.NewShowHandler(nil),
		Health:  handler.NewHealthHandler(),
	}
}

func TestNew_Routes(t *testing.T) {
	e := New(testHandlers(), nil, middleware.MetricsConfig{})

	routes := map[string]bool{}
	for _, r := range e.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"GET /health",
		"POST /api/v1/shows",
		"GET /api/v1/shows/:id",
		"GET /api/v1/shows/:id/seats",
		"GET /api/v1/shows/:id/seats/available/count",
		"POST /api/v1/bookings",
		"GET /api/v1/bookings",
		"GET /api/v1/bookings/:id",
		"POST /api/v1/payments/success",
		"POST /api/v1/payments/failure",
	} {
		assert.True(t, routes[want], "ルートが未登録: %s", want)
	}
	assert.False(t, routes["GET /metrics"], "メトリクス無効時は公開しない")
}

func TestNew_Health(t *testing.T) {
	e := New(testHandlers(), nil, middleware.MetricsConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestNew_MetricsAuth(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	e := New(testHandlers(), m, middleware.MetricsConfig{User: "admin", Password: "secret"})

	t.Run("認証なしは401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("正しい認証情報は200", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		req.SetBasicAuth("admin", "secret")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestNew_NotFoundIsJSON(t *testing.T) {
	e := New(testHandlers(), nil, middleware.MetricsConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":404`)
}
