package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-show-booking/internal/api"
	"github.com/sanosuguru/go-show-booking/internal/api/handler"
	"github.com/sanosuguru/go-show-booking/internal/api/middleware"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Booking *handler.BookingHandler
	Payment *handler.PaymentHandler
	Show    *handler.ShowHandler
	Health  *handler.HealthHandler
}

// New はミドルウェアとルートを設定した Echo インスタンスを作成する
// m が nil の場合は /metrics を公開しない
func New(h Handlers, m *metrics.Metrics, metricsCfg middleware.MetricsConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	middleware.SetupMiddleware(e, m)

	e.GET("/health", h.Health.Check)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(metricsCfg))
	}

	v1 := e.Group("/api/v1")

	v1.POST("/shows", h.Show.Create)
	v1.GET("/shows/:id", h.Show.GetByID)
	v1.GET("/shows/:id/seats", h.Show.ListSeats)
	v1.GET("/shows/:id/seats/available/count", h.Show.CountAvailable)

	v1.POST("/bookings", h.Booking.Create)
	v1.GET("/bookings", h.Booking.GetUserBookings)
	v1.GET("/bookings/:id", h.Booking.GetByID)

	v1.POST("/payments/success", h.Payment.Success)
	v1.POST("/payments/failure", h.Payment.Failure)

	return e
}
