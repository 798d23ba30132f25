package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 予約作成の結果ラベル
const (
	BookingCreated           = "created"
	BookingSeatUnavailable   = "seat_unavailable"
	BookingValidationFailed  = "validation_failed"
	BookingPaymentInitFailed = "payment_init_failed"
	BookingTransientFailure  = "transient"
	BookingError             = "error"
)

// 決済通知の結果ラベル
const (
	PaymentConfirmed         = "confirmed"
	PaymentFailed            = "failed"
	PaymentSignatureMismatch = "signature_mismatch"
	PaymentAlreadyFinalized  = "already_finalized"
	PaymentExpired           = "expired"
	PaymentError             = "error"
)

// Metrics はアプリケーションのメトリクスを管理する
// nil レシーバでも各記録メソッドは何もしない
type Metrics struct {
	// HTTPリクエストの総数（method, path, status_code）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPリクエストのレイテンシ（method, path）
	HTTPRequestDuration *prometheus.HistogramVec

	// 予約作成の総数（result）
	BookingsTotal *prometheus.CounterVec

	// 決済通知の処理結果（kind: success/failure, result）
	PaymentNotificationsTotal *prometheus.CounterVec

	// 期限切れで回収された予約数
	ExpiredBookingsReclaimed prometheus.Counter

	// 解放された座席数（reason: failed/expired）
	SeatsReleasedTotal *prometheus.CounterVec

	// 分散ロックの操作時間（operation: acquire/release, status: success/failed）
	DistributedLockDuration *prometheus.HistogramVec

	// 決済ゲートウェイ呼び出しのレイテンシ（operation, status）
	GatewayRequestDuration *prometheus.HistogramVec

	// ライフサイクルイベントの配信数（type, status）
	EventsPublishedTotal *prometheus.CounterVec
}

// New は新しいMetricsインスタンスを作成し、デフォルトレジストリに登録する
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry は指定したレジストリにメトリクスを登録する
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking attempts by result",
			},
			[]string{"result"},
		),
		PaymentNotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_notifications_total",
				Help: "Total number of payment notifications by kind and result",
			},
			[]string{"kind", "result"},
		),
		ExpiredBookingsReclaimed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "expired_bookings_reclaimed_total",
				Help: "Total number of pending bookings moved to EXPIRED",
			},
		),
		SeatsReleasedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seats_released_total",
				Help: "Total number of seats returned to inventory",
			},
			[]string{"reason"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		GatewayRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payment_gateway_request_duration_seconds",
				Help:    "Payment gateway request latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation", "status"},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_events_published_total",
				Help: "Total number of booking lifecycle events published",
			},
			[]string{"type", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.PaymentNotificationsTotal,
		m.ExpiredBookingsReclaimed,
		m.SeatsReleasedTotal,
		m.DistributedLockDuration,
		m.GatewayRequestDuration,
		m.EventsPublishedTotal,
	)

	return m
}

// RecordBooking は予約作成の結果を記録する
func (m *Metrics) RecordBooking(result string) {
	if m == nil {
		return
	}
	m.BookingsTotal.WithLabelValues(result).Inc()
}

// RecordPaymentNotification は決済通知の処理結果を記録する
func (m *Metrics) RecordPaymentNotification(kind, result string) {
	if m == nil {
		return
	}
	m.PaymentNotificationsTotal.WithLabelValues(kind, result).Inc()
}

// RecordSeatsReleased は解放した座席数を記録する
func (m *Metrics) RecordSeatsReleased(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SeatsReleasedTotal.WithLabelValues(reason).Add(float64(n))
}

// RecordReclaimed は期限切れ回収件数を記録する
func (m *Metrics) RecordReclaimed(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ExpiredBookingsReclaimed.Add(float64(n))
}

// ObserveLock は分散ロック操作の所要時間を記録する
func (m *Metrics) ObserveLock(operation string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, statusLabel(ok)).Observe(d.Seconds())
}

// ObserveGateway は決済ゲートウェイ呼び出しの所要時間を記録する
func (m *Metrics) ObserveGateway(operation string, ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequestDuration.WithLabelValues(operation, statusLabel(ok)).Observe(d.Seconds())
}

// RecordEventPublished はイベント配信結果を記録する
func (m *Metrics) RecordEventPublished(eventType string, ok bool) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(eventType, statusLabel(ok)).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}

// デフォルトのメトリクスインスタンス
var defaultMetrics *Metrics

// Init はデフォルトのメトリクスインスタンスを初期化する
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get はデフォルトのメトリクスインスタンスを返す
func Get() *Metrics {
	return defaultMetrics
}
