package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-show-booking/internal/config"
	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

// EventPublisher は予約ライフサイクルイベントの配信先
// 配信はコミット後のベストエフォートで、失敗しても予約の状態は変わらない
type EventPublisher interface {
	Publish(ctx context.Context, ev booking.LifecycleEvent) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, booking.LifecycleEvent) error { return nil }

// BookingSettings は予約ライフサイクルの設定値
type BookingSettings struct {
	ReservationWindow  time.Duration
	MaxSeatsPerBooking int
	ReclaimBatchSize   int
	Currency           string
}

// SettingsFromConfig は設定ファイルの値から BookingSettings を作成する
func SettingsFromConfig(cfg *config.BookingConfig) BookingSettings {
	return BookingSettings{
		ReservationWindow:  cfg.ReservationWindow,
		MaxSeatsPerBooking: cfg.MaxSeatsPerBooking,
		ReclaimBatchSize:   cfg.ReclaimBatchSize,
		Currency:           cfg.Currency,
	}.withDefaults()
}

func (s BookingSettings) withDefaults() BookingSettings {
	if s.ReservationWindow <= 0 {
		s.ReservationWindow = booking.DefaultReservationWindow
	}
	if s.MaxSeatsPerBooking <= 0 {
		s.MaxSeatsPerBooking = booking.DefaultMaxSeatsPerBooking
	}
	if s.ReclaimBatchSize <= 0 {
		s.ReclaimBatchSize = 500
	}
	if s.Currency == "" {
		s.Currency = "INR"
	}
	return s
}

type options struct {
	publisher EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option はサービスの任意の依存を設定する
type Option func(*options)

func WithPublisher(p EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock は現在時刻の取得方法を差し替える
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{publisher: nopPublisher{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
