package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
)

// BookingReclaimer は期限切れ予約を回収するインターフェース
type BookingReclaimer interface {
	ReclaimExpired(ctx context.Context) (int, error)
}

// ExpiredBookingReclaimer は期限切れの PENDING 予約を定期的に回収するワーカー
type ExpiredBookingReclaimer struct {
	reclaimer BookingReclaimer
	interval  time.Duration
	started   atomic.Bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewExpiredBookingReclaimer は新しいワーカーを作成
func NewExpiredBookingReclaimer(r BookingReclaimer, interval time.Duration) *ExpiredBookingReclaimer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpiredBookingReclaimer{
		reclaimer: r,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start はワーカーを開始し、停止されるまでブロックする
// 再起動直後に取り残された予約を拾うため、起動時に一度回収する
func (w *ExpiredBookingReclaimer) Start(ctx context.Context) {
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	defer close(w.doneCh)

	logger.Info("期限切れ予約回収ワーカー開始", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ予約回収ワーカー停止（コンテキストキャンセル）")
			return
		case <-w.stopCh:
			logger.Info("期限切れ予約回収ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop はワーカーを停止し、実行中の回収の完了を待つ
func (w *ExpiredBookingReclaimer) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	if w.started.Load() {
		<-w.doneCh
	}
}

func (w *ExpiredBookingReclaimer) sweep(ctx context.Context) {
	log := logger.Get().With(zap.String("worker", "booking_reclaimer"))
	ctx = logger.WithContext(ctx, log)
	start := time.Now()

	count, err := w.reclaimer.ReclaimExpired(ctx)
	if err != nil {
		log.Error("期限切れ予約の回収に失敗", zap.Int("reclaimed", count), zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れ予約を回収", zap.Int("count", count), zap.Duration("elapsed", time.Since(start)))
	} else {
		log.Debug("期限切れ予約なし")
	}
}
