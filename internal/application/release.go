package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-show-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
)

var errNotYetExpired = errors.New("予約はまだ有効期限内です")

// ReleaseResult は座席解放を伴う終端遷移の結果
type ReleaseResult struct {
	Booking *booking.Booking
	// ReleasedSeats は実際に解放された座席数
	ReleasedSeats int
	// AlreadyFinalized は予約が既に PENDING ではなく何も変更しなかったことを示す
	AlreadyFinalized bool
}

// releaser は FAILED / EXPIRED への遷移と座席返却を1トランザクションで行う
type releaser struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	seatRepo    seat.Repository
	showRepo    show.Repository
	cache       redisinfra.AvailabilityCacheInterface
	opts        options
}

// release は予約行をロックし、PENDING であれば to に遷移させて座席を返却する
// requireExpired の場合、有効期限を過ぎていなければ errNotYetExpired を返す
func (r *releaser) release(ctx context.Context, bookingID string, to booking.Status, now time.Time, requireExpired bool) (*ReleaseResult, error) {
	tx, err := r.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := r.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsPending() {
		return &ReleaseResult{Booking: b, AlreadyFinalized: true}, nil
	}
	if requireExpired && !b.IsExpiredAt(now) {
		return nil, errNotYetExpired
	}

	ok, err := r.bookingRepo.TransitionFromPending(ctx, tx, b.ID, to, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ReleaseResult{Booking: b, AlreadyFinalized: true}, nil
	}
	if err := b.Release(to, now); err != nil {
		return nil, err
	}

	released, err := r.seatRepo.Release(ctx, tx, b.SeatIDs)
	if err != nil {
		return nil, err
	}
	if released != len(b.SeatIDs) {
		logger.FromContext(ctx).Warn("解放された座席数が予約座席数と一致しません",
			zap.String("booking_id", b.ID),
			zap.Int("expected", len(b.SeatIDs)),
			zap.Int("released", released),
		)
	}
	if released > 0 {
		if err := r.showRepo.AdjustAvailable(ctx, tx, b.ShowID, released); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return &ReleaseResult{Booking: b, ReleasedSeats: released}, nil
}

// afterRelease はコミット後のキャッシュ無効化・メトリクス・イベント配信を行う
func (r *releaser) afterRelease(ctx context.Context, res *ReleaseResult, eventType booking.EventType, reason string) {
	r.invalidate(ctx, res.Booking.ShowID)
	r.opts.metrics.RecordSeatsReleased(reason, res.ReleasedSeats)
	r.publish(ctx, booking.NewLifecycleEvent(eventType, res.Booking, res.ReleasedSeats, r.opts.now()))
}

func (r *releaser) invalidate(ctx context.Context, showID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, showID); err != nil {
		logger.FromContext(ctx).Warn("キャッシュ無効化エラー", zap.String("show_id", showID), zap.Error(err))
	}
}

func (r *releaser) publish(ctx context.Context, ev booking.LifecycleEvent) {
	if err := r.opts.publisher.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn("イベント配信に失敗しました",
			zap.String("booking_id", ev.BookingID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
