package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/domain/booking"
	"github.com/sanosuguru/go-show-booking/internal/domain/payment"
	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-show-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-show-booking/internal/pkg/metrics"
)

// 座席集合ロックの取得パラメータ
const (
	seatLockTTL        = 10 * time.Second
	seatLockRetries    = 3
	seatLockRetryDelay = 100 * time.Millisecond
)

type ReservationService struct {
	releaser
	lockManager redisinfra.LockManagerInterface
	gateway     payment.Gateway
	settings    BookingSettings
}

// NewReservationService は予約サービスを作成する
// lockManager と cache は nil でもよい（座席の排他は DB の行ロックで保証される）
func NewReservationService(
	txm transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	shr show.Repository,
	gw payment.Gateway,
	lm redisinfra.LockManagerInterface,
	cache redisinfra.AvailabilityCacheInterface,
	settings BookingSettings,
	opts ...Option,
) *ReservationService {
	return &ReservationService{
		releaser: releaser{
			txManager:   txm,
			bookingRepo: br,
			seatRepo:    sr,
			showRepo:    shr,
			cache:       cache,
			opts:        buildOptions(opts),
		},
		lockManager: lm,
		gateway:     gw,
		settings:    settings.withDefaults(),
	}
}

type ReserveInput struct {
	UserID  string
	ShowID  string
	SeatIDs []string
	// Amount は主通貨単位の金額
	Amount int64
}

type ReserveResult struct {
	Booking         *booking.Booking
	PaymentOrderRef string
	AmountMinor     int64
	Currency        string
	// OrderRefPersisted はオーダー参照を予約に保存できたか
	OrderRefPersisted bool
}

// Reserve は座席を確保して PENDING の予約を作成し、決済オーダーを発行する
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*ReserveResult, error) {
	log := logger.FromContext(ctx)

	b := booking.NewBooking(input.UserID, input.ShowID, input.SeatIDs, input.Amount,
		s.settings.Currency, s.opts.now(), s.settings.ReservationWindow)
	if err := b.Validate(s.settings.MaxSeatsPerBooking); err != nil {
		s.opts.metrics.RecordBooking(metrics.BookingValidationFailed)
		return nil, err
	}

	if err := s.reserveSeats(ctx, b); err != nil {
		s.opts.metrics.RecordBooking(classifyReserveError(err))
		return nil, err
	}
	s.invalidate(ctx, b.ShowID)

	order, err := s.gateway.CreateOrder(ctx, b.AmountMinorUnits(), b.Currency, b.ID)
	if err != nil {
		s.opts.metrics.RecordBooking(metrics.BookingPaymentInitFailed)
		log.Error("決済オーダーの作成に失敗しました", zap.String("booking_id", b.ID), zap.Error(err))
		return nil, &booking.PaymentInitiationError{BookingID: b.ID, Err: err}
	}
	b.PaymentOrderRef = order.ID

	persisted := true
	if err := s.bookingRepo.SetPaymentOrderRef(ctx, b.ID, order.ID); err != nil {
		persisted = false
		log.Warn("決済オーダー参照の保存に失敗しました",
			zap.String("booking_id", b.ID),
			zap.String("order_ref", order.ID),
			zap.Error(err),
		)
	}

	s.opts.metrics.RecordBooking(metrics.BookingCreated)
	log.Info("予約を作成しました",
		zap.String("booking_id", b.ID),
		zap.String("show_id", b.ShowID),
		zap.Int("seats", len(b.SeatIDs)),
	)

	return &ReserveResult{
		Booking:           b,
		PaymentOrderRef:   order.ID,
		AmountMinor:       b.AmountMinorUnits(),
		Currency:          b.Currency,
		OrderRefPersisted: persisted,
	}, nil
}

// reserveSeats は座席のロック・確保、空席数の減算、予約の作成を1トランザクションで行う
func (s *ReservationService) reserveSeats(ctx context.Context, b *booking.Booking) error {
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.SeatSetKey(b.ShowID, b.SeatIDs),
			seatLockTTL, seatLockRetries, seatLockRetryDelay)
		switch {
		case err == nil:
			defer func() {
				if err := lock.Release(ctx); err != nil {
					logger.FromContext(ctx).Debug("ロック解放に失敗", zap.Error(err))
				}
			}()
		case errors.Is(err, redisinfra.ErrLockNotAcquired):
			return fmt.Errorf("%w: 座席が他のユーザーによって処理中です", transaction.ErrTransient)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			logger.FromContext(ctx).Warn("分散ロックを使用せずに続行します", zap.Error(err))
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	seats, err := s.seatRepo.LockForUpdate(ctx, tx, b.ShowID, b.SeatIDs)
	if err != nil {
		return err
	}
	if id, taken := seat.FirstUnavailable(seats); taken {
		return fmt.Errorf("%w: %s", seat.ErrSeatUnavailable, id)
	}
	if err := s.seatRepo.MarkBooked(ctx, tx, b.SeatIDs); err != nil {
		return err
	}
	if err := s.showRepo.AdjustAvailable(ctx, tx, b.ShowID, -len(b.SeatIDs)); err != nil {
		return err
	}
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	return nil
}

func classifyReserveError(err error) string {
	switch {
	case errors.Is(err, seat.ErrSeatUnavailable):
		return metrics.BookingSeatUnavailable
	case errors.Is(err, seat.ErrSeatNotFound):
		return metrics.BookingValidationFailed
	case errors.Is(err, transaction.ErrTransient):
		return metrics.BookingTransientFailure
	default:
		return metrics.BookingError
	}
}

// BookingView は予約と座席の詳細
type BookingView struct {
	Booking *booking.Booking
	Seats   []*seat.Seat
}

func (s *ReservationService) GetBooking(ctx context.Context, id string) (*BookingView, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seats, err := s.seatRepo.GetByBookingID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("予約座席の取得に失敗: %w", err)
	}
	return &BookingView{Booking: b, Seats: seats}, nil
}

func (s *ReservationService) GetUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	if userID == "" {
		return nil, booking.NewValidationError("user_id", "ユーザーIDは必須です")
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookingRepo.GetByUserID(ctx, userID, limit, offset)
}

// ReclaimExpired は期限切れの PENDING 予約を EXPIRED にして座席を返却する
// 予約ごとに独立したトランザクションで処理し、失敗した予約は次回の実行で再試行される
func (s *ReservationService) ReclaimExpired(ctx context.Context) (int, error) {
	now := s.opts.now()
	expired, err := s.bookingRepo.ListExpiredPending(ctx, now, s.settings.ReclaimBatchSize)
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約の取得に失敗: %w", err)
	}

	log := logger.FromContext(ctx)
	count := 0
	for _, b := range expired {
		if err := ctx.Err(); err != nil {
			s.opts.metrics.RecordReclaimed(count)
			return count, err
		}

		res, err := s.release(ctx, b.ID, booking.StatusExpired, now, true)
		if errors.Is(err, errNotYetExpired) {
			continue
		}
		if err != nil {
			log.Error("期限切れ予約の回収に失敗しました", zap.String("booking_id", b.ID), zap.Error(err))
			continue
		}
		if res.AlreadyFinalized {
			continue
		}

		count++
		s.afterRelease(ctx, res, booking.EventExpired, "expired")
	}

	s.opts.metrics.RecordReclaimed(count)
	return count, nil
}
