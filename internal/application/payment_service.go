package application

import (
	"context"
	"errors"
	"fmt"

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

// PaymentService は決済ゲートウェイからの結果通知を予約に反映する
type PaymentService struct {
	releaser
	secret string
}

func NewPaymentService(
	txm transaction.Manager,
	br booking.Repository,
	sr seat.Repository,
	shr show.Repository,
	cache redisinfra.AvailabilityCacheInterface,
	secret string,
	opts ...Option,
) *PaymentService {
	return &PaymentService{
		releaser: releaser{
			txManager:   txm,
			bookingRepo: br,
			seatRepo:    sr,
			showRepo:    shr,
			cache:       cache,
			opts:        buildOptions(opts),
		},
		secret: secret,
	}
}

type ConfirmSuccessInput struct {
	BookingID string
	PaymentID string
	OrderRef  string
	Signature string
}

// ConfirmSuccess は署名を検証し、PENDING かつ期限内の予約を CONFIRMED にする
func (s *PaymentService) ConfirmSuccess(ctx context.Context, input ConfirmSuccessInput) (*booking.Booking, error) {
	b, err := s.confirm(ctx, input)
	s.opts.metrics.RecordPaymentNotification("success", classifyConfirmError(err))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, booking.NewLifecycleEvent(booking.EventConfirmed, b, 0, s.opts.now()))
	logger.FromContext(ctx).Info("予約を確定しました",
		zap.String("booking_id", b.ID),
		zap.String("payment_id", b.PaymentID),
	)
	return b, nil
}

func (s *PaymentService) confirm(ctx context.Context, input ConfirmSuccessInput) (*booking.Booking, error) {
	if input.BookingID == "" {
		return nil, booking.NewValidationError("booking_id", "予約IDは必須です")
	}
	if !payment.VerifySignature(s.secret, input.OrderRef, input.PaymentID, input.Signature) {
		return nil, booking.ErrSignatureMismatch
	}

	now := s.opts.now()

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, input.BookingID)
	if err != nil {
		return nil, err
	}
	// 署名は予約に紐付いたオーダーに対するものでなければならない
	// オーダー参照が未保存の予約は決済が開始されていないため確定させない
	if b.PaymentOrderRef == "" || b.PaymentOrderRef != input.OrderRef {
		return nil, booking.ErrSignatureMismatch
	}
	if err := b.Confirm(input.PaymentID, input.Signature, now); err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.MarkConfirmed(ctx, tx, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, booking.ErrAlreadyFinalized
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return b, nil
}

// ConfirmFailure は PENDING の予約を FAILED にして座席を返却する
// 既に終端状態の予約に対しては何も変更せず AlreadyFinalized を返す
func (s *PaymentService) ConfirmFailure(ctx context.Context, bookingID string) (*ReleaseResult, error) {
	if bookingID == "" {
		return nil, booking.NewValidationError("booking_id", "予約IDは必須です")
	}

	res, err := s.release(ctx, bookingID, booking.StatusFailed, s.opts.now(), false)
	if err != nil {
		s.opts.metrics.RecordPaymentNotification("failure", metrics.PaymentError)
		return nil, err
	}
	if res.AlreadyFinalized {
		s.opts.metrics.RecordPaymentNotification("failure", metrics.PaymentAlreadyFinalized)
		return res, nil
	}

	s.afterRelease(ctx, res, booking.EventFailed, "failed")
	s.opts.metrics.RecordPaymentNotification("failure", metrics.PaymentFailed)
	logger.FromContext(ctx).Info("決済失敗により座席を解放しました",
		zap.String("booking_id", res.Booking.ID),
		zap.Int("released_seats", res.ReleasedSeats),
	)
	return res, nil
}

func classifyConfirmError(err error) string {
	switch {
	case err == nil:
		return metrics.PaymentConfirmed
	case errors.Is(err, booking.ErrSignatureMismatch):
		return metrics.PaymentSignatureMismatch
	case errors.Is(err, booking.ErrBookingExpired):
		return metrics.PaymentExpired
	case errors.Is(err, booking.ErrAlreadyFinalized):
		return metrics.PaymentAlreadyFinalized
	default:
		return metrics.PaymentError
	}
}
