package booking

import (
	"errors"
	"fmt"
)

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound   = errors.New("予約が見つかりません")
	ErrAlreadyFinalized  = errors.New("予約は既に確定または終了しています")
	ErrBookingExpired    = errors.New("予約の有効期限が切れています")
	ErrInvalidTransition = errors.New("不正な状態遷移です")
	ErrSignatureMismatch = errors.New("決済署名の検証に失敗しました")
	ErrPaymentInitiation = errors.New("決済オーダーの作成に失敗しました")
	ErrValidation        = errors.New("入力値が不正です")
)

// ValidationError は入力検証エラー
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError はValidationErrorを作成する
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is は errors.Is(err, ErrValidation) を満たす
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PaymentInitiationError は座席確保後に決済オーダー作成が失敗したことを表す
// 予約は PENDING のまま残り、期限切れ回収で解放される
type PaymentInitiationError struct {
	BookingID string
	Err       error
}

func (e *PaymentInitiationError) Error() string {
	return fmt.Sprintf("%s (booking_id=%s): %v", ErrPaymentInitiation.Error(), e.BookingID, e.Err)
}

func (e *PaymentInitiationError) Is(target error) bool {
	return target == ErrPaymentInitiation
}

func (e *PaymentInitiationError) Unwrap() error {
	return e.Err
}
