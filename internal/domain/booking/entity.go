package booking

import (
	"math"
	"time"
)

// Status は予約の状態を表す
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
	StatusExpired   Status = "EXPIRED"
)

// IsFinal は終端状態かを返す
func (s Status) IsFinal() bool {
	return s == StatusConfirmed || s == StatusFailed || s == StatusExpired
}

// HoldsSeats は座席を保持している状態かを返す
func (s Status) HoldsSeats() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Booking は予約エンティティを表す
// 座席は予約作成時に一度だけ関連付けられ、以後変更されない
type Booking struct {
	ID               string
	UserID           string
	ShowID           string
	SeatIDs          []string
	Amount           int64
	Currency         string
	Status           Status
	ExpiresAt        time.Time
	PaymentOrderRef  string
	PaymentID        string
	PaymentSignature string
	ConfirmedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultReservationWindow は仮押さえの有効期間（デフォルト15分）
const DefaultReservationWindow = 15 * time.Minute

// DefaultMaxSeatsPerBooking は1予約あたりの最大座席数
const DefaultMaxSeatsPerBooking = 5

// NewBooking は保留中の予約を作成する
func NewBooking(userID, showID string, seatIDs []string, amount int64, currency string, now time.Time, window time.Duration) *Booking {
	ids := make([]string, len(seatIDs))
	copy(ids, seatIDs)
	return &Booking{
		UserID:    userID,
		ShowID:    showID,
		SeatIDs:   ids,
		Amount:    amount,
		Currency:  currency,
		Status:    StatusPending,
		ExpiresAt: now.Add(window),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MaxAmount は最小通貨単位に換算しても int64 に収まる金額の上限
const MaxAmount = math.MaxInt64 / 100

// AmountMinorUnits は決済ゲートウェイに渡す最小通貨単位の金額を返す
func (b *Booking) AmountMinorUnits() int64 {
	return b.Amount * 100
}

// IsPending は予約が保留中かを返す
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

// IsExpiredAt は指定時刻で有効期限を過ぎているかを返す
// expires_at ちょうどの時刻は期限切れとする。確定と回収の境界が重ならない
func (b *Booking) IsExpiredAt(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// CanConfirm は決済成功を反映できるかを判定する
// 期限切れの予約は座席が解放済みの可能性があるため確定しない
func (b *Booking) CanConfirm(now time.Time) error {
	switch b.Status {
	case StatusPending:
	case StatusExpired:
		return ErrBookingExpired
	default:
		return ErrAlreadyFinalized
	}
	if b.IsExpiredAt(now) {
		return ErrBookingExpired
	}
	return nil
}

// Confirm は予約を確定状態にする
func (b *Booking) Confirm(paymentID, signature string, now time.Time) error {
	if err := b.CanConfirm(now); err != nil {
		return err
	}
	b.Status = StatusConfirmed
	b.PaymentID = paymentID
	b.PaymentSignature = signature
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

// Release は保留中の予約を FAILED または EXPIRED にする
func (b *Booking) Release(to Status, now time.Time) error {
	if to != StatusFailed && to != StatusExpired {
		return ErrInvalidTransition
	}
	if !b.IsPending() {
		return ErrAlreadyFinalized
	}
	b.Status = to
	b.UpdatedAt = now
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate(maxSeats int) error {
	if b.UserID == "" {
		return NewValidationError("user_id", "ユーザーIDは必須です")
	}
	if b.ShowID == "" {
		return NewValidationError("show_id", "公演IDは必須です")
	}
	if len(b.SeatIDs) == 0 {
		return NewValidationError("seat_ids", "座席IDは必須です")
	}
	if len(b.SeatIDs) > maxSeats {
		return NewValidationError("seat_ids", "座席数が上限を超えています")
	}
	seen := make(map[string]struct{}, len(b.SeatIDs))
	for _, id := range b.SeatIDs {
		if id == "" {
			return NewValidationError("seat_ids", "空の座席IDが含まれています")
		}
		if _, dup := seen[id]; dup {
			return NewValidationError("seat_ids", "座席IDが重複しています")
		}
		seen[id] = struct{}{}
	}
	if b.Amount <= 0 {
		return NewValidationError("amount", "金額は1以上である必要があります")
	}
	if b.Amount > MaxAmount {
		return NewValidationError("amount", "金額が上限を超えています")
	}
	return nil
}
