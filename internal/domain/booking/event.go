package booking

import "time"

// EventType は予約ライフサイクルイベントの種別
type EventType string

const (
	EventConfirmed EventType = "booking.confirmed"
	EventFailed    EventType = "booking.failed"
	EventExpired   EventType = "booking.expired"
)

// LifecycleEvent は予約の終端遷移を外部に通知するためのイベント
type LifecycleEvent struct {
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	BookingID     string    `json:"booking_id"`
	UserID        string    `json:"user_id"`
	ShowID        string    `json:"show_id"`
	SeatIDs       []string  `json:"seat_ids"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        Status    `json:"status"`
	ReleasedSeats int       `json:"released_seats"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewLifecycleEvent は予約の現在状態からイベントを作成する
func NewLifecycleEvent(t EventType, b *Booking, releasedSeats int, at time.Time) LifecycleEvent {
	return LifecycleEvent{
		Type:          t,
		BookingID:     b.ID,
		UserID:        b.UserID,
		ShowID:        b.ShowID,
		SeatIDs:       b.SeatIDs,
		Amount:        b.Amount,
		Currency:      b.Currency,
		Status:        b.Status,
		ReleasedSeats: releasedSeats,
		OccurredAt:    at,
	}
}
