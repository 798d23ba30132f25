package seat

import "time"

// Seat は座席エンティティを表す
// IsBooked は PENDING または CONFIRMED の予約に参照されている間だけ true になる
type Seat struct {
	ID         string
	ShowID     string
	SeatNumber string
	IsBooked   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewSeat は新しい座席を作成する
func NewSeat(showID, seatNumber string) *Seat {
	now := time.Now()
	return &Seat{
		ShowID:     showID,
		SeatNumber: seatNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsAvailable は座席が予約可能かを返す
func (s *Seat) IsAvailable() bool {
	return !s.IsBooked
}

// Validate は座席の検証を行う
func (s *Seat) Validate() error {
	if s.ShowID == "" {
		return ErrShowIDRequired
	}
	if s.SeatNumber == "" {
		return ErrSeatNumberRequired
	}
	return nil
}

// FirstUnavailable は確保済みの座席があればそのIDを返す
func FirstUnavailable(seats []*Seat) (string, bool) {
	for _, s := range seats {
		if !s.IsAvailable() {
			return s.ID, true
		}
	}
	return "", false
}
