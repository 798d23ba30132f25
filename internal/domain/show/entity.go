package show

import "time"

// Show は公演エンティティを表す
// AvailableSeats は未予約座席数と常に一致し、座席の更新と同じトランザクションで変更される
type Show struct {
	ID             string
	Name           string
	StartsAt       time.Time
	TotalSeats     int
	AvailableSeats int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewShow は新しい公演を作成する
func NewShow(name string, startsAt time.Time, totalSeats int) *Show {
	now := time.Now()
	return &Show{
		Name:           name,
		StartsAt:       startsAt,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate は公演の検証を行う
func (s *Show) Validate() error {
	if s.Name == "" {
		return ErrShowNameRequired
	}
	if s.TotalSeats <= 0 {
		return ErrInvalidTotalSeats
	}
	return nil
}

// IsSoldOut は空席がないかを返す
func (s *Show) IsSoldOut() bool {
	return s.AvailableSeats == 0
}
