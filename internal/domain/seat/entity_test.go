package seat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeat(t *testing.T) {
	s := NewSeat("show-123", "A-1")

	assert.Equal(t, "show-123", s.ShowID)
	assert.Equal(t, "A-1", s.SeatNumber)
	assert.False(t, s.IsBooked)
	assert.True(t, s.IsAvailable())
	assert.NotZero(t, s.CreatedAt)
}

func TestSeat_Validate(t *testing.T) {
	tests := []struct {
		name    string
		seat    *Seat
		wantErr error
	}{
		{"有効な座席", &Seat{ShowID: "show-1", SeatNumber: "A-1"}, nil},
		{"公演ID未指定", &Seat{SeatNumber: "A-1"}, ErrShowIDRequired},
		{"座席番号未指定", &Seat{ShowID: "show-1"}, ErrSeatNumberRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seat.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFirstUnavailable(t *testing.T) {
	t.Run("全席空いている", func(t *testing.T) {
		seats := []*Seat{{ID: "s1"}, {ID: "s2"}}
		_, found := FirstUnavailable(seats)
		assert.False(t, found)
	})

	t.Run("予約済みの座席を返す", func(t *testing.T) {
		seats := []*Seat{{ID: "s1"}, {ID: "s2", IsBooked: true}, {ID: "s3", IsBooked: true}}
		id, found := FirstUnavailable(seats)
		assert.True(t, found)
		assert.Equal(t, "s2", id)
	})
}
