package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
	redisinfra "github.com/sanosuguru/go-show-booking/internal/infrastructure/redis"
)

func TestShowService_CreateShow(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()
	startsAt := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)

	tx := d.expectTx(ctx, true)
	d.showRepo.On("Create", ctx, tx, mock.AnythingOfType("*show.Show")).Run(func(args mock.Arguments) {
		args.Get(2).(*show.Show).ID = "show-1"
	}).Return(nil)
	d.seatRepo.On("CreateBulk", ctx, tx, mock.MatchedBy(func(seats []*seat.Seat) bool {
		if len(seats) != 3 {
			return false
		}
		for i, s := range seats {
			if s.ShowID != "show-1" || s.SeatNumber != []string{"A1", "A2", "A3"}[i] || s.IsBooked {
				return false
			}
		}
		return true
	})).Return(nil)

	sh, err := d.shows.CreateShow(ctx, CreateShowInput{Name: "Concert", StartsAt: startsAt, SeatCount: 3, SeatPrefix: "A"})

	require.NoError(t, err)
	assert.Equal(t, "show-1", sh.ID)
	assert.Equal(t, 3, sh.TotalSeats)
	assert.Equal(t, 3, sh.AvailableSeats)
	tx.AssertExpectations(t)
	d.seatRepo.AssertExpectations(t)
}

func TestShowService_CreateShow_DefaultPrefix(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()

	tx := d.expectTx(ctx, true)
	d.showRepo.On("Create", ctx, tx, mock.Anything).Return(nil)
	d.seatRepo.On("CreateBulk", ctx, tx, mock.MatchedBy(func(seats []*seat.Seat) bool {
		return len(seats) == 1 && seats[0].SeatNumber == "S1"
	})).Return(nil)

	_, err := d.shows.CreateShow(ctx, CreateShowInput{Name: "Solo", SeatCount: 1})

	require.NoError(t, err)
}

func TestShowService_CreateShow_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateShowInput
		wantErr error
	}{
		{"公演名なし", CreateShowInput{SeatCount: 10}, show.ErrShowNameRequired},
		{"座席数0", CreateShowInput{Name: "Show", SeatCount: 0}, show.ErrInvalidTotalSeats},
		{"座席数上限超過", CreateShowInput{Name: "Show", SeatCount: maxSeatsPerShow + 1}, show.ErrInvalidTotalSeats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()

			_, err := d.shows.CreateShow(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			d.txManager.AssertNotCalled(t, "Begin", mock.Anything)
		})
	}
}

func TestShowService_CreateShow_SeatInsertFails(t *testing.T) {
	d := newTestDeps()
	ctx := context.Background()

	tx := d.expectTx(ctx, false)
	d.showRepo.On("Create", ctx, tx, mock.Anything).Return(nil)
	d.seatRepo.On("CreateBulk", ctx, tx, mock.Anything).Return(errors.New("insert failed"))

	_, err := d.shows.CreateShow(ctx, CreateShowInput{Name: "Show", SeatCount: 5})

	require.Error(t, err)
	tx.AssertNotCalled(t, "Commit")
	tx.AssertCalled(t, "Rollback")
}

func TestShowService_ListSeats(t *testing.T) {
	t.Run("正常系", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		d.showRepo.On("GetByID", ctx, "show-1").Return(&show.Show{ID: "show-1"}, nil)
		d.seatRepo.On("GetByShowID", ctx, "show-1").Return(availableSeats("show-1", "1", "2"), nil)

		seats, err := d.shows.ListSeats(ctx, "show-1")

		require.NoError(t, err)
		assert.Len(t, seats, 2)
	})

	t.Run("存在しない公演", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		d.showRepo.On("GetByID", ctx, "missing").Return(nil, show.ErrShowNotFound)

		_, err := d.shows.ListSeats(ctx, "missing")

		assert.ErrorIs(t, err, show.ErrShowNotFound)
		d.seatRepo.AssertNotCalled(t, "GetByShowID", mock.Anything, mock.Anything)
	})
}

func TestShowService_CountAvailable(t *testing.T) {
	t.Run("キャッシュヒット", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		d.cache.On("GetAvailableCount", ctx, "show-1").Return(42, nil)

		count, err := d.shows.CountAvailable(ctx, "show-1")

		require.NoError(t, err)
		assert.Equal(t, 42, count)
		d.showRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("キャッシュミス時はDBから取得して保存", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		d.cache.On("GetAvailableCount", ctx, "show-1").Return(0, redisinfra.ErrCacheMiss)
		d.showRepo.On("GetByID", ctx, "show-1").Return(&show.Show{ID: "show-1", TotalSeats: 100, AvailableSeats: 58}, nil)
		d.cache.On("SetAvailableCount", ctx, "show-1", 58, 30*time.Second).Return(nil)

		count, err := d.shows.CountAvailable(ctx, "show-1")

		require.NoError(t, err)
		assert.Equal(t, 58, count)
		d.cache.AssertExpectations(t)
	})

	t.Run("キャッシュ障害時もDBから返す", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		d.cache.On("GetAvailableCount", ctx, "show-1").Return(0, errors.New("redis down"))
		d.showRepo.On("GetByID", ctx, "show-1").Return(&show.Show{ID: "show-1", AvailableSeats: 7}, nil)
		d.cache.On("SetAvailableCount", ctx, "show-1", 7, mock.Anything).Return(errors.New("redis down"))

		count, err := d.shows.CountAvailable(ctx, "show-1")

		require.NoError(t, err)
		assert.Equal(t, 7, count)
	})

	t.Run("キャッシュなし", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		svc := NewShowService(d.txManager, d.showRepo, d.seatRepo, nil)
		d.showRepo.On("GetByID", ctx, "show-1").Return(&show.Show{ID: "show-1", AvailableSeats: 3}, nil)

		count, err := svc.CountAvailable(ctx, "show-1")

		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("存在しない公演", func(t *testing.T) {
		d := newTestDeps()
		ctx := context.Background()
		d.cache.On("GetAvailableCount", ctx, "missing").Return(0, redisinfra.ErrCacheMiss)
		d.showRepo.On("GetByID", ctx, "missing").Return(nil, show.ErrShowNotFound)

		_, err := d.shows.CountAvailable(ctx, "missing")

		assert.ErrorIs(t, err, show.ErrShowNotFound)
	})
}
