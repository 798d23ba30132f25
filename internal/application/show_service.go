package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-show-booking/internal/domain/seat"
	"github.com/sanosuguru/go-show-booking/internal/domain/show"
	"github.com/sanosuguru/go-show-booking/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-show-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-show-booking/internal/pkg/logger"
)

const (
	availabilityCacheTTL = 30 * time.Second
	maxSeatsPerShow      = 10000
)

type ShowService struct {
	txManager transaction.Manager
	showRepo  show.Repository
	seatRepo  seat.Repository
	cache     redisinfra.AvailabilityCacheInterface
}

func NewShowService(txm transaction.Manager, shr show.Repository, sr seat.Repository, cache redisinfra.AvailabilityCacheInterface) *ShowService {
	return &ShowService{txManager: txm, showRepo: shr, seatRepo: sr, cache: cache}
}

type CreateShowInput struct {
	Name       string
	StartsAt   time.Time
	SeatCount  int
	SeatPrefix string
}

// CreateShow は公演と座席を1トランザクションで作成する
// 座席番号は SeatPrefix + 連番（例: A1, A2, ...）
func (s *ShowService) CreateShow(ctx context.Context, input CreateShowInput) (*show.Show, error) {
	sh := show.NewShow(input.Name, input.StartsAt, input.SeatCount)
	if err := sh.Validate(); err != nil {
		return nil, err
	}
	if input.SeatCount > maxSeatsPerShow {
		return nil, show.ErrInvalidTotalSeats
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.showRepo.Create(ctx, tx, sh); err != nil {
		return nil, err
	}

	prefix := input.SeatPrefix
	if prefix == "" {
		prefix = "S"
	}
	seats := make([]*seat.Seat, 0, input.SeatCount)
	for i := 1; i <= input.SeatCount; i++ {
		seats = append(seats, seat.NewSeat(sh.ID, fmt.Sprintf("%s%d", prefix, i)))
	}
	if err := s.seatRepo.CreateBulk(ctx, tx, seats); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	logger.FromContext(ctx).Info("公演を作成しました", zap.String("show_id", sh.ID), zap.Int("seats", sh.TotalSeats))
	return sh, nil
}

func (s *ShowService) GetShow(ctx context.Context, id string) (*show.Show, error) {
	return s.showRepo.GetByID(ctx, id)
}

func (s *ShowService) ListSeats(ctx context.Context, showID string) ([]*seat.Seat, error) {
	if _, err := s.showRepo.GetByID(ctx, showID); err != nil {
		return nil, err
	}
	return s.seatRepo.GetByShowID(ctx, showID)
}

// CountAvailable は公演の空席数を返す
// キャッシュにない場合は shows.available_seats を読み、キャッシュに保存する
func (s *ShowService) CountAvailable(ctx context.Context, showID string) (int, error) {
	log := logger.FromContext(ctx)

	if s.cache != nil {
		count, err := s.cache.GetAvailableCount(ctx, showID)
		if err == nil {
			log.Debug("キャッシュヒット", zap.String("show_id", showID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			log.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	sh, err := s.showRepo.GetByID(ctx, showID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetAvailableCount(ctx, showID, sh.AvailableSeats, availabilityCacheTTL); err != nil {
			log.Warn("キャッシュ保存エラー", zap.Error(err))
		}
	}
	return sh.AvailableSeats, nil
}
