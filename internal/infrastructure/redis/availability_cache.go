package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// AvailabilityCacheInterface は公演の空席数キャッシュを抽象化する
type AvailabilityCacheInterface interface {
	GetAvailableCount(ctx context.Context, showID string) (int, error)
	SetAvailableCount(ctx context.Context, showID string, count int, ttl time.Duration) error
	Invalidate(ctx context.Context, showID string) error
}

// AvailabilityCache は公演の空席数を Redis にキャッシュする
// 正本は shows.available_seats で、座席の確保・解放のたびに無効化される
type AvailabilityCache struct {
	client redis.Cmdable
}

func NewAvailabilityCache(client redis.Cmdable) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

func (c *AvailabilityCache) GetAvailableCount(ctx context.Context, showID string) (int, error) {
	val, err := c.client.Get(ctx, availableCountKey(showID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

func (c *AvailabilityCache) SetAvailableCount(ctx context.Context, showID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, availableCountKey(showID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) Invalidate(ctx context.Context, showID string) error {
	if err := c.client.Del(ctx, availableCountKey(showID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availableCountKey(showID string) string {
	return "shows:available:" + showID
}

var _ AvailabilityCacheInterface = (*AvailabilityCache)(nil)
