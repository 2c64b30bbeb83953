package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.ViewHistoryStore = (*ViewHistory)(nil)

// ViewHistory keeps each user's recently viewed product ids in a Redis list,
// most recent at the head.
// Key format: viewedProducts:<user_id>
type ViewHistory struct {
	client *redis.Client
}

func NewViewHistory(client *redis.Client) *ViewHistory {
	return &ViewHistory{client: client}
}

// Push removes productID from the list, prepends it and trims the list to
// limit entries in a single transaction.
func (v *ViewHistory) Push(ctx context.Context, userID, productID string, limit int) error {
	if limit <= 0 {
		limit = domain.MaxRecentlyViewed
	}
	key := v.key(userID)

	_, err := v.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, key, 0, productID)
		pipe.LPush(ctx, key, productID)
		pipe.LTrim(ctx, key, 0, int64(limit-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("push view: %w", err)
	}
	return nil
}

func (v *ViewHistory) Recent(ctx context.Context, userID string) ([]string, error) {
	ids, err := v.client.LRange(ctx, v.key(userID), 0, int64(domain.MaxRecentlyViewed-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("recent views: %w", err)
	}
	return ids, nil
}

func (v *ViewHistory) key(userID string) string {
	return "viewedProducts:" + userID
}
