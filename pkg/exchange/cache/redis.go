package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joripage/exchange-core/pkg/exchange/model"
)

const snapshotTTL = 24 * time.Hour

// MarketDataCache mirrors the latest market-data snapshot and book per
// symbol into redis so read-heavy consumers never touch the engine. It is
// wired as a dispatcher subscriber and receives every committed event.
type MarketDataCache struct {
	client *redis.Client
}

func NewMarketDataCache(client *redis.Client) *MarketDataCache {
	return &MarketDataCache{client: client}
}

func snapshotKey(symbol string) string {
	return fmt.Sprintf("marketdata:%s", symbol)
}

func bookKey(symbol string) string {
	return fmt.Sprintf("book:%s", symbol)
}

// Publish implements broadcast.Broadcaster. Events that carry no cacheable
// view are ignored.
func (c *MarketDataCache) Publish(ctx context.Context, ev *model.Event) error {
	switch ev.Type {
	case model.EventTypeMarketData:
		return c.set(ctx, snapshotKey(ev.Symbol), ev.MarketData)
	case model.EventTypeBook:
		return c.set(ctx, bookKey(ev.Symbol), ev.Book)
	default:
		return nil
	}
}

func (c *MarketDataCache) set(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, snapshotTTL).Err()
}

// Snapshot reads back the cached market-data view; (nil, nil) on a miss.
func (c *MarketDataCache) Snapshot(ctx context.Context, symbol string) (*model.MarketDataSnapshot, error) {
	payload, err := c.client.Get(ctx, snapshotKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap model.MarketDataSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Book reads back the cached book view; (nil, nil) on a miss.
func (c *MarketDataCache) Book(ctx context.Context, symbol string) (*model.BookSnapshot, error) {
	payload, err := c.client.Get(ctx, bookKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap model.BookSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
