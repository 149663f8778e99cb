package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores catalog listings per generation. Invalidate starts a new
// generation, making every previously stored listing unreachable. Callers
// read the generation before querying the source of truth and store the
// result under that same generation.
type Cache interface {
	Generation(ctx context.Context) (int64, error)
	GetList(ctx context.Context, gen int64, filter Filter) ([]*Entity, bool)
	SetList(ctx context.Context, gen int64, filter Filter, items []*Entity)
	Invalidate(ctx context.Context) error
}

// NopCache never hits.
type NopCache struct{}

func (NopCache) Generation(context.Context) (int64, error)                { return 0, nil }
func (NopCache) GetList(context.Context, int64, Filter) ([]*Entity, bool) { return nil, false }
func (NopCache) SetList(context.Context, int64, Filter, []*Entity)        {}
func (NopCache) Invalidate(context.Context) error                         { return nil }

// RedisCache keys listings by a generation counter; Invalidate bumps the
// counter instead of scanning keys, and stale generations expire by TTL.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "entities"}
}

type cachedEntity struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	ConsoleType *string   `json:"console_type,omitempty"`
	Color       *string   `json:"color,omitempty"`
}

func (c *RedisCache) genKey() string {
	return c.prefix + ":gen"
}

func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, c.genKey()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (c *RedisCache) key(gen int64, f Filter) string {
	archived := "any"
	if f.Archived != nil {
		archived = strconv.FormatBool(*f.Archived)
	}
	return fmt.Sprintf("%s:list:%d:%s:%s", c.prefix, gen, f.Kind, archived)
}

func (c *RedisCache) GetList(ctx context.Context, gen int64, filter Filter) ([]*Entity, bool) {
	bs, err := c.rdb.Get(ctx, c.key(gen, filter)).Bytes()
	if err != nil {
		return nil, false
	}

	var records []cachedEntity
	if err := json.Unmarshal(bs, &records); err != nil {
		return nil, false
	}
	items := make([]*Entity, 0, len(records))
	for _, rec := range records {
		details, err := unflatten(rec.Kind, rec.ConsoleType, rec.Color)
		if err != nil {
			return nil, false
		}
		items = append(items, &Entity{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Archived:    rec.Archived,
			CreatedAt:   rec.CreatedAt,
			Details:     details,
		})
	}
	return items, true
}

// SetList stores items under gen. A listing read before an invalidation lands
// in the superseded generation and is never served.
func (c *RedisCache) SetList(ctx context.Context, gen int64, filter Filter, items []*Entity) {
	records := make([]cachedEntity, len(items))
	for i, e := range items {
		consoleType, color := flatten(e.Details)
		records[i] = cachedEntity{
			ID:          e.ID,
			Kind:        e.Kind(),
			Name:        e.Name,
			Description: e.Description,
			Archived:    e.Archived,
			CreatedAt:   e.CreatedAt,
			ConsoleType: consoleType,
			Color:       color,
		}
	}
	bs, err := json.Marshal(records)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, c.key(gen, filter), bs, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}
