package store

import (
	"context"
	"fmt"
	"time"

	"githubPushRelay/internal/model"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "devices:tokens"

// Redis keeps tokens in a sorted set scored by registration time so that
// snapshots come back in registration order.
type Redis struct {
	rdb *redis.Client
	key string
	now func() time.Time
}

func NewRedis(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultRedisKey
	}
	return &Redis{rdb: rdb, key: key, now: time.Now}
}

func (r *Redis) Register(ctx context.Context, token string) (model.RegisterResult, error) {
	var added *redis.IntCmd
	var card *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.ZAddNX(ctx, r.key, redis.Z{Score: float64(r.now().UnixNano()), Member: token})
		card = pipe.ZCard(ctx, r.key)
		return nil
	})
	if err != nil {
		return model.RegisterResult{}, fmt.Errorf("redis register: %w", err)
	}
	return model.RegisterResult{
		AlreadyRegistered: added.Val() == 0,
		Total:             int(card.Val()),
	}, nil
}

func (r *Redis) Unregister(ctx context.Context, token string) (model.UnregisterResult, error) {
	var removed *redis.IntCmd
	var card *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.ZRem(ctx, r.key, token)
		card = pipe.ZCard(ctx, r.key)
		return nil
	})
	if err != nil {
		return model.UnregisterResult{}, fmt.Errorf("redis unregister: %w", err)
	}
	return model.UnregisterResult{
		Found: removed.Val() > 0,
		Total: int(card.Val()),
	}, nil
}

func (r *Redis) Snapshot(ctx context.Context) ([]string, error) {
	tokens, err := r.rdb.ZRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis snapshot: %w", err)
	}
	return tokens, nil
}

func (r *Redis) Count(ctx context.Context) (int, error) {
	n, err := r.rdb.ZCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis count: %w", err)
	}
	return int(n), nil
}
