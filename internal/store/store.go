package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"githubPushRelay/internal/config"
	"githubPushRelay/internal/model"

	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrUnknownBackend = errors.New("unknown registry backend")

// Registry is the set of device tokens a dispatch fans out to. Every dispatch
// reads a fresh Snapshot; nothing is cached across requests.
type Registry interface {
	Register(ctx context.Context, token string) (model.RegisterResult, error)
	Unregister(ctx context.Context, token string) (model.UnregisterResult, error)
	Snapshot(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// Open builds the registry selected by cfg. The returned close func releases
// any client or database handle and is never nil.
func Open(ctx context.Context, cfg *config.Config, lg *zap.Logger) (Registry, func() error, error) {
	noop := func() error { return nil }

	switch cfg.RegistryBackend {
	case config.BackendMemory:
		return NewMemory(), noop, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, noop, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		lg.Info("device registry", zap.String("backend", "redis"), zap.String("key", cfg.RedisKey))
		return NewRedis(rdb, cfg.RedisKey), rdb.Close, nil

	case config.BackendSQLite:
		db, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("sql open: %w", err)
		}
		reg, err := NewSQLite(ctx, db)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		lg.Info("device registry", zap.String("backend", "sqlite"), zap.String("path", cfg.SQLitePath))
		return reg, db.Close, nil
	}
	return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.RegistryBackend)
}
