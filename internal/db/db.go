package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Checkout and callback handling hold short transactions; the pool is sized
// for many small writers rather than long-lived sessions.
const (
	maxConns     = 10
	maxIdleTime  = 3 * time.Minute
	maxLifetime  = time.Hour
	pingDeadline = 5 * time.Second
)

// Connect opens the store's pgx pool and fails fast when the server is
// unreachable, so a bad DSN surfaces at startup instead of on first request.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = maxIdleTime
	cfg.MaxConnLifetime = maxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingDeadline)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
