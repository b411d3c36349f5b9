package db

import (
	"context"
	"time"

	"backend-yatube/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const maxConns = 20

var (
	newPoolFn = func(ctx context.Context, url string) (*pgxpool.Pool, error) {
		pcfg, err := pgxpool.ParseConfig(url)
		if err != nil {
			return nil, err
		}
		pcfg.MaxConns = maxConns
		return pgxpool.NewWithConfig(ctx, pcfg)
	}
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
