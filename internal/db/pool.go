// Package db provides the shared Postgres connection pool.
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of *pgxpool.Pool used by the store. pgxmock pools
// satisfy it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
	// Prepared maps statement names to SQL prepared on every new connection.
	Prepared map[string]string `yaml:"-" mapstructure:"-"`
}

const (
	defaultMaxConns = 10
	defaultMinConns = 1
)

// ParseConfig parses connString and applies pool sizing and statement
// preparation from cfg.
func ParseConfig(connString string, cfg *PoolConfig) (*pgxpool.Config, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "db: parse config")
	}

	pgxCfg.MaxConns = defaultMaxConns
	pgxCfg.MinConns = defaultMinConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	if cfg == nil {
		return pgxCfg, nil
	}
	if cfg.MaxConns > 0 {
		pgxCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pgxCfg.MinConns = min(cfg.MinConns, pgxCfg.MaxConns)
	}
	if len(cfg.Prepared) > 0 {
		prepared := cfg.Prepared
		pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			for name, sql := range prepared {
				if _, err := conn.Prepare(ctx, name, sql); err != nil {
					return eris.Wrapf(err, "db: prepare %s", name)
				}
			}
			return nil
		}
	}
	return pgxCfg, nil
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, connString string, cfg *PoolConfig) (*pgxpool.Pool, error) {
	pgxCfg, err := ParseConfig(connString, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "db: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "db: ping")
	}
	return pool, nil
}
