package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var pgBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PGKV is a KV backed by a Postgres table, used when several machines
// share one history.
type PGKV struct {
	pool *pgxpool.Pool
}

// OpenPostgresKV connects to dsn and creates the kv table if needed.
func OpenPostgresKV(ctx context.Context, dsn string) (*PGKV, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &PGKV{pool: pool}, nil
}

// Close releases the pool.
func (k *PGKV) Close() {
	k.pool.Close()
}

func (k *PGKV) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := pgBuilder.Select("value").From("kv").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var value []byte
	err = k.pool.QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (k *PGKV) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := pgBuilder.Insert("kv").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := k.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (k *PGKV) Delete(ctx context.Context, key string) error {
	query, args, err := pgBuilder.Delete("kv").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := k.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
