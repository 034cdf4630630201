package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is an implementation of Store keeping one row per key in a
// Postgres table.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

const defaultPostgresTable = "blog_store"

// NewPostgresStore connects to the database at dsn and ensures the backing
// table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PostgresStore{pool: pool, table: defaultPostgresTable}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key BYTEA PRIMARY KEY,
		value BYTEA NOT NULL
	)`, pgx.Identifier{s.table}.Sanitize())
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not ensure table %q exists: %w", s.table, err)
	}
	return s, nil
}

func (s *PostgresStore) Put(key, value []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, pgx.Identifier{s.table}.Sanitize())
	if _, err := s.pool.Exec(context.Background(), query, key, nonNil(value)); err != nil {
		return fmt.Errorf("could not put %.40q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Get(key []byte) (value []byte, err error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, pgx.Identifier{s.table}.Sanitize())
	err = s.pool.QueryRow(context.Background(), query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return nonNil(value), nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
