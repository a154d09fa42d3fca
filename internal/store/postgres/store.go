// Package postgres provides a Postgres-backed listing store for shared
// deployments where several operators review the same crawl output.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobtrawler/internal/listing"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// querier is the subset of pgxpool.Pool the store needs, extracted so tests
// can substitute pgxmock.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store persists listings in a Postgres `listings` table.
type Store struct {
	pool querier
}

// New connects a pool and returns the store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a store from an existing pool, primarily for tests.
func NewWithPool(pool querier) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Exists implements listing.Store.
func (s *Store) Exists(ctx context.Context, title string) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM listings WHERE title = $1 LIMIT 1`, title).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query title: %w", err)
	}
	return true, nil
}

// Insert implements listing.Store.
func (s *Store) Insert(ctx context.Context, rec listing.Record) (string, error) {
	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
INSERT INTO listings (id, title, location, salary, benefits, description, reviewed, added_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
		id, rec.Title, rec.Location, rec.Salary, rec.Benefits, rec.Description,
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("insert listing: %w", err)
	}
	return id, nil
}

// ListAll implements listing.Store.
func (s *Store) ListAll(ctx context.Context) ([]listing.Stored, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, title, location, salary, benefits, description, reviewed, added_at
FROM listings ORDER BY added_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var out []listing.Stored
	for rows.Next() {
		var stored listing.Stored
		if err := rows.Scan(&stored.ID, &stored.Record.Title, &stored.Record.Location,
			&stored.Record.Salary, &stored.Record.Benefits, &stored.Record.Description,
			&stored.Reviewed, &stored.AddedAt); err != nil {
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		out = append(out, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}
	return out, nil
}

// SetReviewed implements listing.Store.
func (s *Store) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings SET reviewed = $1 WHERE id = $2`, reviewed, id)
	if err != nil {
		return fmt.Errorf("update reviewed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %q not found", id)
	}
	return nil
}

// Close implements listing.Store.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}
