// Package sqlite provides the default durable listing store, backed by a
// local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // sqlite driver

	"jobtrawler/internal/listing"
)

// Store persists listings in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and applies the
// schema migration.
func Open(path string) (*Store, error) {
	// modernc sqlite DSN: file:jobs.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// sqlite wants a single writer.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  title TEXT NOT NULL,
  location TEXT NOT NULL,
  salary TEXT NOT NULL DEFAULT '',
  benefits TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  reviewed INTEGER NOT NULL DEFAULT 0,
  added_at TEXT NOT NULL
);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_jobs_title ON jobs(title);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// Exists implements listing.Store.
func (s *Store) Exists(ctx context.Context, title string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM jobs WHERE title = ? LIMIT 1;`, title).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query title: %w", err)
	}
	return true, nil
}

// Insert implements listing.Store.
func (s *Store) Insert(ctx context.Context, rec listing.Record) (string, error) {
	res, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (title, location, salary, benefits, description, added_at)
VALUES (?, ?, ?, ?, ?, ?);`,
		rec.Title, rec.Location, rec.Salary, rec.Benefits, rec.Description,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read insert id: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// ListAll implements listing.Store.
func (s *Store) ListAll(ctx context.Context) ([]listing.Stored, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, location, salary, benefits, description, reviewed, added_at
FROM jobs ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []listing.Stored
	for rows.Next() {
		var (
			id       int64
			rec      listing.Record
			reviewed int
			addedAt  string
		)
		if err := rows.Scan(&id, &rec.Title, &rec.Location, &rec.Salary,
			&rec.Benefits, &rec.Description, &reviewed, &addedAt); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339, addedAt)
		out = append(out, listing.Stored{
			ID:       strconv.FormatInt(id, 10),
			Record:   rec,
			Reviewed: reviewed != 0,
			AddedAt:  ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job rows: %w", err)
	}
	return out, nil
}

// SetReviewed implements listing.Store.
func (s *Store) SetReviewed(ctx context.Context, id string, reviewed bool) error {
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("parse id %q: %w", id, err)
	}
	flag := 0
	if reviewed {
		flag = 1
	}
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET reviewed = ? WHERE id = ?;`, flag, numeric)
	if err != nil {
		return fmt.Errorf("update reviewed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("record %q not found", id)
	}
	return nil
}

// Close implements listing.Store.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
