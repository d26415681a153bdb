package highscore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SQLiteStore persists every submitted entry and serves the best ones.
type SQLiteStore struct {
	db    *sql.DB
	limit int
}

// OpenSQLite opens or creates the database at path and runs migrations.
// FetchTop returns at most limit entries.
func OpenSQLite(path string, limit int) (*SQLiteStore, error) {
	if limit < 1 {
		limit = DefaultLimit
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite is not concurrent for writes

	s := &SQLiteStore{db: db, limit: limit}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scores (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_rank ON scores(score DESC, created_at ASC);`,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// FetchTop returns the best entries, earlier submissions first among ties.
func (s *SQLiteStore) FetchTop(ctx context.Context) ([]Entry, error) {
	return s.Top(ctx, s.limit)
}

// Top returns up to n entries.
func (s *SQLiteStore) Top(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, score, created_at FROM scores ORDER BY score DESC, created_at ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, n)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Submit validates and stores entry under a fresh ID.
func (s *SQLiteStore) Submit(ctx context.Context, entry Entry) error {
	_, err := s.Add(ctx, entry)
	return err
}

// Add stores entry and returns it with its ID and timestamp.
func (s *SQLiteStore) Add(ctx context.Context, entry Entry) (Entry, error) {
	entry, err := entry.Validate()
	if err != nil {
		return entry, err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scores (id, name, score, created_at) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.Name, entry.Score, entry.CreatedAt)
	if err != nil {
		return entry, fmt.Errorf("insert score: %w", err)
	}
	return entry, nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return n, nil
}
