package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"optdrive/internal/config"
)

// ErrLocked indicates another driver invocation holds the state lock.
var ErrLocked = errors.New("another optdrive instance holds the state lock")

// Adjustment is one recorded adjust operation.
type Adjustment struct {
	ID        string
	AppID     string
	Status    string
	Reason    string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// Store manages driver state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open acquires the state lock, connects to the state database, and applies
// the schema. Callers must Close the store to release the lock.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "optdrive.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return store, nil
}

// Close closes the database connection and releases the state lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && dbErr == nil {
			dbErr = err
		}
	}
	return dbErr
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordAdjustment persists one adjust operation and, when it succeeded,
// updates the last-applied snapshot for the application.
func (s *Store) RecordAdjustment(ctx context.Context, adj Adjustment) error {
	timestamp := adj.CreatedAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO adjustments (id, app_id, status, reason, payload, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		adj.ID, adj.AppID, adj.Status, adj.Reason, string(adj.Payload),
		timestamp.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}

	if adj.Status == "ok" && len(adj.Payload) > 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO last_applied (app_id, payload, updated_at) VALUES (?, ?, ?)
             ON CONFLICT(app_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
			adj.AppID, string(adj.Payload), timestamp.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("update last applied: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit adjustment: %w", err)
	}
	return nil
}

// LastApplied returns the most recent successfully applied payload for the
// application, or ok=false when none exists.
func (s *Store) LastApplied(ctx context.Context, appID string) (json.RawMessage, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM last_applied WHERE app_id = ?", appID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read last applied: %w", err)
	}
	return json.RawMessage(payload), true, nil
}

// History returns the most recent adjustments for the application, newest
// first. A non-positive limit returns everything.
func (s *Store) History(ctx context.Context, appID string, limit int) ([]Adjustment, error) {
	query := `SELECT id, app_id, status, COALESCE(reason, ''), COALESCE(payload, ''), created_at
              FROM adjustments WHERE app_id = ? ORDER BY created_at DESC`
	args := []any{appID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var adjustments []Adjustment
	for rows.Next() {
		var adj Adjustment
		var payload, createdAt string
		if err := rows.Scan(&adj.ID, &adj.AppID, &adj.Status, &adj.Reason, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if payload != "" {
			adj.Payload = json.RawMessage(payload)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
			adj.CreatedAt = parsed
		}
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return adjustments, nil
}

// Clear removes all recorded state.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"adjustments", "last_applied"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
