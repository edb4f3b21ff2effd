// Package packcache persists packed sprite sheets in SQLite, keyed by a hash
// of the group's inputs, so unchanged groups skip packing on the next run.
package packcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"spritegen/internal/packing"
)

// Store manages pack cache persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ packing.Store = (*Store)(nil)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Get loads the sheet stored under key.
func (s *Store) Get(ctx context.Context, key string) (*packing.Sheet, bool, error) {
	sheet := &packing.Sheet{}
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT extension, image FROM sheets WHERE key = ?", key,
		).Scan(&sheet.Extension, &sheet.Image)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load sheet: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, x, y, width, height FROM icons WHERE sheet_key = ? ORDER BY position", key)
	if err != nil {
		return nil, false, fmt.Errorf("load icons: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var icon packing.Placement
		if err := rows.Scan(&icon.Name, &icon.X, &icon.Y, &icon.Width, &icon.Height); err != nil {
			return nil, false, fmt.Errorf("scan icon: %w", err)
		}
		sheet.Icons = append(sheet.Icons, icon)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate icons: %w", err)
	}
	if len(sheet.Icons) == 0 {
		return nil, false, nil
	}
	return sheet, true, nil
}

// Put replaces the sheet stored under key.
func (s *Store) Put(ctx context.Context, key string, sheet *packing.Sheet) error {
	if sheet == nil {
		return errors.New("put sheet: nil sheet")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()

		if _, err := tx.ExecContext(ctx, "DELETE FROM icons WHERE sheet_key = ?", key); err != nil {
			return fmt.Errorf("delete icons: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM sheets WHERE key = ?", key); err != nil {
			return fmt.Errorf("delete sheet: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO sheets (key, extension, image, created_at) VALUES (?, ?, ?, ?)",
			key, sheet.Extension, sheet.Image, time.Now().UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert sheet: %w", err)
		}
		for i, icon := range sheet.Icons {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO icons (sheet_key, position, name, x, y, width, height) VALUES (?, ?, ?, ?, ?, ?, ?)",
				key, i, icon.Name, icon.X, icon.Y, icon.Width, icon.Height,
			); err != nil {
				return fmt.Errorf("insert icon %s: %w", icon.Name, err)
			}
		}
		return tx.Commit()
	})
}

// Count returns the number of stored sheets.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM sheets").Scan(&count); err != nil {
		return 0, fmt.Errorf("count sheets: %w", err)
	}
	return count, nil
}

// Clear removes every stored sheet and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int, error) {
	var removed int
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() {
			_ = tx.Rollback()
		}()
		if _, err := tx.ExecContext(ctx, "DELETE FROM icons"); err != nil {
			return fmt.Errorf("clear icons: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM sheets")
		if err != nil {
			return fmt.Errorf("clear sheets: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("count cleared sheets: %w", err)
		}
		removed = int(n)
		return tx.Commit()
	})
	return removed, err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
