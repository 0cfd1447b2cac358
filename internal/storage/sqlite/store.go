// Package sqlite provides a SQLite-backed budget repository.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iwvelando/build-estimator/internal/budget"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS budget_items (
	session_id      TEXT    NOT NULL,
	position        INTEGER NOT NULL,
	id              TEXT    NOT NULL,
	name            TEXT    NOT NULL,
	description     TEXT    NOT NULL DEFAULT '',
	quantity        REAL    NOT NULL,
	unit            TEXT    NOT NULL DEFAULT '',
	category        TEXT    NOT NULL DEFAULT '',
	estimated_price REAL    NOT NULL,
	PRIMARY KEY (session_id, position)
)`

// Store persists session budgets in SQLite, one row per item.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite budget store and creates its table.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create budget table: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save replaces the items of a session, keeping their order.
func (s *Store) Save(ctx context.Context, sessionID string, items []budget.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_items WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear budget items: %w", err)
	}
	for position, item := range items {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO budget_items (
			   session_id, position, id, name, description, quantity, unit, category, estimated_price
			 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID,
			position,
			item.ID,
			item.Name,
			item.Description,
			item.Quantity,
			item.Unit,
			item.Category,
			item.EstimatedPrice,
		)
		if err != nil {
			return fmt.Errorf("insert budget item %s: %w", item.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget save: %w", err)
	}
	return nil
}

// Load returns the items of a session in saved order, or budget.ErrNotFound.
func (s *Store) Load(ctx context.Context, sessionID string) ([]budget.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, name, description, quantity, unit, category, estimated_price
		 FROM budget_items WHERE session_id = ? ORDER BY position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query budget items: %w", err)
	}
	defer rows.Close()

	var items []budget.Item
	for rows.Next() {
		var item budget.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Quantity,
			&item.Unit, &item.Category, &item.EstimatedPrice); err != nil {
			return nil, fmt.Errorf("scan budget item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget items: %w", err)
	}
	if len(items) == 0 {
		return nil, budget.ErrNotFound
	}
	return items, nil
}

// Delete removes every item of a session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM budget_items WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete budget items: %w", err)
	}
	return nil
}
