// Package refstore holds the on-device reference table of buildings that
// powers address auto-suggestion. The table is rebuilt wholesale on every
// bulk import and is read-only in between.
package refstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"visitbook/internal/domain"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating on first use) the reference database at dbPath and
// brings the schema up to date. Failures to open or reach the database wrap
// ErrStorageUnavailable.
func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := runMigrations(db); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w (also failed to close db: %v)", err, cerr)
		}
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReplaceAll deletes every existing building and inserts records in order,
// assigning fresh ids, inside a single transaction. Readers never observe a
// partially cleared or partially filled table. On any failure the
// transaction is rolled back and the returned error wraps ErrImportAborted.
func (s *Store) ReplaceAll(ctx context.Context, records []domain.Building) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrImportAborted, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM buildings`); err != nil {
		return 0, fmt.Errorf("%w: clear: %v", ErrImportAborted, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO buildings (name, address, attrs) VALUES (?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare: %v", ErrImportAborted, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		attrs, err := encodeAttrs(rec.Attrs)
		if err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", ErrImportAborted, i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Name, rec.Address, attrs); err != nil {
			return 0, fmt.Errorf("%w: record %d: %v", ErrImportAborted, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrImportAborted, err)
	}

	return len(records), nil
}

// FindAll returns every building in storage (insertion) order.
func (s *Store) FindAll(ctx context.Context) ([]domain.Building, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, attrs FROM buildings ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var buildings []domain.Building
	for rows.Next() {
		var (
			b     domain.Building
			attrs string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &attrs); err != nil {
			return nil, fmt.Errorf("failed to scan building: %w", err)
		}
		if b.Attrs, err = decodeAttrs(attrs); err != nil {
			return nil, fmt.Errorf("failed to decode building %d attrs: %w", b.ID, err)
		}
		buildings = append(buildings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating buildings: %w", err)
	}

	return buildings, nil
}

// Count returns the number of stored buildings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM buildings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count buildings: %w", err)
	}
	return n, nil
}

func encodeAttrs(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeAttrs(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(raw), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
