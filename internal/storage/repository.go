// Package storage keeps a SQLite snapshot of the input tables. The snapshot
// is written by the import command and read by the dashboard in place of the
// CSV directory.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aceiro/internal/core"
	"aceiro/internal/sources"

	_ "modernc.org/sqlite"
)

// ErrNoImport is returned by LastImport on a snapshot that was never filled.
var ErrNoImport = errors.New("snapshot has no import")

var _ sources.TableReader = (*SQLiteRepository)(nil)

// ImportInfo describes the import that produced the current snapshot.
type ImportInfo struct {
	ID         string
	Source     string
	ImportedAt time.Time
}

type SQLiteRepository struct {
	db   *sql.DB
	path string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Describe() string {
	return "sqlite:" + r.path
}

// ReadTable implements sources.TableReader. Rows come back in insertion order.
func (r *SQLiteRepository) ReadTable(ctx context.Context, entity core.Entity) (core.RawTable, error) {
	source := r.path + "#" + entity.String()
	if !entity.IsValid() {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: errors.New("unknown table")}
	}

	// entity is one of the known table names, never user input.
	rows, err := r.db.QueryContext(ctx, "SELECT * FROM "+entity.String()+" ORDER BY rowid")
	if err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: err}
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: err}
	}

	t := core.RawTable{Entity: entity, Source: source, Header: header, Rows: [][]string{}}
	for rows.Next() {
		vals := make([]sql.NullString, len(header))
		ptrs := make([]any, len(header))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: err}
		}
		row := make([]string, len(vals))
		for i, v := range vals {
			row[i] = v.String
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return core.RawTable{}, &core.LoadError{Entity: entity, Source: source, Err: err}
	}
	return t, nil
}

// ImportTables replaces the snapshot with tables inside one transaction and
// records the import. Only the known columns of each table are stored.
func (r *SQLiteRepository) ImportTables(ctx context.Context, info ImportInfo, tables []core.RawTable) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tables {
		n, err := replaceTable(ctx, tx, t)
		if err != nil {
			return fmt.Errorf("import %s: %w", t.Entity, err)
		}
		slog.DebugContext(ctx, "Snapshot table replaced", "entity", t.Entity.String(), "rows", n)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (id, source, imported_at) VALUES (?, ?, ?)",
		info.ID, info.Source, info.ImportedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// LastImport returns the most recent import.
func (r *SQLiteRepository) LastImport(ctx context.Context) (ImportInfo, error) {
	var (
		info ImportInfo
		at   string
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, source, imported_at FROM imports ORDER BY imported_at DESC LIMIT 1").
		Scan(&info.ID, &info.Source, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportInfo{}, ErrNoImport
	}
	if err != nil {
		return ImportInfo{}, fmt.Errorf("query last import: %w", err)
	}
	info.ImportedAt, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return ImportInfo{}, fmt.Errorf("parse imported_at %q: %w", at, err)
	}
	return info, nil
}

func replaceTable(ctx context.Context, tx *sql.Tx, t core.RawTable) (int, error) {
	if !t.Entity.IsValid() {
		return 0, fmt.Errorf("unknown table %q", t.Entity)
	}
	cols := t.Entity.Columns()
	idx, err := t.Resolve(cols)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+t.Entity.String()); err != nil {
		return 0, fmt.Errorf("clear: %w", err)
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Entity, strings.Join(names, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(idx))
	for _, row := range t.Rows {
		for i, pos := range idx {
			args[i] = cellAt(row, pos)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert: %w", err)
		}
	}
	return len(t.Rows), nil
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
