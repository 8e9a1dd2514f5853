// Package sqlite implements the record store port on an embedded SQLite
// database. Collections map to tables through a fixed schema registry;
// filter and order fields are validated against it before any SQL is built.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/backend"
)

type columnKind int

const (
	textColumn columnKind = iota
	integerColumn
	booleanColumn
)

// tables whitelists every collection and its columns. Anything outside this
// registry is rejected before reaching SQL.
var tables = map[string]map[string]columnKind{
	backend.CollectionTransactions: {
		"id":               textColumn,
		"user_id":          textColumn,
		"description":      textColumn,
		"amount_cents":     integerColumn,
		"kind":             textColumn,
		"category":         textColumn,
		"transaction_date": textColumn,
		"created_at":       textColumn,
		"receipt_path":     textColumn,
	},
	backend.CollectionRecurring: {
		"id":            textColumn,
		"user_id":       textColumn,
		"description":   textColumn,
		"amount_cents":  integerColumn,
		"kind":          textColumn,
		"category":      textColumn,
		"frequency":     textColumn,
		"start_date":    textColumn,
		"next_due_date": textColumn,
		"is_active":     booleanColumn,
		"created_at":    textColumn,
	},
	backend.CollectionBudgets: {
		"id":           textColumn,
		"user_id":      textColumn,
		"category":     textColumn,
		"amount_cents": integerColumn,
		"month":        textColumn,
		"created_at":   textColumn,
	},
	backend.CollectionProfiles: {
		"id":         textColumn,
		"first_name": textColumn,
		"last_name":  textColumn,
		"updated_at": textColumn,
	},
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string, filters []backend.Filter, order backend.Order) ([]backend.Record, error) {
	columns, err := tableColumns(collection)
	if err != nil {
		return nil, err
	}
	names := sortedColumnNames(columns)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(names, ", "), collection)

	var args []any
	for i, f := range filters {
		if _, ok := columns[f.Field]; !ok {
			return nil, fmt.Errorf("%s: unknown filter field %q", collection, f.Field)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		fmt.Fprintf(&sb, "%s = ?", f.Field)
		args = append(args, toSQL(f.Value))
	}
	if order.Field != "" {
		if _, ok := columns[order.Field]; !ok {
			return nil, fmt.Errorf("%s: unknown order field %q", collection, order.Field)
		}
		direction := "ASC"
		if order.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", order.Field, direction)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []backend.Record
	for rows.Next() {
		rec, err := scanRecord(rows, names, columns)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func (s *Store) Insert(ctx context.Context, collection string, rec backend.Record) (backend.Record, error) {
	columns, err := tableColumns(collection)
	if err != nil {
		return nil, err
	}

	stored := make(backend.Record, len(rec)+2)
	for k, v := range rec {
		if _, ok := columns[k]; !ok {
			return nil, fmt.Errorf("%s: unknown field %q", collection, k)
		}
		stored[k] = v
	}
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}
	if _, hasCreated := columns["created_at"]; hasCreated {
		if _, ok := stored["created_at"]; !ok {
			stored["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}
	}

	names := make([]string, 0, len(stored))
	for k := range stored {
		names = append(names, k)
	}
	sort.Strings(names)

	placeholders := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		placeholders[i] = "?"
		args[i] = toSQL(stored[name])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		collection, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", collection, err)
	}
	return s.getByID(ctx, collection, stored.ID())
}

func (s *Store) Update(ctx context.Context, collection string, id string, patch backend.Record) (backend.Record, error) {
	columns, err := tableColumns(collection)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(patch))
	for k := range patch {
		if k == "id" {
			continue
		}
		if _, ok := columns[k]; !ok {
			return nil, fmt.Errorf("%s: unknown field %q", collection, k)
		}
		names = append(names, k)
	}
	if len(names) == 0 {
		return s.getByID(ctx, collection, id)
	}
	sort.Strings(names)

	assignments := make([]string, len(names))
	args := make([]any, 0, len(names)+1)
	for i, name := range names {
		assignments[i] = name + " = ?"
		args = append(args, toSQL(patch[name]))
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", collection, strings.Join(assignments, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%s: record %s not found", collection, id)
	}
	return s.getByID(ctx, collection, id)
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if _, err := tableColumns(collection); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", collection), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", collection, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: record %s not found", collection, id)
	}
	return nil
}

func (s *Store) getByID(ctx context.Context, collection string, id string) (backend.Record, error) {
	recs, err := s.List(ctx, collection, []backend.Filter{{Field: "id", Value: id}}, backend.Order{})
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s: record %s not found", collection, id)
	}
	return recs[0], nil
}

func tableColumns(collection string) (map[string]columnKind, error) {
	columns, ok := tables[collection]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	return columns, nil
}

func sortedColumnNames(columns map[string]columnKind) []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func toSQL(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

func scanRecord(rows *sql.Rows, names []string, columns map[string]columnKind) (backend.Record, error) {
	dests := make([]any, len(names))
	texts := make([]sql.NullString, len(names))
	ints := make([]sql.NullInt64, len(names))
	for i, name := range names {
		switch columns[name] {
		case integerColumn, booleanColumn:
			dests[i] = &ints[i]
		default:
			dests[i] = &texts[i]
		}
	}
	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}

	rec := make(backend.Record, len(names))
	for i, name := range names {
		switch columns[name] {
		case integerColumn:
			if ints[i].Valid {
				rec[name] = ints[i].Int64
			}
		case booleanColumn:
			if ints[i].Valid {
				rec[name] = ints[i].Int64 != 0
			}
		default:
			if texts[i].Valid {
				rec[name] = texts[i].String
			}
		}
	}
	return rec, nil
}

var _ backend.Store = (*Store)(nil)
