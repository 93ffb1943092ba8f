// Package postgres implements the storage driver on PostgreSQL via pgx,
// generating SQL from record column sets and guarding every update and
// delete with the row version for optimistic concurrency.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"metron/internal/domain"
	"metron/internal/storage"
)

// Compile-time contract assertion.
var _ storage.Driver = (*Store)(nil)

// DBTX is implemented by both *pgxpool.Pool and pgx.Tx, letting the store
// run the same SQL inside and outside an explicit transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}

// Store is the postgres-backed storage driver.
type Store struct {
	pool   *pgxpool.Pool
	tx     pgx.Tx
	logger *slog.Logger
}

// NewStore creates a postgres store over an existing pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

func (s *Store) db() DBTX {
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}

// Get returns one row as a record.
func (s *Store) Get(ctx context.Context, table string, id int64) (storage.Record, error) {
	sql := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, table)
	rows, err := s.db().Query(ctx, sql, id)
	if err != nil {
		return nil, mapError(fmt.Sprintf("get %s", table), err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, mapError(fmt.Sprintf("get %s", table), err)
		}
		return nil, fmt.Errorf("%s %d: %w", table, id, domain.ErrNotFound)
	}
	return scanRecord(rows)
}

// List returns all rows matching the filter, ordered by id.
func (s *Store) List(ctx context.Context, table string, filter storage.Filter) ([]storage.Record, error) {
	where, args := buildWhere(filter)
	sql := fmt.Sprintf(`SELECT * FROM %s%s ORDER BY id`, table, where)
	rows, err := s.db().Query(ctx, sql, args...)
	if err != nil {
		return nil, mapError(fmt.Sprintf("list %s", table), err)
	}
	defer rows.Close()

	var out []storage.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(fmt.Sprintf("list %s", table), err)
	}
	return out, nil
}

// Apply writes the batch inside one transaction (or the enclosing one).
func (s *Store) Apply(ctx context.Context, muts []storage.Mutation) ([]int64, error) {
	if s.tx != nil {
		return s.applyAll(ctx, s.tx, muts)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, mapError("begin batch", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			s.logger.Warn("batch rollback failed", "error", err)
		}
	}()

	ids, err := s.applyAll(ctx, tx, muts)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapError("commit batch", err)
	}
	return ids, nil
}

func (s *Store) applyAll(ctx context.Context, db DBTX, muts []storage.Mutation) ([]int64, error) {
	ids := make([]int64, len(muts))
	for i, mut := range muts {
		var err error
		switch mut.Op {
		case storage.OpInsert:
			ids[i], err = insertRow(ctx, db, mut)
		case storage.OpUpdate:
			ids[i], err = updateRow(ctx, db, mut)
		case storage.OpDelete:
			ids[i], err = deleteRow(ctx, db, mut)
		default:
			err = fmt.Errorf("unknown op %d", mut.Op)
		}
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// ExecTx runs fn against a transaction-bound store. Nested calls reuse the
// enclosing transaction.
func (s *Store) ExecTx(ctx context.Context, fn func(ctx context.Context, tx storage.Driver) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			s.logger.Warn("transaction rollback failed", "error", err)
		}
	}()

	if err := fn(ctx, &Store{pool: s.pool, tx: tx, logger: s.logger}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// Close releases the pool. Transaction-bound stores leave the pool to their
// parent.
func (s *Store) Close() {
	if s.tx == nil {
		s.pool.Close()
	}
}

func insertRow(ctx context.Context, db DBTX, mut storage.Mutation) (int64, error) {
	cols, args := recordColumns(mut.Record, storage.IDColumn, storage.VersionColumn)
	cols = append(cols, storage.VersionColumn)
	args = append(args, int64(1))

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	sql := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		mut.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	var id int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, mapError(fmt.Sprintf("insert %s", mut.Table), err)
	}
	return id, nil
}

func updateRow(ctx context.Context, db DBTX, mut storage.Mutation) (int64, error) {
	cols, args := recordColumns(mut.Record, storage.IDColumn, storage.VersionColumn)

	assignments := make([]string, len(cols))
	for i, col := range cols {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	assignments = append(assignments,
		fmt.Sprintf("%s = $%d", storage.VersionColumn, len(cols)+1))
	args = append(args, mut.Version+1, mut.ID, mut.Version)

	sql := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND %s = $%d`,
		mut.Table, strings.Join(assignments, ", "),
		len(cols)+2, storage.VersionColumn, len(cols)+3)

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, mapError(fmt.Sprintf("update %s", mut.Table), err)
	}
	if tag.RowsAffected() == 0 {
		return 0, versionConflict(mut)
	}
	return mut.ID, nil
}

func deleteRow(ctx context.Context, db DBTX, mut storage.Mutation) (int64, error) {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND %s = $2`,
		mut.Table, storage.VersionColumn)
	tag, err := db.Exec(ctx, sql, mut.ID, mut.Version)
	if err != nil {
		return 0, mapError(fmt.Sprintf("delete %s", mut.Table), err)
	}
	if tag.RowsAffected() == 0 {
		return 0, versionConflict(mut)
	}
	return mut.ID, nil
}

func versionConflict(mut storage.Mutation) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("%s %d was modified concurrently", mut.Table, mut.ID),
		ResourceType: mut.Table,
		ResourceID:   fmt.Sprintf("%d", mut.ID),
	}
}

// recordColumns returns the record's columns in deterministic order with
// their values, skipping the given columns.
func recordColumns(rec storage.Record, skip ...string) ([]string, []any) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}
	cols := make([]string, 0, len(rec))
	for col := range rec {
		if !skipped[col] {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	args := make([]any, len(cols))
	for i, col := range cols {
		args[i] = rec[col]
	}
	return cols, args
}

func buildWhere(filter storage.Filter) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(filter))
	args := make([]any, 0, len(filter))
	for _, c := range filter {
		if c.In != nil {
			args = append(args, c.In)
			clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", c.Column, len(args)))
			continue
		}
		args = append(args, c.Value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", c.Column, len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanRecord(rows pgx.Rows) (storage.Record, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, mapError("scan row", err)
	}
	fields := rows.FieldDescriptions()
	rec := make(storage.Record, len(fields))
	for i, fd := range fields {
		rec[fd.Name] = values[i]
	}
	return rec, nil
}
