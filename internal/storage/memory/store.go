// Package memory provides an in-memory implementation of the storage driver
// used for tests and ephemeral environments. Semantics mirror the postgres
// driver: versioned rows, atomic batches and capability check constraints.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"metron/internal/domain"
	"metron/internal/storage"
)

// Compile-time contract assertion.
var _ storage.Driver = (*Store)(nil)

type table struct {
	rows   map[int64]storage.Record
	nextID int64
}

func (t *table) clone() *table {
	rows := make(map[int64]storage.Record, len(t.rows))
	for id, rec := range t.rows {
		rows[id] = rec.Clone()
	}
	return &table{rows: rows, nextID: t.nextID}
}

type state map[string]*table

func (s state) clone() state {
	out := make(state, len(s))
	for name, t := range s {
		out[name] = t.clone()
	}
	return out
}

func (s state) table(name string) *table {
	t, ok := s[name]
	if !ok {
		t = &table{rows: make(map[int64]storage.Record)}
		s[name] = t
	}
	return t
}

// Store holds all tables behind one mutex. A transaction clones the state,
// runs against the clone and swaps it in on success, so readers never see a
// partially applied batch.
type Store struct {
	mu    sync.Mutex
	state state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{state: make(state)}
}

// Get returns a copy of one row.
func (s *Store) Get(ctx context.Context, tableName string, id int64) (storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getRow(s.state, tableName, id)
}

// List returns copies of all rows matching the filter, ordered by id.
func (s *Store) List(ctx context.Context, tableName string, filter storage.Filter) ([]storage.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return listRows(s.state, tableName, filter), nil
}

// Apply stages the whole batch before any of it becomes visible, so a
// version mismatch or constraint violation leaves the store untouched.
func (s *Store) Apply(ctx context.Context, muts []storage.Mutation) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return applyBatch(s.state, muts)
}

// ExecTx runs fn against a cloned state and swaps it in on success.
// Transactions are serialized; the session model is single-writer.
func (s *Store) ExecTx(ctx context.Context, fn func(ctx context.Context, tx storage.Driver) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := s.state.clone()
	if err := fn(ctx, &txDriver{state: clone}); err != nil {
		return err
	}
	s.state = clone
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

// txDriver operates on a transaction's cloned state without locking: the
// store mutex is held for the duration of the transaction.
type txDriver struct {
	state state
}

var _ storage.Driver = (*txDriver)(nil)

func (t *txDriver) Get(ctx context.Context, tableName string, id int64) (storage.Record, error) {
	return getRow(t.state, tableName, id)
}

func (t *txDriver) List(ctx context.Context, tableName string, filter storage.Filter) ([]storage.Record, error) {
	return listRows(t.state, tableName, filter), nil
}

func (t *txDriver) Apply(ctx context.Context, muts []storage.Mutation) ([]int64, error) {
	return applyBatch(t.state, muts)
}

// ExecTx inside a transaction reuses the enclosing transaction; there are no
// savepoints.
func (t *txDriver) ExecTx(ctx context.Context, fn func(ctx context.Context, tx storage.Driver) error) error {
	return fn(ctx, t)
}

func (t *txDriver) Close() {}

func getRow(st state, tableName string, id int64) (storage.Record, error) {
	tbl, ok := st[tableName]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", tableName, id, domain.ErrNotFound)
	}
	rec, ok := tbl.rows[id]
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", tableName, id, domain.ErrNotFound)
	}
	return rec.Clone(), nil
}

func listRows(st state, tableName string, filter storage.Filter) []storage.Record {
	tbl, ok := st[tableName]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(tbl.rows))
	for id := range tbl.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []storage.Record
	for _, id := range ids {
		rec := tbl.rows[id]
		if filter.Matches(rec) {
			out = append(out, rec.Clone())
		}
	}
	return out
}

func applyBatch(st state, muts []storage.Mutation) ([]int64, error) {
	// Stage the batch on a clone so a failure anywhere leaves the live state
	// untouched. Each mutation validates against the staged state, not the
	// pre-batch one: two updates presenting the same row version conflict
	// here exactly like postgres' per-statement version guard.
	work := st.clone()
	ids := make([]int64, len(muts))
	for i, mut := range muts {
		tbl := work.table(mut.Table)
		switch mut.Op {
		case storage.OpInsert:
			if err := checkConstraints(mut.Table, mut.Record); err != nil {
				return nil, err
			}
			tbl.nextID++
			id := tbl.nextID
			rec := mut.Record.Clone()
			rec[storage.IDColumn] = id
			rec[storage.VersionColumn] = int64(1)
			tbl.rows[id] = rec
			ids[i] = id
		case storage.OpUpdate:
			if err := checkVersion(work, mut); err != nil {
				return nil, err
			}
			if err := checkConstraints(mut.Table, mut.Record); err != nil {
				return nil, err
			}
			rec := mut.Record.Clone()
			rec[storage.IDColumn] = mut.ID
			rec[storage.VersionColumn] = mut.Version + 1
			tbl.rows[mut.ID] = rec
			ids[i] = mut.ID
		case storage.OpDelete:
			if err := checkVersion(work, mut); err != nil {
				return nil, err
			}
			delete(tbl.rows, mut.ID)
			ids[i] = mut.ID
		default:
			return nil, fmt.Errorf("mutation %d: unknown op %d", i, mut.Op)
		}
	}
	for name, tbl := range work {
		st[name] = tbl
	}
	return ids, nil
}

func checkVersion(st state, mut storage.Mutation) error {
	tbl, ok := st[mut.Table]
	if !ok {
		return fmt.Errorf("%s %d: %w", mut.Table, mut.ID, domain.ErrNotFound)
	}
	rec, ok := tbl.rows[mut.ID]
	if !ok {
		return fmt.Errorf("%s %d: %w", mut.Table, mut.ID, domain.ErrNotFound)
	}
	if current, _ := rec[storage.VersionColumn].(int64); current != mut.Version {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("%s %d was modified concurrently", mut.Table, mut.ID),
			ResourceType: mut.Table,
			ResourceID:   fmt.Sprintf("%d", mut.ID),
		}
	}
	return nil
}

// checkConstraints mirrors the capability check constraints of the postgres
// schema: a raised flag requires both companion columns.
func checkConstraints(tableName string, rec storage.Record) error {
	if err := flagPair(rec, "is_removed", "removed_at", "removed_by"); err != nil {
		return fmt.Errorf("%s: %w", tableName, err)
	}
	if err := flagPair(rec, "is_disabled", "disabled_at", "disabled_by"); err != nil {
		return fmt.Errorf("%s: %w", tableName, err)
	}
	return nil
}

func flagPair(rec storage.Record, flag, at, by string) error {
	raised, ok := rec[flag].(bool)
	if !ok || !raised {
		return nil
	}
	if rec[at] == nil || rec[by] == nil {
		return fmt.Errorf("%s requires %s and %s: %w", flag, at, by, domain.ErrValidation)
	}
	return nil
}
