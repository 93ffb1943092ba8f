// Package storage defines the row-level contract the persistence session is
// built on: a Record representation, equality filters, atomic mutation
// batches and the Driver interface implemented by the memory and postgres
// backends.
package storage

import "context"

// VersionColumn guards every row against concurrent modification. Drivers
// own the column: inserts start at 1, every update or delete must present
// the current value and updates bump it.
const VersionColumn = "row_version"

// IDColumn is the primary-key column shared by all tables.
const IDColumn = "id"

// Record is one row keyed by column name. Values are scalars (int64, int,
// string, bool, float64, time.Time) or nil for SQL NULL.
type Record map[string]any

// Clone returns a shallow copy; record values are immutable scalars.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Cond is one filter condition: an equality match, or an IN match over ids
// when In is non-nil.
type Cond struct {
	Column string
	Value  any
	In     []int64
}

// Filter is a conjunction of conditions.
type Filter []Cond

// Eq builds a single-condition equality filter.
func Eq(column string, value any) Filter {
	return Filter{{Column: column, Value: value}}
}

// In builds a single-condition IN filter over ids.
func In(column string, ids []int64) Filter {
	return Filter{{Column: column, In: ids}}
}

// Op is a mutation kind.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

// Mutation is one staged write. For updates and deletes, ID addresses the
// row and Version is the expected row version; a mismatch fails the whole
// batch with a conflict.
type Mutation struct {
	Op      Op
	Table   string
	ID      int64
	Version int64
	Record  Record
}

// Driver is the storage backend contract. Apply is atomic: either every
// mutation in the batch is applied or none is. The returned ids align with
// the batch (inserts carry their newly assigned id, other ops echo ID).
type Driver interface {
	Get(ctx context.Context, table string, id int64) (Record, error)
	List(ctx context.Context, table string, filter Filter) ([]Record, error)
	Apply(ctx context.Context, muts []Mutation) ([]int64, error)
	// ExecTx runs fn against a transaction-scoped driver; every Apply
	// inside shares one all-or-nothing commit.
	ExecTx(ctx context.Context, fn func(ctx context.Context, tx Driver) error) error
	Close()
}

// Matches reports whether a record satisfies every condition.
func (f Filter) Matches(rec Record) bool {
	for _, c := range f {
		v := rec[c.Column]
		if c.In != nil {
			id, ok := v.(int64)
			if !ok {
				return false
			}
			found := false
			for _, candidate := range c.In {
				if candidate == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if v != c.Value {
			return false
		}
	}
	return true
}
