package repository

import (
	"context"
	"fmt"

	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/query"
	"metron/internal/schema"
	"metron/internal/storage"
)

// Repository provides typed access to one entity type within a session.
// Reads exclude removed rows by default, and disabled rows for types that
// carry the disable capability; GetByIDIncludingDisabled and GetByIDAnyState
// are the escape hatches for enable and restore workflows. Writes are staged
// on the session and applied by UnitOfWork.Complete.
type Repository[T models.Entity] struct {
	uow         *UnitOfWork
	desc        *schema.Descriptor
	soft        bool
	disableable bool
}

func newRepository[T models.Entity](uow *UnitOfWork, desc *schema.Descriptor) *Repository[T] {
	probe := desc.New()
	_, soft := probe.(models.SoftDeletable)
	_, disableable := probe.(models.Disableable)
	return &Repository[T]{uow: uow, desc: desc, soft: soft, disableable: disableable}
}

func (r *Repository[T]) liveFilter() storage.Filter {
	var f storage.Filter
	if r.soft {
		f = append(f, storage.Eq("is_removed", false)...)
	}
	if r.disableable {
		f = append(f, storage.Eq("is_disabled", false)...)
	}
	return f
}

func (r *Repository[T]) materialize(rec storage.Record) (T, error) {
	var zero T
	e, err := materialize(r.desc, rec)
	if err != nil {
		return zero, err
	}
	r.uow.trackOriginal(r.desc.Table, rec)
	return e.(T), nil
}

// GetByID returns the live entity, eagerly loading the given navigation
// paths. Removed and disabled entities read as not found.
func (r *Repository[T]) GetByID(ctx context.Context, id int64, includes ...string) (T, error) {
	var zero T
	e, err := r.GetByIDIncludingDisabled(ctx, id, includes...)
	if err != nil {
		return zero, err
	}
	if r.disableable && any(e).(models.Disableable).Disablement().IsDisabled {
		return zero, &domain.NotFoundError{Message: fmt.Sprintf("%s %d not found", r.desc.Entity, id)}
	}
	return e, nil
}

// GetByIDIncludingDisabled returns the entity even when disabled; removed
// entities still read as not found. Enable workflows need this to fetch the
// record they are about to re-enable.
func (r *Repository[T]) GetByIDIncludingDisabled(ctx context.Context, id int64, includes ...string) (T, error) {
	var zero T
	e, err := r.GetByIDAnyState(ctx, id, includes...)
	if err != nil {
		return zero, err
	}
	if r.soft && any(e).(models.SoftDeletable).Removal().IsRemoved {
		return zero, &domain.NotFoundError{Message: fmt.Sprintf("%s %d not found", r.desc.Entity, id)}
	}
	return e, nil
}

// GetByIDAnyState returns the entity regardless of removal state.
func (r *Repository[T]) GetByIDAnyState(ctx context.Context, id int64, includes ...string) (T, error) {
	var zero T
	rec, err := r.uow.driver.Get(ctx, r.desc.Table, id)
	if err != nil {
		return zero, err
	}
	e, err := r.materialize(rec)
	if err != nil {
		return zero, err
	}
	if len(includes) > 0 {
		paths := query.ValidIncludePaths(r.desc, includes)
		if err := r.uow.loadIncludes(ctx, r.desc, []any{e}, paths); err != nil {
			return zero, err
		}
	}
	return e, nil
}

func (r *Repository[T]) list(ctx context.Context, filter storage.Filter) ([]T, error) {
	recs, err := r.uow.driver.List(ctx, r.desc.Table, filter)
	if err != nil {
		return nil, err
	}
	items := make([]T, 0, len(recs))
	for _, rec := range recs {
		e, err := r.materialize(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

// GetAll returns every live entity in id order.
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.list(ctx, r.liveFilter())
}

// Page runs the composition pipeline over the live set: search, count, sort,
// paginate, then eager-load the requested navigations on the page items.
func (r *Repository[T]) Page(ctx context.Context, params query.Parameters) (*query.PagedResult[T], error) {
	p := params.Normalized()

	items, err := r.list(ctx, r.liveFilter())
	if err != nil {
		return nil, err
	}
	if p.SearchQuery != "" {
		items = query.ApplySearch(items, p.SearchQuery, r.desc.Searchable, r.desc)
	}
	total := len(items)
	items = query.ApplySort(items, p.SortBy, r.desc)
	pageItems := query.Paginate(items, p.PageNumber, p.PageSize)

	if paths := query.ValidIncludePaths(r.desc, p.IncludePaths()); len(paths) > 0 {
		parents := make([]any, len(pageItems))
		for i, e := range pageItems {
			parents[i] = e
		}
		if err := r.uow.loadIncludes(ctx, r.desc, parents, paths); err != nil {
			return nil, err
		}
	}
	return query.NewPagedResult(pageItems, p.PageNumber, p.PageSize, total), nil
}

// Find returns the live entities matching the predicate, eagerly loading the
// given navigation paths on the matched set.
func (r *Repository[T]) Find(ctx context.Context, pred func(T) bool, includes ...string) ([]T, error) {
	items, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := items[:0:0]
	for _, e := range items {
		if pred(e) {
			out = append(out, e)
		}
	}
	if paths := query.ValidIncludePaths(r.desc, includes); len(paths) > 0 {
		parents := make([]any, len(out))
		for i, e := range out {
			parents[i] = e
		}
		if err := r.uow.loadIncludes(ctx, r.desc, parents, paths); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// First returns the first live entity matching the predicate, in id order.
func (r *Repository[T]) First(ctx context.Context, pred func(T) bool, includes ...string) (T, error) {
	var zero T
	items, err := r.Find(ctx, pred)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, &domain.NotFoundError{Message: fmt.Sprintf("no matching %s", r.desc.Entity)}
	}
	e := items[0]
	if paths := query.ValidIncludePaths(r.desc, includes); len(paths) > 0 {
		if err := r.uow.loadIncludes(ctx, r.desc, []any{e}, paths); err != nil {
			return zero, err
		}
	}
	return e, nil
}

// Exists reports whether any live entity matches the predicate.
func (r *Repository[T]) Exists(ctx context.Context, pred func(T) bool) (bool, error) {
	n, err := r.Count(ctx, pred)
	return n > 0, err
}

// Count returns the number of live entities matching the predicate. A nil
// predicate counts every live entity.
func (r *Repository[T]) Count(ctx context.Context, pred func(T) bool) (int, error) {
	items, err := r.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if pred == nil {
		return len(items), nil
	}
	n := 0
	for _, e := range items {
		if pred(e) {
			n++
		}
	}
	return n, nil
}

// Add stages an insert.
func (r *Repository[T]) Add(e T) {
	r.uow.stage(change{op: storage.OpInsert, desc: r.desc, entity: e})
}

// AddRange stages inserts preserving order.
func (r *Repository[T]) AddRange(es []T) {
	for _, e := range es {
		r.Add(e)
	}
}

// Update stages an update of a previously loaded entity.
func (r *Repository[T]) Update(e T) {
	r.uow.stage(change{op: storage.OpUpdate, desc: r.desc, entity: e})
}

// Remove stages a delete. For soft-deletable entities the commit converts it
// to a stamped removal update; otherwise the row is physically deleted.
func (r *Repository[T]) Remove(e T) {
	r.uow.stage(change{op: storage.OpDelete, desc: r.desc, entity: e})
}

// RemoveRange stages deletes preserving order.
func (r *Repository[T]) RemoveRange(es []T) {
	for _, e := range es {
		r.Remove(e)
	}
}
