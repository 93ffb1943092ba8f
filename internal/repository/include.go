package repository

import (
	"context"
	"strings"

	"metron/internal/domain/models"
	"metron/internal/query"
	"metron/internal/schema"
	"metron/internal/storage"
)

// loadIncludes eagerly loads the given navigation paths onto parents,
// recursing into dotted segments. Paths are assumed pre-validated; removed
// rows never surface through navigations.
func (u *UnitOfWork) loadIncludes(ctx context.Context, desc *schema.Descriptor, parents []any, paths []string) error {
	if len(parents) == 0 || len(paths) == 0 {
		return nil
	}

	tails := make(map[string][]string)
	var order []string
	for _, path := range paths {
		head, tail, nested := strings.Cut(path, ".")
		head = strings.ToLower(strings.TrimSpace(head))
		if _, seen := tails[head]; !seen {
			order = append(order, head)
			tails[head] = nil
		}
		if nested {
			tails[head] = append(tails[head], tail)
		}
	}

	for _, head := range order {
		nav, ok := desc.Navigation(head)
		if !ok {
			continue
		}
		related, err := u.loadNavigation(ctx, desc, nav, parents)
		if err != nil {
			return err
		}
		if rest := tails[head]; len(rest) > 0 {
			if err := u.loadIncludes(ctx, nav.Target(), related, rest); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *UnitOfWork) loadNavigation(ctx context.Context, desc *schema.Descriptor, nav *schema.Navigation, parents []any) ([]any, error) {
	if nav.Kind == schema.NavRef {
		return u.loadReference(ctx, desc, nav, parents)
	}
	return u.loadChildren(ctx, desc, nav, parents)
}

// loadReference follows a foreign key held by the parents to one target row
// each.
func (u *UnitOfWork) loadReference(ctx context.Context, desc *schema.Descriptor, nav *schema.Navigation, parents []any) ([]any, error) {
	fk := fieldByColumn(desc, nav.FK)
	target := nav.Target()

	var ids []int64
	seen := make(map[int64]bool)
	for _, p := range parents {
		if id, ok := fk.Get(p).(int64); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	recs, err := u.driver.List(ctx, target.Table, storage.In(storage.IDColumn, ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]any, len(recs))
	var loaded []any
	for _, rec := range recs {
		e, err := materialize(target, rec)
		if err != nil {
			return nil, err
		}
		if sd, ok := e.(models.SoftDeletable); ok && sd.Removal().IsRemoved {
			continue
		}
		u.trackOriginal(target.Table, rec)
		byID[e.(models.Entity).EntityID()] = e
		loaded = append(loaded, e)
	}

	for _, p := range parents {
		if id, ok := fk.Get(p).(int64); ok {
			if t, found := byID[id]; found {
				nav.Assign(p, []any{t})
			}
		}
	}
	return loaded, nil
}

// loadChildren loads the target rows holding a foreign key back to the
// parents and assigns them grouped per parent, ordered by the navigation's
// order field.
func (u *UnitOfWork) loadChildren(ctx context.Context, desc *schema.Descriptor, nav *schema.Navigation, parents []any) ([]any, error) {
	target := nav.Target()
	fk := fieldByColumn(target, nav.FK)

	ids := make([]int64, 0, len(parents))
	for _, p := range parents {
		ids = append(ids, p.(models.Entity).EntityID())
	}

	filter := storage.In(nav.FK, ids)
	if _, soft := target.New().(models.SoftDeletable); soft {
		filter = append(filter, storage.Eq("is_removed", false)...)
	}
	recs, err := u.driver.List(ctx, target.Table, filter)
	if err != nil {
		return nil, err
	}

	groups := make(map[int64][]any)
	var loaded []any
	for _, rec := range recs {
		e, err := materialize(target, rec)
		if err != nil {
			return nil, err
		}
		u.trackOriginal(target.Table, rec)
		parentID, _ := fk.Get(e).(int64)
		groups[parentID] = append(groups[parentID], e)
		loaded = append(loaded, e)
	}

	for _, p := range parents {
		group := groups[p.(models.Entity).EntityID()]
		if len(group) == 0 {
			continue
		}
		if nav.OrderField != "" {
			group = query.ApplySort(group, nav.OrderField, target)
		}
		nav.Assign(p, group)
	}
	return loaded, nil
}

func fieldByColumn(desc *schema.Descriptor, column string) *schema.Field {
	for i := range desc.Fields {
		if desc.Fields[i].Column == column {
			return &desc.Fields[i]
		}
	}
	return nil
}
