package repository

import (
	"time"

	"metron/internal/domain/models"
	"metron/internal/storage"
)

// intercept applies the lifecycle rules to one staged change and builds its
// mutation. Deletes of soft-deletable entities become stamped updates; the
// row disappears from default reads but stays in storage.
func (u *UnitOfWork) intercept(c change, now time.Time, actor string) storage.Mutation {
	switch c.op {
	case storage.OpInsert:
		u.stampInsert(c.entity, now, actor)
		return storage.Mutation{
			Op:     storage.OpInsert,
			Table:  c.desc.Table,
			Record: dematerialize(c.desc, c.entity),
		}

	case storage.OpDelete:
		sd, ok := c.entity.(models.SoftDeletable)
		if !ok {
			return storage.Mutation{
				Op:      storage.OpDelete,
				Table:   c.desc.Table,
				ID:      c.entity.EntityID(),
				Version: c.entity.Version(),
			}
		}
		removal := sd.Removal()
		if !removal.IsRemoved || removal.RemovedAt == nil {
			removal.MarkRemoved(now, actor)
		}
		if a, ok := c.entity.(models.Auditable); ok {
			a.Audit().Touch(now, actor)
		}
		return u.updateMutation(c)

	default:
		u.stampUpdate(c, now, actor)
		return u.updateMutation(c)
	}
}

func (u *UnitOfWork) stampInsert(e models.Entity, now time.Time, actor string) {
	// The audit pairs are owned here: caller-set values are overwritten so
	// every commit is attributed to the acting user.
	if a, ok := e.(models.Auditable); ok {
		a.Audit().MarkCreated(now, actor)
	}
	if sd, ok := e.(models.SoftDeletable); ok {
		removal := sd.Removal()
		if removal.IsRemoved && removal.RemovedAt == nil {
			removal.MarkRemoved(now, actor)
		}
	}
	if d, ok := e.(models.Disableable); ok {
		stamps := d.Disablement()
		if stamps.IsDisabled && stamps.DisabledAt == nil {
			stamps.MarkDisabled(now, actor)
		}
	}
}

func (u *UnitOfWork) stampUpdate(c change, now time.Time, actor string) {
	orig, tracked := u.original(c.desc.Table, c.entity.EntityID())

	if sd, ok := c.entity.(models.SoftDeletable); ok {
		removal := sd.Removal()
		if removal.IsRemoved && removal.RemovedAt == nil {
			removal.MarkRemoved(now, actor)
		}
	}

	touched := false
	if d, ok := c.entity.(models.Disableable); ok {
		stamps := d.Disablement()
		wasDisabled := false
		if tracked {
			wasDisabled, _ = orig["is_disabled"].(bool)
		}
		switch {
		case stamps.IsDisabled && !wasDisabled:
			stamps.MarkDisabled(now, actor)
			touched = touch(c.entity, now, actor)
		case !stamps.IsDisabled && wasDisabled:
			stamps.ClearDisabled()
			touched = touch(c.entity, now, actor)
		}
	}

	// The modification pair is owned here: caller-set values are overwritten
	// so every commit is attributed to the acting user. The disable
	// transition above stamps the same pair once, not twice.
	if !touched {
		touch(c.entity, now, actor)
	}
}

func touch(e models.Entity, now time.Time, actor string) bool {
	a, ok := e.(models.Auditable)
	if ok {
		a.Audit().Touch(now, actor)
	}
	return ok
}

func (u *UnitOfWork) updateMutation(c change) storage.Mutation {
	return storage.Mutation{
		Op:      storage.OpUpdate,
		Table:   c.desc.Table,
		ID:      c.entity.EntityID(),
		Version: c.entity.Version(),
		Record:  dematerialize(c.desc, c.entity),
	}
}
