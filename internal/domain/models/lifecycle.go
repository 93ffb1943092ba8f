package models

import "time"

// Lifecycle capabilities are a closed set of contracts an entity type may opt
// into by embedding the matching stamp struct. The persistence layer checks
// capability membership via interface satisfaction, never via reflection.

// Entity is the minimal contract every persisted record satisfies.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)
	Version() int64
	SetVersion(v int64)
}

// Base carries the numeric identifier and the optimistic-concurrency version
// shared by all entities. A version mismatch at commit time is a conflict.
type Base struct {
	ID         int64
	RowVersion int64
}

func (b *Base) EntityID() int64      { return b.ID }
func (b *Base) SetEntityID(id int64) { b.ID = id }
func (b *Base) Version() int64       { return b.RowVersion }
func (b *Base) SetVersion(v int64)   { b.RowVersion = v }

// Auditable entities carry creation and modification stamps. Both pairs are
// always set together and ModifiedAt never precedes CreatedAt.
type Auditable interface {
	Audit() *AuditStamps
}

// AuditStamps is embedded by Auditable entities.
type AuditStamps struct {
	CreatedAt  time.Time
	CreatedBy  string
	ModifiedAt time.Time
	ModifiedBy string
}

func (a *AuditStamps) Audit() *AuditStamps { return a }

// MarkCreated stamps both pairs, so CreatedAt == ModifiedAt after an insert.
func (a *AuditStamps) MarkCreated(now time.Time, actor string) {
	a.CreatedAt = now
	a.CreatedBy = actor
	a.ModifiedAt = now
	a.ModifiedBy = actor
}

// Touch stamps the modification pair only.
func (a *AuditStamps) Touch(now time.Time, actor string) {
	a.ModifiedAt = now
	a.ModifiedBy = actor
}

// SoftDeletable entities are never physically deleted: removal flips the flag
// and stamps the companion pair. Once removed, an entity stays removed.
type SoftDeletable interface {
	Removal() *RemovalStamps
}

// RemovalStamps is embedded by SoftDeletable entities.
type RemovalStamps struct {
	IsRemoved bool
	RemovedAt *time.Time
	RemovedBy *string
}

func (r *RemovalStamps) Removal() *RemovalStamps { return r }

// MarkRemoved flips the removal flag and stamps the companion pair.
func (r *RemovalStamps) MarkRemoved(now time.Time, actor string) {
	r.IsRemoved = true
	r.RemovedAt = &now
	r.RemovedBy = &actor
}

// Disableable entities can be taken out of service and brought back. Unlike
// removal, the disabled flag may revert to false, clearing the companion pair.
type Disableable interface {
	Disablement() *DisableStamps
}

// DisableStamps is embedded by Disableable entities.
type DisableStamps struct {
	IsDisabled bool
	DisabledAt *time.Time
	DisabledBy *string
}

func (d *DisableStamps) Disablement() *DisableStamps { return d }

// MarkDisabled stamps the companion pair. The flag itself is flipped by the
// caller; the interceptor derives the stamps from the observed transition.
func (d *DisableStamps) MarkDisabled(now time.Time, actor string) {
	d.DisabledAt = &now
	d.DisabledBy = &actor
}

// ClearDisabled clears the companion pair after a true->false transition.
func (d *DisableStamps) ClearDisabled() {
	d.DisabledAt = nil
	d.DisabledBy = nil
}
