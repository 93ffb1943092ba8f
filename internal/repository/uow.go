package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/schema"
	"metron/internal/storage"
)

// SystemActor is the acting identity recorded when no caller identity is
// supplied, matching background jobs and migrations.
const SystemActor = "system"

// change is one staged entity operation awaiting Complete.
type change struct {
	op     storage.Op
	desc   *schema.Descriptor
	entity models.Entity
}

// UnitOfWork is a session: it tracks loaded record state, stages changes, and
// commits them as one atomic batch with lifecycle stamping. Repositories are
// created lazily, one per entity type, and share the session. A UnitOfWork is
// not safe for concurrent use.
type UnitOfWork struct {
	driver storage.Driver
	logger *slog.Logger

	staged    []change
	originals map[string]map[int64]storage.Record
	closed    bool

	locations        *LocationRepository
	suppliers        *SupplierRepository
	serviceProviders *ServiceProviderRepository
	metConfirmations *MetConfirmationRepository
	devices          *DeviceRepository
	deviceCards      *DeviceCardRepository
	deviceOperations *DeviceOperationRepository
	events           *EventRepository
	templateElements *TemplateElementRepository
}

// NewUnitOfWork opens a session over the given driver.
func NewUnitOfWork(driver storage.Driver, logger *slog.Logger) *UnitOfWork {
	return &UnitOfWork{
		driver:    driver,
		logger:    logger,
		originals: make(map[string]map[int64]storage.Record),
	}
}

func (u *UnitOfWork) Locations() *LocationRepository {
	if u.locations == nil {
		u.locations = &LocationRepository{newRepository[*models.Location](u, schema.Locations)}
	}
	return u.locations
}

func (u *UnitOfWork) Suppliers() *SupplierRepository {
	if u.suppliers == nil {
		u.suppliers = &SupplierRepository{newRepository[*models.Supplier](u, schema.Suppliers)}
	}
	return u.suppliers
}

func (u *UnitOfWork) ServiceProviders() *ServiceProviderRepository {
	if u.serviceProviders == nil {
		u.serviceProviders = &ServiceProviderRepository{newRepository[*models.ServiceProvider](u, schema.ServiceProviders)}
	}
	return u.serviceProviders
}

func (u *UnitOfWork) MetConfirmations() *MetConfirmationRepository {
	if u.metConfirmations == nil {
		u.metConfirmations = &MetConfirmationRepository{newRepository[*models.MetConfirmation](u, schema.MetConfirmations)}
	}
	return u.metConfirmations
}

func (u *UnitOfWork) Devices() *DeviceRepository {
	if u.devices == nil {
		u.devices = &DeviceRepository{newRepository[*models.Device](u, schema.Devices)}
	}
	return u.devices
}

func (u *UnitOfWork) DeviceCards() *DeviceCardRepository {
	if u.deviceCards == nil {
		u.deviceCards = &DeviceCardRepository{newRepository[*models.DeviceCard](u, schema.DeviceCards)}
	}
	return u.deviceCards
}

func (u *UnitOfWork) DeviceOperations() *DeviceOperationRepository {
	if u.deviceOperations == nil {
		u.deviceOperations = &DeviceOperationRepository{newRepository[*models.DeviceOperation](u, schema.DeviceOperations)}
	}
	return u.deviceOperations
}

func (u *UnitOfWork) Events() *EventRepository {
	if u.events == nil {
		u.events = &EventRepository{newRepository[*models.Event](u, schema.Events)}
	}
	return u.events
}

func (u *UnitOfWork) TemplateElements() *TemplateElementRepository {
	if u.templateElements == nil {
		u.templateElements = &TemplateElementRepository{newRepository[*models.TemplateElement](u, schema.TemplateElements)}
	}
	return u.templateElements
}

// trackOriginal remembers the loaded record state. The interceptor diffs
// against it to detect disable transitions and caller-supplied stamps.
func (u *UnitOfWork) trackOriginal(table string, rec storage.Record) {
	id, ok := rec[storage.IDColumn].(int64)
	if !ok {
		return
	}
	rows := u.originals[table]
	if rows == nil {
		rows = make(map[int64]storage.Record)
		u.originals[table] = rows
	}
	rows[id] = rec.Clone()
}

func (u *UnitOfWork) original(table string, id int64) (storage.Record, bool) {
	rec, ok := u.originals[table][id]
	return rec, ok
}

func (u *UnitOfWork) stage(c change) {
	u.staged = append(u.staged, c)
}

// Pending reports the number of staged changes.
func (u *UnitOfWork) Pending() int {
	return len(u.staged)
}

// Complete stamps every staged change on behalf of actor and applies the
// whole batch atomically. Identifiers and row versions are written back to
// the staged entities. It returns the number of rows written.
func (u *UnitOfWork) Complete(ctx context.Context, actor string) (int, error) {
	if u.closed {
		return 0, &domain.ProcessFailureError{Message: "unit of work is closed"}
	}
	if len(u.staged) == 0 {
		return 0, nil
	}
	if actor == "" {
		actor = SystemActor
	}
	now := time.Now().UTC()

	muts := make([]storage.Mutation, len(u.staged))
	for i, c := range u.staged {
		muts[i] = u.intercept(c, now, actor)
	}

	ids, err := u.driver.Apply(ctx, muts)
	if err != nil {
		return 0, fmt.Errorf("apply batch: %w", err)
	}

	for i, c := range u.staged {
		switch muts[i].Op {
		case storage.OpInsert:
			c.entity.SetEntityID(ids[i])
			c.entity.SetVersion(1)
		case storage.OpUpdate:
			c.entity.SetVersion(muts[i].Version + 1)
		case storage.OpDelete:
			delete(u.originals[c.desc.Table], muts[i].ID)
			continue
		}
		u.trackOriginal(c.desc.Table, dematerialize(c.desc, c.entity))
	}

	n := len(u.staged)
	u.staged = nil
	u.logger.Debug("unit of work completed", "rows", n, "actor", actor)
	return n, nil
}

// ExecTx runs fn inside one storage transaction with a child session bound
// to it. Changes staged on the child are committed by the child's own
// Complete calls; the transaction is rolled back if fn returns an error.
func (u *UnitOfWork) ExecTx(ctx context.Context, fn func(ctx context.Context, tx *UnitOfWork) error) error {
	if u.closed {
		return &domain.ProcessFailureError{Message: "unit of work is closed"}
	}
	return u.driver.ExecTx(ctx, func(ctx context.Context, tx storage.Driver) error {
		return fn(ctx, NewUnitOfWork(tx, u.logger))
	})
}

// Close discards staged changes and tracked state. Idempotent. The driver is
// owned by the caller and stays open.
func (u *UnitOfWork) Close() {
	if u.closed {
		return
	}
	u.closed = true
	u.staged = nil
	u.originals = nil
}
