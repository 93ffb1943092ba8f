package repository

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/query"
	"metron/internal/storage"
	"metron/internal/storage/memory"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func newSession(t *testing.T, driver storage.Driver) *UnitOfWork {
	t.Helper()
	uow := NewUnitOfWork(driver, testLogger())
	t.Cleanup(uow.Close)
	return uow
}

func createLocation(t *testing.T, driver storage.Driver, name, actor string) *models.Location {
	t.Helper()
	uow := NewUnitOfWork(driver, testLogger())
	defer uow.Close()
	loc := &models.Location{Name: name}
	uow.Locations().Add(loc)
	if _, err := uow.Complete(context.Background(), actor); err != nil {
		t.Fatalf("create location: %v", err)
	}
	return loc
}

func TestInsertStampsAudit(t *testing.T) {
	driver := memory.NewStore()
	loc := createLocation(t, driver, "Lab A", "alice")

	if loc.ID == 0 {
		t.Error("id not written back")
	}
	if loc.RowVersion != 1 {
		t.Errorf("row version = %d, want 1", loc.RowVersion)
	}
	if loc.CreatedBy != "alice" || loc.ModifiedBy != "alice" {
		t.Errorf("actors = %q/%q, want alice/alice", loc.CreatedBy, loc.ModifiedBy)
	}
	if !loc.CreatedAt.Equal(loc.ModifiedAt) {
		t.Errorf("createdAt %v != modifiedAt %v after insert", loc.CreatedAt, loc.ModifiedAt)
	}
	if loc.CreatedAt.IsZero() {
		t.Error("createdAt not stamped")
	}
}

func TestEmptyActorBecomesSystem(t *testing.T) {
	driver := memory.NewStore()
	loc := createLocation(t, driver, "Lab A", "")
	if loc.CreatedBy != SystemActor {
		t.Errorf("createdBy = %q, want %q", loc.CreatedBy, SystemActor)
	}
}

func TestUpdateTouchesModifiedOnly(t *testing.T) {
	driver := memory.NewStore()
	created := createLocation(t, driver, "Lab A", "alice")

	uow := newSession(t, driver)
	loc, err := uow.Locations().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	loc.Name = "Lab B"
	uow.Locations().Update(loc)
	if _, err := uow.Complete(context.Background(), "bob"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if loc.CreatedBy != "alice" {
		t.Errorf("createdBy changed to %q", loc.CreatedBy)
	}
	if loc.ModifiedBy != "bob" {
		t.Errorf("modifiedBy = %q, want bob", loc.ModifiedBy)
	}
	if !loc.ModifiedAt.After(loc.CreatedAt) {
		t.Errorf("modifiedAt %v not after createdAt %v", loc.ModifiedAt, loc.CreatedAt)
	}
	if loc.RowVersion != 2 {
		t.Errorf("row version = %d, want 2", loc.RowVersion)
	}
}

func TestCallerStampsAreOverwritten(t *testing.T) {
	driver := memory.NewStore()
	created := createLocation(t, driver, "Lab A", "alice")

	// The commit owns the modification pair: stray caller-set values must
	// not survive, or the audit trail would attribute the change to the
	// wrong actor and could place modifiedAt before createdAt.
	uow := newSession(t, driver)
	loc, err := uow.Locations().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	loc.ModifiedAt = time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	loc.ModifiedBy = "importer"
	uow.Locations().Update(loc)
	if _, err := uow.Complete(context.Background(), "bob"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if loc.ModifiedBy != "bob" {
		t.Errorf("modifiedBy = %q, want bob", loc.ModifiedBy)
	}
	if loc.ModifiedAt.Before(loc.CreatedAt) {
		t.Errorf("modifiedAt %v precedes createdAt %v", loc.ModifiedAt, loc.CreatedAt)
	}
}

func TestInsertOverwritesCallerAudit(t *testing.T) {
	driver := memory.NewStore()
	uow := newSession(t, driver)

	loc := &models.Location{Name: "Lab A"}
	loc.CreatedAt = time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	loc.CreatedBy = "importer"
	uow.Locations().Add(loc)
	if _, err := uow.Complete(context.Background(), "alice"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if loc.CreatedBy != "alice" || loc.ModifiedBy != "alice" {
		t.Errorf("actors = %q/%q, want alice/alice", loc.CreatedBy, loc.ModifiedBy)
	}
	if !loc.CreatedAt.Equal(loc.ModifiedAt) {
		t.Errorf("createdAt %v != modifiedAt %v after insert", loc.CreatedAt, loc.ModifiedAt)
	}
	if loc.CreatedAt.Year() == 2020 {
		t.Error("caller-set createdAt survived the insert")
	}
}

func TestRemoveIsSoftDelete(t *testing.T) {
	driver := memory.NewStore()
	created := createLocation(t, driver, "Lab A", "alice")
	ctx := context.Background()

	uow := newSession(t, driver)
	loc, err := uow.Locations().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	uow.Locations().Remove(loc)
	if _, err := uow.Complete(ctx, "bob"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Row still physically present with removal stamps
	rec, err := driver.Get(ctx, "location", created.ID)
	if err != nil {
		t.Fatalf("row physically deleted: %v", err)
	}
	if rec["is_removed"] != true || rec["removed_at"] == nil || rec["removed_by"] != "bob" {
		t.Errorf("removal stamps incomplete: %v", rec)
	}

	// Default read is not-found, any-state read still works
	other := newSession(t, driver)
	if _, err := other.Locations().GetByID(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("removed entity readable: %v", err)
	}
	got, err := other.Locations().GetByIDAnyState(ctx, created.ID)
	if err != nil {
		t.Fatalf("any-state read: %v", err)
	}
	if !got.IsRemoved {
		t.Error("any-state read lost removal flag")
	}
}

func TestRemoveWithoutCapabilityIsPhysical(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()

	uow := newSession(t, driver)
	el := &models.TemplateElement{Name: "numeric", ElemType: 1}
	uow.TemplateElements().Add(el)
	if _, err := uow.Complete(ctx, "alice"); err != nil {
		t.Fatalf("add: %v", err)
	}

	uow.TemplateElements().Remove(el)
	if _, err := uow.Complete(ctx, "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := driver.Get(ctx, "template_element", el.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("template element still present: %v", err)
	}
}

func TestDisableTransitions(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()

	uow := newSession(t, driver)
	dev := &models.Device{Name: "Scale-1"}
	uow.Devices().Add(dev)
	if _, err := uow.Complete(ctx, "alice"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// false -> true stamps the pair
	s1 := newSession(t, driver)
	d1, err := s1.Devices().GetByID(ctx, dev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	d1.IsDisabled = true
	s1.Devices().Update(d1)
	if _, err := s1.Complete(ctx, "bob"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if d1.DisabledAt == nil || d1.DisabledBy == nil || *d1.DisabledBy != "bob" {
		t.Fatalf("disable stamps missing: %+v", d1.DisableStamps)
	}

	// disabled rows read as not found on the default accessor
	s2 := newSession(t, driver)
	if _, err := s2.Devices().GetByID(ctx, dev.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("disabled get: got %v, want ErrNotFound", err)
	}

	// same-value write leaves the pair alone
	d2, err := s2.Devices().GetByIDIncludingDisabled(ctx, dev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stampedAt := *d2.DisabledAt
	d2.IsDisabled = true
	s2.Devices().Update(d2)
	if _, err := s2.Complete(ctx, "carol"); err != nil {
		t.Fatalf("no-op disable: %v", err)
	}
	if d2.DisabledAt == nil || !d2.DisabledAt.Equal(stampedAt) || *d2.DisabledBy != "bob" {
		t.Errorf("steady-state write altered disable stamps: %+v", d2.DisableStamps)
	}

	// true -> false clears the pair
	s3 := newSession(t, driver)
	d3, err := s3.Devices().GetByIDIncludingDisabled(ctx, dev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	d3.IsDisabled = false
	s3.Devices().Update(d3)
	if _, err := s3.Complete(ctx, "carol"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if d3.DisabledAt != nil || d3.DisabledBy != nil {
		t.Errorf("enable left stamps behind: %+v", d3.DisableStamps)
	}
}

func TestConcurrentUpdateConflicts(t *testing.T) {
	driver := memory.NewStore()
	created := createLocation(t, driver, "Lab A", "alice")
	ctx := context.Background()

	first := newSession(t, driver)
	second := newSession(t, driver)

	l1, err := first.Locations().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	l2, err := second.Locations().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}

	l1.Name = "Lab B"
	first.Locations().Update(l1)
	if _, err := first.Complete(ctx, "alice"); err != nil {
		t.Fatalf("first complete: %v", err)
	}

	l2.Name = "Lab C"
	second.Locations().Update(l2)
	if _, err := second.Complete(ctx, "bob"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second complete: got %v, want ErrConflict", err)
	}

	// Winner's write is intact
	check := newSession(t, driver)
	got, err := check.Locations().GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if got.Name != "Lab B" {
		t.Errorf("name = %q, want Lab B", got.Name)
	}
}

func TestPage(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()

	setup := newSession(t, driver)
	for _, name := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		setup.Devices().Add(&models.Device{Name: name})
	}
	if _, err := setup.Complete(ctx, "alice"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	uow := newSession(t, driver)
	page, err := uow.Devices().Page(ctx, query.Parameters{
		PageNumber: 2,
		PageSize:   2,
		SortBy:     "name asc",
	})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.TotalCount != 5 || page.TotalPages() != 3 {
		t.Errorf("total=%d pages=%d, want 5/3", page.TotalCount, page.TotalPages())
	}
	if len(page.Items) != 2 || page.Items[0].Name != "delta" || page.Items[1].Name != "epsilon" {
		t.Errorf("unexpected page items: %+v", page.Items)
	}
	if !page.HasPreviousPage() || !page.HasNextPage() {
		t.Error("neighbor flags wrong for middle page")
	}

	searched, err := uow.Devices().Page(ctx, query.Parameters{SearchQuery: "ALph"})
	if err != nil {
		t.Fatalf("search page: %v", err)
	}
	if searched.TotalCount != 1 || searched.Items[0].Name != "alpha" {
		t.Errorf("search found %d items", searched.TotalCount)
	}
}

func TestPageExcludesRemoved(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()
	keep := createLocation(t, driver, "keep", "alice")
	gone := createLocation(t, driver, "gone", "alice")
	_ = keep

	uow := newSession(t, driver)
	loc, err := uow.Locations().GetByID(ctx, gone.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	uow.Locations().Remove(loc)
	if _, err := uow.Complete(ctx, "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	check := newSession(t, driver)
	page, err := check.Locations().Page(ctx, query.Parameters{})
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.TotalCount != 1 || page.Items[0].Name != "keep" {
		t.Errorf("removed row leaked into page: %+v", page.Items)
	}
}

func TestIncludeNavigations(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()

	seed := newSession(t, driver)
	loc := &models.Location{Name: "Lab A"}
	seed.Locations().Add(loc)
	if _, err := seed.Complete(ctx, "alice"); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	dev := &models.Device{Name: "Scale-1", LocationID: &loc.ID}
	seed.Devices().Add(dev)
	if _, err := seed.Complete(ctx, "alice"); err != nil {
		t.Fatalf("seed device: %v", err)
	}

	uow := newSession(t, driver)
	got, err := uow.Devices().GetByID(ctx, dev.ID, "location")
	if err != nil {
		t.Fatalf("get with include: %v", err)
	}
	if got.Location == nil || got.Location.Name != "Lab A" {
		t.Fatalf("location not loaded: %+v", got.Location)
	}

	// Reverse direction: location -> devices
	parent, err := uow.Locations().GetByID(ctx, loc.ID, "devices")
	if err != nil {
		t.Fatalf("get location: %v", err)
	}
	if len(parent.Devices) != 1 || parent.Devices[0].Name != "Scale-1" {
		t.Fatalf("devices not loaded: %+v", parent.Devices)
	}
}

func TestFinders(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()
	createLocation(t, driver, "Lab A", "alice")

	uow := newSession(t, driver)

	if _, err := uow.Locations().ByName(ctx, "lab a"); err != nil {
		t.Errorf("case-insensitive ByName failed: %v", err)
	}
	unique, err := uow.Locations().IsNameUnique(ctx, "Lab A")
	if err != nil {
		t.Fatalf("IsNameUnique: %v", err)
	}
	if unique {
		t.Error("existing name reported unique")
	}
	unique, err = uow.Locations().IsNameUnique(ctx, "Lab B")
	if err != nil {
		t.Fatalf("IsNameUnique: %v", err)
	}
	if !unique {
		t.Error("fresh name reported taken")
	}
}

func TestFirstLoadsIncludes(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()
	loc := createLocation(t, driver, "Lab A", "alice")

	uow := newSession(t, driver)
	dev := &models.Device{Name: "Scale-1", LocationID: &loc.ID}
	uow.Devices().Add(dev)
	if _, err := uow.Complete(ctx, "alice"); err != nil {
		t.Fatalf("add device: %v", err)
	}

	got, err := uow.Devices().ByName(ctx, "scale-1", "location")
	if err != nil {
		t.Fatalf("ByName: %v", err)
	}
	if got.Location == nil || got.Location.Name != "Lab A" {
		t.Errorf("location not loaded on finder result: %+v", got.Location)
	}
}

func TestExistsAndCount(t *testing.T) {
	driver := memory.NewStore()
	ctx := context.Background()
	createLocation(t, driver, "Lab A", "alice")
	createLocation(t, driver, "Lab B", "alice")
	gone := createLocation(t, driver, "Lab C", "alice")

	uow := newSession(t, driver)
	loc, err := uow.Locations().GetByID(ctx, gone.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	uow.Locations().Remove(loc)
	if _, err := uow.Complete(ctx, "alice"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	check := newSession(t, driver)
	total, err := check.Locations().Count(ctx, nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Errorf("count = %d, want 2 (removed rows excluded)", total)
	}
	n, err := check.Locations().Count(ctx, func(l *models.Location) bool {
		return l.Name == "Lab A"
	})
	if err != nil {
		t.Fatalf("count with predicate: %v", err)
	}
	if n != 1 {
		t.Errorf("predicate count = %d, want 1", n)
	}

	ok, err := check.Locations().Exists(ctx, func(l *models.Location) bool {
		return l.Name == "Lab B"
	})
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Error("live row reported missing")
	}
	ok, err = check.Locations().Exists(ctx, func(l *models.Location) bool {
		return l.Name == "Lab C"
	})
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Error("removed row reported existing")
	}
}

func TestCompleteOnClosedSession(t *testing.T) {
	driver := memory.NewStore()
	uow := NewUnitOfWork(driver, testLogger())
	uow.Close()
	uow.Close() // idempotent

	if _, err := uow.Complete(context.Background(), "alice"); !errors.Is(err, domain.ErrProcessFailure) {
		t.Errorf("got %v, want ErrProcessFailure", err)
	}
}
