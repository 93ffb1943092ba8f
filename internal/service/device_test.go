package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/repository"
	"metron/internal/storage"
	"metron/internal/storage/memory"
)

func seedAggregates(t *testing.T, driver storage.Driver) (supplierID, providerID, confirmationID int64) {
	t.Helper()
	ctx := context.Background()
	uow := repository.NewUnitOfWork(driver, slog.Default())
	defer uow.Close()

	supplier := &models.Supplier{Name: "Acme"}
	provider := &models.ServiceProvider{Name: "CalCo"}
	confirmation := &models.MetConfirmation{Name: "annual", Lvl1: "full"}
	uow.Suppliers().Add(supplier)
	uow.ServiceProviders().Add(provider)
	uow.MetConfirmations().Add(confirmation)
	if _, err := uow.Complete(ctx, "seed"); err != nil {
		t.Fatalf("seed aggregates: %v", err)
	}
	return supplier.ID, provider.ID, confirmation.ID
}

func TestDeviceCreate(t *testing.T) {
	driver := memory.NewStore()
	svc := NewDeviceService(driver, slog.Default())
	ctx := context.Background()

	dev, err := svc.Create(ctx, "alice", &models.Device{Name: "Scale-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dev.ID == 0 || dev.CreatedBy != "alice" {
		t.Errorf("device not stamped: %+v", dev)
	}

	// Duplicate name conflicts
	if _, err := svc.Create(ctx, "alice", &models.Device{Name: "scale-1"}); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate name: got %v, want ErrConflict", err)
	}

	// Missing location is not found
	missing := int64(99)
	if _, err := svc.Create(ctx, "alice", &models.Device{Name: "Scale-2", LocationID: &missing}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing location: got %v, want ErrNotFound", err)
	}

	// Empty name fails validation
	if _, err := svc.Create(ctx, "alice", &models.Device{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty name: got %v, want ErrValidation", err)
	}
}

func TestDeviceSetDisabledRecordsEvent(t *testing.T) {
	driver := memory.NewStore()
	deviceSvc := NewDeviceService(driver, slog.Default())
	cardSvc := NewDeviceCardService(driver, slog.Default())
	ctx := context.Background()

	supplierID, providerID, confirmationID := seedAggregates(t, driver)
	dev, err := deviceSvc.Create(ctx, "alice", &models.Device{Name: "Scale-1"})
	if err != nil {
		t.Fatalf("create device: %v", err)
	}
	card, err := cardSvc.Create(ctx, "alice", &models.DeviceCard{
		DeviceID:          dev.ID,
		SerialNumber:      "SN-001",
		ActivationDate:    time.Now().UTC(),
		SupplierID:        supplierID,
		ServiceProviderID: providerID,
		MetConfirmationID: confirmationID,
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}

	got, err := deviceSvc.SetDisabled(ctx, "bob", dev.ID, true)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !got.IsDisabled || got.DisabledBy == nil || *got.DisabledBy != "bob" {
		t.Errorf("disable stamps missing: %+v", got.DisableStamps)
	}

	events, err := cardSvc.History(ctx, card.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var sawDisabled bool
	for _, ev := range events {
		if ev.EventType == models.EventDisabled {
			sawDisabled = true
		}
	}
	if !sawDisabled {
		t.Errorf("no disabled event recorded, got %d events", len(events))
	}

	// Disabling again is a no-op
	again, err := deviceSvc.SetDisabled(ctx, "carol", dev.ID, true)
	if err != nil {
		t.Fatalf("repeat disable: %v", err)
	}
	if *again.DisabledBy != "bob" {
		t.Errorf("no-op disable restamped: %q", *again.DisabledBy)
	}
}

func TestCardCreateChecksReferences(t *testing.T) {
	driver := memory.NewStore()
	deviceSvc := NewDeviceService(driver, slog.Default())
	cardSvc := NewDeviceCardService(driver, slog.Default())
	ctx := context.Background()

	supplierID, providerID, confirmationID := seedAggregates(t, driver)
	dev, err := deviceSvc.Create(ctx, "alice", &models.Device{Name: "Scale-1"})
	if err != nil {
		t.Fatalf("create device: %v", err)
	}

	// Unknown supplier fails and writes nothing
	_, err = cardSvc.Create(ctx, "alice", &models.DeviceCard{
		DeviceID:          dev.ID,
		SerialNumber:      "SN-001",
		ActivationDate:    time.Now().UTC(),
		SupplierID:        999,
		ServiceProviderID: providerID,
		MetConfirmationID: confirmationID,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown supplier: got %v, want ErrNotFound", err)
	}
	rows, _ := driver.List(ctx, "device_card", nil)
	if len(rows) != 0 {
		t.Errorf("failed create left %d card rows", len(rows))
	}

	card, err := cardSvc.Create(ctx, "alice", &models.DeviceCard{
		DeviceID:          dev.ID,
		SerialNumber:      "SN-001",
		ActivationDate:    time.Now().UTC(),
		SupplierID:        supplierID,
		ServiceProviderID: providerID,
		MetConfirmationID: confirmationID,
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}

	// Duplicate serial conflicts
	_, err = cardSvc.Create(ctx, "alice", &models.DeviceCard{
		DeviceID:          dev.ID,
		SerialNumber:      "sn-001",
		ActivationDate:    time.Now().UTC(),
		SupplierID:        supplierID,
		ServiceProviderID: providerID,
		MetConfirmationID: confirmationID,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate serial: got %v, want ErrConflict", err)
	}

	// Creation event was recorded in the same transaction
	events, err := cardSvc.History(ctx, card.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(events) != 1 || events[0].EventType != models.EventCreated {
		t.Errorf("creation event missing: %+v", events)
	}
}

func TestEndToEndScenario(t *testing.T) {
	driver := memory.NewStore()
	deviceSvc := NewDeviceService(driver, slog.Default())
	cardSvc := NewDeviceCardService(driver, slog.Default())
	ctx := context.Background()
	actor := uuid.NewString()

	locUow := repository.NewUnitOfWork(driver, slog.Default())
	lab := &models.Location{Name: "Lab A"}
	locUow.Locations().Add(lab)
	if _, err := locUow.Complete(ctx, actor); err != nil {
		t.Fatalf("create location: %v", err)
	}
	locUow.Close()

	dev, err := deviceSvc.Create(ctx, actor, &models.Device{Name: "Scale-1", LocationID: &lab.ID})
	if err != nil {
		t.Fatalf("create device: %v", err)
	}

	supplierID, providerID, confirmationID := seedAggregates(t, driver)
	if _, err := cardSvc.Create(ctx, actor, &models.DeviceCard{
		DeviceID:          dev.ID,
		SerialNumber:      "SN-001",
		ActivationDate:    time.Now().UTC(),
		SupplierID:        supplierID,
		ServiceProviderID: providerID,
		MetConfirmationID: confirmationID,
	}); err != nil {
		t.Fatalf("create card: %v", err)
	}

	got, err := deviceSvc.GetByName(ctx, "Scale-1", "card", "location")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got.Card == nil || got.Card.SerialNumber != "SN-001" {
		t.Fatalf("card not loaded: %+v", got.Card)
	}
	if got.Location == nil || got.Location.Name != "Lab A" {
		t.Fatalf("location not loaded: %+v", got.Location)
	}
	if got.CreatedBy != actor || got.Card.CreatedBy != actor {
		t.Errorf("audit actors missing: device=%q card=%q", got.CreatedBy, got.Card.CreatedBy)
	}
	if got.CreatedAt.IsZero() || got.Card.CreatedAt.IsZero() {
		t.Error("audit timestamps missing")
	}
}
