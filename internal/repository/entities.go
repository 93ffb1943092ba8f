package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"metron/internal/domain"
	"metron/internal/domain/models"
)

// Entity-specific repositories wrap the generic one with the lookups the
// services need. Name matching is case-insensitive throughout.

type LocationRepository struct {
	*Repository[*models.Location]
}

func (r *LocationRepository) ByName(ctx context.Context, name string) (*models.Location, error) {
	return r.First(ctx, func(l *models.Location) bool {
		return strings.EqualFold(l.Name, name)
	})
}

func (r *LocationRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	return isNameUnique(ctx, func() (any, error) { return r.ByName(ctx, name) })
}

type SupplierRepository struct {
	*Repository[*models.Supplier]
}

func (r *SupplierRepository) ByName(ctx context.Context, name string) (*models.Supplier, error) {
	return r.First(ctx, func(s *models.Supplier) bool {
		return strings.EqualFold(s.Name, name)
	})
}

func (r *SupplierRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	return isNameUnique(ctx, func() (any, error) { return r.ByName(ctx, name) })
}

type ServiceProviderRepository struct {
	*Repository[*models.ServiceProvider]
}

func (r *ServiceProviderRepository) ByName(ctx context.Context, name string) (*models.ServiceProvider, error) {
	return r.First(ctx, func(s *models.ServiceProvider) bool {
		return strings.EqualFold(s.Name, name)
	})
}

func (r *ServiceProviderRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	return isNameUnique(ctx, func() (any, error) { return r.ByName(ctx, name) })
}

type MetConfirmationRepository struct {
	*Repository[*models.MetConfirmation]
}

func (r *MetConfirmationRepository) ByName(ctx context.Context, name string) (*models.MetConfirmation, error) {
	return r.First(ctx, func(m *models.MetConfirmation) bool {
		return strings.EqualFold(m.Name, name)
	})
}

func (r *MetConfirmationRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	return isNameUnique(ctx, func() (any, error) { return r.ByName(ctx, name) })
}

type DeviceRepository struct {
	*Repository[*models.Device]
}

func (r *DeviceRepository) ByName(ctx context.Context, name string, includes ...string) (*models.Device, error) {
	return r.First(ctx, func(d *models.Device) bool {
		return strings.EqualFold(d.Name, name)
	}, includes...)
}

func (r *DeviceRepository) IsNameUnique(ctx context.Context, name string) (bool, error) {
	return isNameUnique(ctx, func() (any, error) { return r.ByName(ctx, name) })
}

type DeviceCardRepository struct {
	*Repository[*models.DeviceCard]
}

func (r *DeviceCardRepository) ByDeviceID(ctx context.Context, deviceID int64, includes ...string) (*models.DeviceCard, error) {
	return r.First(ctx, func(c *models.DeviceCard) bool {
		return c.DeviceID == deviceID
	}, includes...)
}

func (r *DeviceCardRepository) BySerial(ctx context.Context, serial string, includes ...string) (*models.DeviceCard, error) {
	return r.First(ctx, func(c *models.DeviceCard) bool {
		return strings.EqualFold(c.SerialNumber, serial)
	}, includes...)
}

func (r *DeviceCardRepository) IsSerialUnique(ctx context.Context, serial string) (bool, error) {
	return isNameUnique(ctx, func() (any, error) { return r.BySerial(ctx, serial) })
}

type DeviceOperationRepository struct {
	*Repository[*models.DeviceOperation]
}

// ByCard returns the card's live operations ordered by order number.
func (r *DeviceOperationRepository) ByCard(ctx context.Context, cardID int64) ([]*models.DeviceOperation, error) {
	ops, err := r.Find(ctx, func(o *models.DeviceOperation) bool {
		return o.DeviceCardID == cardID
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].OrderNo != ops[j].OrderNo {
			return ops[i].OrderNo < ops[j].OrderNo
		}
		return ops[i].ID < ops[j].ID
	})
	return ops, nil
}

type EventRepository struct {
	*Repository[*models.Event]
}

func (r *EventRepository) ByCard(ctx context.Context, cardID int64) ([]*models.Event, error) {
	return r.Find(ctx, func(e *models.Event) bool {
		return e.DeviceCardID == cardID
	})
}

type TemplateElementRepository struct {
	*Repository[*models.TemplateElement]
}

func isNameUnique(_ context.Context, lookup func() (any, error)) (bool, error) {
	_, err := lookup()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
