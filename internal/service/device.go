package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"metron/internal/config"
	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/repository"
	"metron/internal/storage"
)

// DeviceService owns the device lifecycle: creation, lookup, and the
// disable/enable transitions.
type DeviceService struct {
	driver storage.Driver
	logger *slog.Logger
}

func NewDeviceService(driver storage.Driver, logger *slog.Logger) *DeviceService {
	return &DeviceService{driver: driver, logger: logger}
}

// Create registers a device. The name must be unique among live devices and
// a referenced location must exist.
func (s *DeviceService) Create(ctx context.Context, actor string, device *models.Device) (*models.Device, error) {
	if err := validation.ValidateStruct(device,
		validation.Field(&device.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	unique, err := uow.Devices().IsNameUnique(ctx, device.Name)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("device %q already exists", device.Name),
			ResourceType: "device",
		}
	}
	if device.LocationID != nil {
		if _, err := uow.Locations().GetByID(ctx, *device.LocationID); err != nil {
			return nil, err
		}
	}

	uow.Devices().Add(device)
	if _, err := uow.Complete(ctx, actor); err != nil {
		return nil, err
	}
	s.logger.Info("device created", "id", device.ID, "name", device.Name)
	return device, nil
}

// GetByName returns the live device, optionally eager-loading navigations.
func (s *DeviceService) GetByName(ctx context.Context, name string, includes ...string) (*models.Device, error) {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()
	return uow.Devices().ByName(ctx, name, includes...)
}

// SetDisabled flips the device's disabled flag. The disablement stamps are
// derived from the transition at commit; re-applying the current state is a
// no-op. The matching event is recorded on the device's card when one exists.
func (s *DeviceService) SetDisabled(ctx context.Context, actor string, deviceID int64, disabled bool) (*models.Device, error) {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	device, err := uow.Devices().GetByIDIncludingDisabled(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if device.IsDisabled == disabled {
		return device, nil
	}
	device.IsDisabled = disabled
	uow.Devices().Update(device)

	if card, err := uow.DeviceCards().ByDeviceID(ctx, deviceID); err == nil {
		eventType := models.EventEnabled
		if disabled {
			eventType = models.EventDisabled
		}
		uow.Events().Add(&models.Event{
			DeviceCardID: card.ID,
			EventType:    eventType,
		})
	} else if !isNotFound(err) {
		return nil, err
	}

	if _, err := uow.Complete(ctx, actor); err != nil {
		return nil, err
	}
	return device, nil
}

// Remove soft-removes the device.
func (s *DeviceService) Remove(ctx context.Context, actor string, deviceID int64) error {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	device, err := uow.Devices().GetByID(ctx, deviceID)
	if err != nil {
		return err
	}
	uow.Devices().Remove(device)
	_, err = uow.Complete(ctx, actor)
	return err
}
