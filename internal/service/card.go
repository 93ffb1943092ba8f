package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"metron/internal/config"
	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/repository"
	"metron/internal/storage"
)

// DeviceCardService creates and reads the per-device card aggregate.
type DeviceCardService struct {
	driver storage.Driver
	logger *slog.Logger
}

func NewDeviceCardService(driver storage.Driver, logger *slog.Logger) *DeviceCardService {
	return &DeviceCardService{driver: driver, logger: logger}
}

// Create registers a card for a device. All referenced aggregates must exist
// and not be removed; the serial number must be unique among live cards. The
// card and its creation event commit in one transaction.
func (s *DeviceCardService) Create(ctx context.Context, actor string, card *models.DeviceCard) (*models.DeviceCard, error) {
	if err := validation.ValidateStruct(card,
		validation.Field(&card.DeviceID, validation.Required),
		validation.Field(&card.SerialNumber, validation.Required, validation.Length(1, config.MaxSerialNumberLength)),
		validation.Field(&card.ActivationDate, validation.Required),
		validation.Field(&card.SupplierID, validation.Required),
		validation.Field(&card.ServiceProviderID, validation.Required),
		validation.Field(&card.MetConfirmationID, validation.Required),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	root := repository.NewUnitOfWork(s.driver, s.logger)
	defer root.Close()

	err := root.ExecTx(ctx, func(ctx context.Context, uow *repository.UnitOfWork) error {
		if _, err := uow.Devices().GetByID(ctx, card.DeviceID); err != nil {
			return err
		}
		if _, err := uow.Suppliers().GetByID(ctx, card.SupplierID); err != nil {
			return err
		}
		if _, err := uow.ServiceProviders().GetByID(ctx, card.ServiceProviderID); err != nil {
			return err
		}
		if _, err := uow.MetConfirmations().GetByID(ctx, card.MetConfirmationID); err != nil {
			return err
		}
		unique, err := uow.DeviceCards().IsSerialUnique(ctx, card.SerialNumber)
		if err != nil {
			return err
		}
		if !unique {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("serial number %q already registered", card.SerialNumber),
				ResourceType: "deviceCard",
			}
		}

		uow.DeviceCards().Add(card)
		if _, err := uow.Complete(ctx, actor); err != nil {
			return err
		}

		uow.Events().Add(&models.Event{
			DeviceCardID: card.ID,
			EventType:    models.EventCreated,
		})
		_, err = uow.Complete(ctx, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("device card created", "id", card.ID, "serial", card.SerialNumber)
	return card, nil
}

// GetBySerial returns the live card with its device loaded.
func (s *DeviceCardService) GetBySerial(ctx context.Context, serial string) (*models.DeviceCard, error) {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	return uow.DeviceCards().BySerial(ctx, serial, "device")
}

// History returns the card's recorded events.
func (s *DeviceCardService) History(ctx context.Context, cardID int64) ([]*models.Event, error) {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	if _, err := uow.DeviceCards().GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	return uow.Events().ByCard(ctx, cardID)
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
