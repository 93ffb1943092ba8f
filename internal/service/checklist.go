// Package service implements the operations layered over the persistence
// core: checklist reordering, device and card workflows. Each operation owns
// one unit of work; commit authority never leaves the service method.
package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"metron/internal/domain"
	"metron/internal/domain/models"
	"metron/internal/repository"
	"metron/internal/storage"
)

// OrderedOperation pairs an operation id with its desired order number in a
// reorder batch.
type OrderedOperation struct {
	OperationID int64
	OrderNo     int
}

// ChecklistService manages a card's operation checklist.
type ChecklistService struct {
	driver storage.Driver
	logger *slog.Logger
}

func NewChecklistService(driver storage.Driver, logger *slog.Logger) *ChecklistService {
	return &ChecklistService{driver: driver, logger: logger}
}

// Reorder renumbers the card's checklist per the batch. Every referenced
// operation must be a live child of the card; order numbers must be positive
// and pairwise distinct. Operations whose order already matches are not
// written. The returned set is always the card's complete checklist ordered
// by order number, whether or not anything changed.
func (s *ChecklistService) Reorder(ctx context.Context, actor string, cardID int64, batch []OrderedOperation) ([]*models.DeviceOperation, error) {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	// A missing card reads as not found even when the batch is also
	// malformed; batch validation comes second.
	if _, err := uow.DeviceCards().GetByID(ctx, cardID); err != nil {
		return nil, err
	}
	if err := validateBatch(batch); err != nil {
		return nil, err
	}
	ops, err := uow.DeviceOperations().ByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*models.DeviceOperation, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	for _, item := range batch {
		op, ok := byID[item.OperationID]
		if !ok {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("operation %d does not belong to card %d", item.OperationID, cardID),
			}
		}
		if op.OrderNo != item.OrderNo {
			op.OrderNo = item.OrderNo
			uow.DeviceOperations().Update(op)
		}
	}

	if uow.Pending() == 0 {
		return ops, nil
	}
	if _, err := uow.Complete(ctx, actor); err != nil {
		return nil, err
	}
	return uow.DeviceOperations().ByCard(ctx, cardID)
}

// AddOperation appends an operation to the card's checklist. When the order
// number is unset it lands after the current maximum.
func (s *ChecklistService) AddOperation(ctx context.Context, actor string, op *models.DeviceOperation) (*models.DeviceOperation, error) {
	if err := validation.ValidateStruct(op,
		validation.Field(&op.DeviceCardID, validation.Required),
		validation.Field(&op.Name, validation.Required),
		validation.Field(&op.Label, validation.Required),
		validation.Field(&op.OperationStatus, validation.Required),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	if _, err := uow.DeviceCards().GetByID(ctx, op.DeviceCardID); err != nil {
		return nil, err
	}
	if op.OrderNo == 0 {
		siblings, err := uow.DeviceOperations().ByCard(ctx, op.DeviceCardID)
		if err != nil {
			return nil, err
		}
		max := 0
		for _, s := range siblings {
			if s.OrderNo > max {
				max = s.OrderNo
			}
		}
		op.OrderNo = max + 1
	}

	uow.DeviceOperations().Add(op)
	if _, err := uow.Complete(ctx, actor); err != nil {
		return nil, err
	}
	return op, nil
}

// RemoveOperation soft-removes one operation from its card.
func (s *ChecklistService) RemoveOperation(ctx context.Context, actor string, operationID int64) error {
	uow := repository.NewUnitOfWork(s.driver, s.logger)
	defer uow.Close()

	op, err := uow.DeviceOperations().GetByID(ctx, operationID)
	if err != nil {
		return err
	}
	uow.DeviceOperations().Remove(op)
	_, err = uow.Complete(ctx, actor)
	return err
}

func validateBatch(batch []OrderedOperation) error {
	seenOrder := make(map[int]bool, len(batch))
	seenID := make(map[int64]bool, len(batch))
	for i := range batch {
		item := batch[i]
		if err := validation.ValidateStruct(&item,
			validation.Field(&item.OperationID, validation.Required, validation.Min(int64(1))),
			validation.Field(&item.OrderNo, validation.Required, validation.Min(1)),
		); err != nil {
			return &domain.ValidationError{Message: fmt.Sprintf("reorder entry %d: %v", i, err)}
		}
		if seenOrder[item.OrderNo] {
			return &domain.ValidationError{
				Message: fmt.Sprintf("duplicate order number %d in batch", item.OrderNo),
			}
		}
		if seenID[item.OperationID] {
			return &domain.ValidationError{
				Message: fmt.Sprintf("operation %d referenced twice in batch", item.OperationID),
			}
		}
		seenOrder[item.OrderNo] = true
		seenID[item.OperationID] = true
	}
	return nil
}
