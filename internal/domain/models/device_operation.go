package models

// DeviceOperation is one checklist entry attached to a device card. Entries
// form an ordered set per card via OrderNo; order numbers are positive and
// unique within a card but are not required to be contiguous.
//
// Value and Unit are set together or not at all (measurement operations carry
// both, confirmation-only operations carry neither).
type DeviceOperation struct {
	Base
	AuditStamps
	RemovalStamps

	DeviceCardID      int64
	OrderNo           int
	TemplateElementID int64
	IsRequired        bool
	Name              string
	Label             string
	Value             *float64
	Unit              *string
	OperationStatus   string

	Card            *DeviceCard
	TemplateElement *TemplateElement
}
