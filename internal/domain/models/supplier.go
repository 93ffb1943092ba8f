package models

// Supplier is the vendor a device unit was purchased from.
type Supplier struct {
	Base
	AuditStamps
	RemovalStamps

	Name    string
	Contact *string

	Cards []*DeviceCard
}
