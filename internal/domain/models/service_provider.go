package models

// ServiceProvider is the organization servicing an installed device unit.
type ServiceProvider struct {
	Base
	AuditStamps
	RemovalStamps

	Name    string
	Contact *string

	Cards []*DeviceCard
}
