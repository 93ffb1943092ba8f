package models

// Location is a physical site a device can be assigned to.
type Location struct {
	Base
	AuditStamps
	RemovalStamps

	Name string

	// Devices assigned to this location, populated on request via the
	// "devices" include path.
	Devices []*Device
}
