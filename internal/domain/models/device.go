package models

// Device is a registered device type. A device can be taken out of service
// (disabled) and brought back without losing its record or its card.
type Device struct {
	Base
	AuditStamps
	RemovalStamps
	DisableStamps

	Name       string
	LocationID *int64

	// Navigations, populated on request via include paths.
	Location *Location
	Card     *DeviceCard
}
