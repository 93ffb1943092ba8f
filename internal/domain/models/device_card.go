package models

import "time"

// DeviceCard is the installed-unit record for a device: one card per device,
// identified by serial number, linked to the supplier that delivered the
// unit, the provider servicing it, and its calibration confirmation.
type DeviceCard struct {
	Base
	AuditStamps
	RemovalStamps
	DisableStamps

	DeviceID          int64
	SerialNumber      string
	ActivationDate    time.Time
	SupplierID        int64
	ServiceProviderID int64
	MetConfirmationID int64

	// Navigations, populated on request via include paths.
	Device          *Device
	Supplier        *Supplier
	ServiceProvider *ServiceProvider
	MetConfirmation *MetConfirmation
	Events          []*Event
	Operations      []*DeviceOperation
}
