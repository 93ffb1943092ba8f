package models

// MetConfirmation records a metrological calibration confirmation with up to
// four confirmation levels. Lvl1 is mandatory, the rest are optional.
type MetConfirmation struct {
	Base
	AuditStamps
	RemovalStamps

	Name string
	Lvl1 string
	Lvl2 *string
	Lvl3 *string
	Lvl4 *string

	Cards []*DeviceCard
}
