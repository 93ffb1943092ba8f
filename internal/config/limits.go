package config

const (
	// MaxNameLength is the maximum length for entity names (locations,
	// suppliers, devices and the like). Limited to 100 to match the
	// storage schema and provide reasonable UX (names should be short
	// and descriptive).
	MaxNameLength = 100

	// MaxSerialNumberLength is the maximum length for device card serial
	// numbers, matching the storage schema.
	MaxSerialNumberLength = 20

	// MaxLabelLength is the maximum length for checklist operation labels,
	// matching the storage schema.
	MaxLabelLength = 50

	// MaxActorLength is the maximum length for acting-user identifiers.
	// UUID strings are 36 characters.
	MaxActorLength = 36
)
