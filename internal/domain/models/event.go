package models

// EventType classifies an audit event recorded against a device card.
type EventType int

const (
	EventCreated EventType = iota + 1
	EventUpdated
	EventDisabled
	EventEnabled
	EventServiced
)

// Event is an append-oriented audit record attached to a device card.
type Event struct {
	Base
	AuditStamps
	RemovalStamps

	DeviceCardID int64
	EventType    EventType
	Description  *string

	Card *DeviceCard
}
