package events

import (
	"time"
)

// Event represents a single notification delivered by the device.
// Events are treated as immutable once constructed.
type Event struct {
	// Name is the event type (e.g. "CallStateChanged"); always set
	Name string

	// ID is the device-assigned event id, empty when the notification carried none
	ID string

	// Timestamp is when the device raised the event, zero when absent
	Timestamp time.Time

	// Data holds the event parameters keyed by lower-case tag name
	Data map[string]string
}

// NewEvent creates a new Event. The data map is copied to ensure immutability.
func NewEvent(name, id string, timestamp time.Time, data map[string]string) *Event {
	dataCopy := make(map[string]string, len(data))
	for k, v := range data {
		dataCopy[k] = v
	}

	return &Event{
		Name:      name,
		ID:        id,
		Timestamp: timestamp,
		Data:      dataCopy,
	}
}

// HasTimestamp reports whether the notification carried a timestamp.
func (e *Event) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

// Copy returns a deep copy of the Event.
func (e *Event) Copy() *Event {
	return NewEvent(e.Name, e.ID, e.Timestamp, e.Data)
}
