package events

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/beevik/etree"
)

const (
	// NamespaceEvent is the 2N event namespace used by notifications and SOAP responses
	NamespaceEvent = "http://www.2n.cz/2013/event"

	// TimestampLayout is the format of the Timestamp element
	TimestampLayout = "2006-01-02T15:04:05Z"

	namePrefix = "event2n:"
)

var (
	// ErrMalformedPayload is returned when the notification is not XML
	ErrMalformedPayload = errors.New("malformed notification payload")
	// ErrMissingEventName is returned when the notification has no EventName element
	ErrMissingEventName = errors.New("notification has no EventName element")
	// ErrInvalidTimestamp is returned when the Timestamp element cannot be parsed
	ErrInvalidTimestamp = errors.New("invalid notification timestamp")
)

// Parse converts a raw notification payload into an Event.
// It never panics; every rejected payload comes back as a wrapped sentinel error.
func Parse(raw []byte) (*Event, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if doc.Root() == nil {
		return nil, ErrMalformedPayload
	}

	nameElement := FindElement(&doc.Element, NamespaceEvent, "EventName")
	if nameElement == nil {
		return nil, ErrMissingEventName
	}
	name := strings.TrimPrefix(strings.TrimSpace(nameElement.Text()), namePrefix)
	if name == "" {
		return nil, ErrMissingEventName
	}

	var id string
	if idElement := FindElement(&doc.Element, NamespaceEvent, "Id"); idElement != nil {
		id = strings.TrimSpace(idElement.Text())
	}

	var timestamp time.Time
	if tsElement := FindElement(&doc.Element, NamespaceEvent, "Timestamp"); tsElement != nil {
		ts, err := time.Parse(TimestampLayout, strings.TrimSpace(tsElement.Text()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		timestamp = ts
	}

	data := make(map[string]string)
	if dataElement := FindElement(&doc.Element, NamespaceEvent, "Data"); dataElement != nil {
		for _, child := range dataElement.ChildElements() {
			// etree keeps the prefix in Space, Tag is already local
			data[strings.ToLower(child.Tag)] = child.Text()
		}
	}

	return &Event{
		Name:      name,
		ID:        id,
		Timestamp: timestamp,
		Data:      data,
	}, nil
}

// ParseEvent is the soft-failing form of Parse used by the callback listener:
// rejected payloads are logged at warning level and yield nil.
func ParseEvent(raw []byte, logger *slog.Logger) *Event {
	event, err := Parse(raw)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("ignoring unknown event notification", "error", err, "bytes", len(raw))
		return nil
	}
	return event
}

// FindElement returns the first descendant of root whose local name is tag and
// whose resolved namespace is space. An empty space matches any namespace.
func FindElement(root *etree.Element, space, tag string) *etree.Element {
	for _, el := range root.FindElements("//" + tag) {
		if space == "" || el.NamespaceURI() == space {
			return el
		}
	}
	return nil
}
