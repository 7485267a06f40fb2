package soap

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
)

// SubscriptionResponse holds the fields the device returns from Subscribe and Renew.
type SubscriptionResponse struct {
	// SubscriptionID is only present in Subscribe responses
	SubscriptionID string

	// CurrentTime is the device clock when it answered
	CurrentTime time.Time

	// TerminationTime is when the subscription will lapse
	TerminationTime time.Time
}

// GrantedSeconds returns the lifetime granted by the device in whole seconds,
// never negative.
func (r *SubscriptionResponse) GrantedSeconds() int {
	return GrantedSeconds(r.CurrentTime, r.TerminationTime)
}

// GrantedSeconds computes termination - current in whole seconds, floored at 0.
func GrantedSeconds(current, termination time.Time) int {
	granted := termination.Sub(current)
	if granted <= 0 {
		return 0
	}
	return int(granted / time.Second)
}

// ParseSubscribeResponse extracts SubscriptionId, CurrentTime and TerminationTime.
// Every element is required.
func ParseSubscribeResponse(body []byte) (*SubscriptionResponse, error) {
	return parseResponse("subscription", body, true)
}

// ParseRenewResponse extracts CurrentTime and TerminationTime.
func ParseRenewResponse(body []byte) (*SubscriptionResponse, error) {
	return parseResponse("renew", body, false)
}

func parseResponse(op string, body []byte, requireID bool) (*SubscriptionResponse, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, &ProtocolError{Op: op, Element: "envelope", Err: err}
	}
	if doc.Root() == nil {
		return nil, &ProtocolError{Op: op, Element: "envelope"}
	}

	resp := &SubscriptionResponse{}

	if requireID {
		id := events.FindElement(&doc.Element, NamespaceEvent, "SubscriptionId")
		if id == nil || strings.TrimSpace(id.Text()) == "" {
			return nil, &ProtocolError{Op: op, Element: "subscription id"}
		}
		resp.SubscriptionID = strings.TrimSpace(id.Text())
	}

	var err error
	if resp.CurrentTime, err = findTime(doc, op, "CurrentTime", "current time"); err != nil {
		return nil, err
	}
	if resp.TerminationTime, err = findTime(doc, op, "TerminationTime", "termination time"); err != nil {
		return nil, err
	}

	return resp, nil
}

func findTime(doc *etree.Document, op, tag, name string) (time.Time, error) {
	el := events.FindElement(&doc.Element, NamespaceWSNT, tag)
	if el == nil {
		return time.Time{}, &ProtocolError{Op: op, Element: name}
	}

	t, err := ParseTime(el.Text())
	if err != nil {
		return time.Time{}, &ProtocolError{Op: op, Element: name, Err: err}
	}
	return t, nil
}

// ParseTime parses a device date-time. The device normally sends
// "YYYY-MM-DDTHH:MM:SSZ"; RFC 3339 with an offset is accepted as well.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(events.TimestampLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised time %q", value)
	}
	return t.UTC(), nil
}
