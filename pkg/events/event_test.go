package events

import (
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	ts := time.Date(2016, 12, 3, 12, 10, 10, 0, time.UTC)
	data := map[string]string{"callid": "1"}

	event := NewEvent("CallStateChanged", "7", ts, data)

	if event.Name != "CallStateChanged" {
		t.Errorf("Expected name CallStateChanged, got %s", event.Name)
	}

	if event.ID != "7" {
		t.Errorf("Expected id 7, got %s", event.ID)
	}

	if !event.HasTimestamp() {
		t.Error("Expected timestamp to be set")
	}

	// Mutating the source map must not leak into the event
	data["callid"] = "2"
	if event.Data["callid"] != "1" {
		t.Errorf("Expected data to be copied, got callid=%s", event.Data["callid"])
	}
}

func TestNewEvent_NilData(t *testing.T) {
	event := NewEvent("KeyPressed", "", time.Time{}, nil)

	if event.Data == nil {
		t.Error("Expected data to be initialized")
	}

	if event.HasTimestamp() {
		t.Error("Expected no timestamp")
	}
}

func TestEvent_Copy(t *testing.T) {
	original := NewEvent("InputChanged", "3", time.Time{}, map[string]string{"port": "relay1"})

	copied := original.Copy()
	copied.Data["port"] = "relay2"

	if original.Data["port"] != "relay1" {
		t.Errorf("Expected original data unchanged, got %s", original.Data["port"])
	}

	if copied.Name != original.Name || copied.ID != original.ID {
		t.Error("Expected copy to keep name and id")
	}
}
