package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("full_payload", func(t *testing.T) {
		event, err := Parse([]byte(callStateNotification))
		require.NoError(t, err)
		require.NotNil(t, event)

		assert.Equal(t, "CallStateChanged", event.Name)
		assert.Equal(t, "7", event.ID)
		assert.Equal(t, time.Date(2016, 12, 3, 12, 10, 10, 0, time.UTC), event.Timestamp)
		assert.Equal(t, map[string]string{"callid": "1", "state": "Ringing"}, event.Data)
	})

	t.Run("not_xml", func(t *testing.T) {
		event, err := Parse([]byte("not xml"))
		assert.Error(t, err)
		assert.Nil(t, event)
	})

	t.Run("empty_payload", func(t *testing.T) {
		event, err := Parse(nil)
		assert.Error(t, err)
		assert.Nil(t, event)
	})

	t.Run("missing_event_name", func(t *testing.T) {
		payload := `<event2n:EventMessage xmlns:event2n="http://www.2n.cz/2013/event">
<event2n:Id>1</event2n:Id></event2n:EventMessage>`

		event, err := Parse([]byte(payload))
		assert.ErrorIs(t, err, ErrMissingEventName)
		assert.Nil(t, event)
	})

	t.Run("event_name_in_foreign_namespace", func(t *testing.T) {
		payload := `<x:EventName xmlns:x="urn:other">KeyPressed</x:EventName>`

		event, err := Parse([]byte(payload))
		assert.ErrorIs(t, err, ErrMissingEventName)
		assert.Nil(t, event)
	})

	t.Run("malformed_timestamp", func(t *testing.T) {
		payload := `<event2n:EventMessage xmlns:event2n="http://www.2n.cz/2013/event">
<event2n:EventName>KeyPressed</event2n:EventName>
<event2n:Timestamp>yesterday</event2n:Timestamp></event2n:EventMessage>`

		event, err := Parse([]byte(payload))
		assert.ErrorIs(t, err, ErrInvalidTimestamp)
		assert.Nil(t, event)
	})

	t.Run("data_without_id", func(t *testing.T) {
		payload := `<event2n:EventMessage xmlns:event2n="http://www.2n.cz/2013/event">
<event2n:EventName>event2n:KeyPressed</event2n:EventName>
<event2n:Data><event2n:Key>5</event2n:Key></event2n:Data></event2n:EventMessage>`

		event, err := Parse([]byte(payload))
		require.NoError(t, err)

		assert.Equal(t, "KeyPressed", event.Name)
		assert.Empty(t, event.ID)
		assert.False(t, event.HasTimestamp())
		assert.Equal(t, "5", event.Data["key"])
	})

	t.Run("default_namespace", func(t *testing.T) {
		payload := `<EventMessage xmlns="http://www.2n.cz/2013/event">
<EventName>MotionDetected</EventName><Data><State>in</State></Data></EventMessage>`

		event, err := Parse([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, "MotionDetected", event.Name)
		assert.Equal(t, "in", event.Data["state"])
	})
}

func TestParseEvent_SoftFailure(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Nil(t, ParseEvent([]byte("<<<"), nil))
	})

	event := ParseEvent([]byte(callStateNotification), nil)
	require.NotNil(t, event)
	assert.Equal(t, "CallStateChanged", event.Name)
}
