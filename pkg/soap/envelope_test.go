package soap

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
)

func readEnvelope(t *testing.T, raw []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	require.NotNil(t, doc.Root())
	assert.Equal(t, "Envelope", doc.Root().Tag)
	assert.Equal(t, NamespaceSOAP, doc.Root().NamespaceURI())
	return doc
}

func text(t *testing.T, doc *etree.Document, space, tag string) string {
	t.Helper()
	el := events.FindElement(&doc.Element, space, tag)
	require.NotNil(t, el, "missing element %s", tag)
	return el.Text()
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "PDT600S", FormatDuration(600))
	assert.Equal(t, "PDT0S", FormatDuration(0))
}

func TestBuildSubscribe(t *testing.T) {
	t.Run("minimal", func(t *testing.T) {
		raw, err := BuildSubscribe(SubscribeRequest{
			ConsumerAddress:    "http://192.168.1.10:19000/abc/",
			TerminationSeconds: 600,
		})
		require.NoError(t, err)

		doc := readEnvelope(t, raw)
		assert.Equal(t, "http://192.168.1.10:19000/abc/", text(t, doc, NamespaceAddressing, "Address"))
		assert.Equal(t, "PDT600S", text(t, doc, NamespaceWSNT, "InitialTerminationTime"))

		topic := events.FindElement(&doc.Element, NamespaceWSNT, "TopicExpression")
		require.NotNil(t, topic)
		assert.Equal(t, TopicDialect, topic.SelectAttrValue("Dialect", ""))
		assert.Empty(t, topic.Text())

		assert.Nil(t, events.FindElement(&doc.Element, NamespaceWSNT, "SubscriptionPolicy"))
	})

	t.Run("topics_and_policy", func(t *testing.T) {
		raw, err := BuildSubscribe(SubscribeRequest{
			ConsumerAddress:    "http://10.0.0.5:8080/key/",
			Topics:             []string{"CallStateChanged", "KeyPressed"},
			TerminationSeconds: 120,
			MaximumNumber:      5,
			StartRecordID:      "42",
			StartTimestamp:     time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		doc := readEnvelope(t, raw)
		assert.Equal(t, "CallStateChanged|KeyPressed", text(t, doc, NamespaceWSNT, "TopicExpression"))
		assert.Equal(t, "PDT120S", text(t, doc, NamespaceWSNT, "InitialTerminationTime"))
		assert.Equal(t, "5", text(t, doc, NamespaceEvent, "MaximumNumber"))
		assert.Equal(t, "42", text(t, doc, NamespaceEvent, "StartRecordId"))
		assert.Equal(t, "2023-01-01T10:00:00Z", text(t, doc, NamespaceEvent, "StartTimestamp"))
	})

	t.Run("escapes_values", func(t *testing.T) {
		raw, err := BuildSubscribe(SubscribeRequest{
			ConsumerAddress:    "http://h/?a=1&b=<2>",
			TerminationSeconds: 60,
		})
		require.NoError(t, err)

		doc := readEnvelope(t, raw)
		assert.Equal(t, "http://h/?a=1&b=<2>", text(t, doc, NamespaceAddressing, "Address"))
	})

	t.Run("requires_consumer_address", func(t *testing.T) {
		_, err := BuildSubscribe(SubscribeRequest{TerminationSeconds: 60})
		assert.Error(t, err)
	})
}

func TestBuildRenew(t *testing.T) {
	raw, err := BuildRenew("sub-17", 300)
	require.NoError(t, err)

	doc := readEnvelope(t, raw)
	id := events.FindElement(&doc.Element, NamespaceEvent, "SubscriptionId")
	require.NotNil(t, id)
	assert.Equal(t, "sub-17", id.Text())
	assert.Equal(t, "true", id.SelectAttrValue("a:IsReferenceParameter", ""))
	assert.Equal(t, "Header", id.Parent().Tag)

	assert.Equal(t, "PDT300S", text(t, doc, NamespaceWSNT, "TerminationTime"))

	_, err = BuildRenew("", 300)
	assert.Error(t, err)
}

func TestBuildUnsubscribe(t *testing.T) {
	raw, err := BuildUnsubscribe("sub-17")
	require.NoError(t, err)

	doc := readEnvelope(t, raw)
	assert.Equal(t, "sub-17", text(t, doc, NamespaceEvent, "SubscriptionId"))
	assert.NotNil(t, events.FindElement(&doc.Element, NamespaceWSNT, "Unsubscribe"))

	_, err = BuildUnsubscribe("")
	assert.Error(t, err)
}
