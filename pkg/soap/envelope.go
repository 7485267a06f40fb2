package soap

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
)

// XML namespaces used in envelopes and responses.
const (
	NamespaceSOAP       = "http://www.w3.org/2003/05/soap-envelope"
	NamespaceWSNT       = "http://docs.oasis-open.org/wsn/b-2"
	NamespaceAddressing = "http://www.w3.org/2005/08/addressing"
	NamespaceEvent      = events.NamespaceEvent

	// TopicDialect selects the device's multi-topic filter syntax
	TopicDialect = "http://www.2n.cz/2013/TopicExpression/Multiple"

	// ContentType is sent with every SOAP request
	ContentType = "application/soap+xml"
)

// SubscribeRequest describes a wsnt:Subscribe call.
type SubscribeRequest struct {
	// ConsumerAddress is the callback URL the device will POST notifications to
	ConsumerAddress string

	// Topics filters the delivered events; empty means all events
	Topics []string

	// TerminationSeconds is the requested subscription lifetime
	TerminationSeconds int

	// MaximumNumber caps the number of events per notification (0 = device default)
	MaximumNumber int

	// StartRecordID asks the device to replay from this log record (empty = omit)
	StartRecordID string

	// StartTimestamp asks the device to replay events raised after it (zero = omit)
	StartTimestamp time.Time
}

// FormatDuration renders a lifetime in the device's duration syntax.
func FormatDuration(seconds int) string {
	return fmt.Sprintf("PDT%dS", seconds)
}

// BuildSubscribe renders a Subscribe envelope.
func BuildSubscribe(req SubscribeRequest) ([]byte, error) {
	if req.ConsumerAddress == "" {
		return nil, fmt.Errorf("consumer address is required")
	}

	doc, _, body := newEnvelope()

	subscribe := body.CreateElement("wsnt:Subscribe")
	subscribe.CreateElement("wsnt:ConsumerReference").
		CreateElement("a:Address").
		SetText(req.ConsumerAddress)

	topic := subscribe.CreateElement("wsnt:Filter").CreateElement("wsnt:TopicExpression")
	topic.CreateAttr("Dialect", TopicDialect)
	topic.SetText(strings.Join(req.Topics, "|"))

	subscribe.CreateElement("wsnt:InitialTerminationTime").
		SetText(FormatDuration(req.TerminationSeconds))

	if req.MaximumNumber > 0 || req.StartRecordID != "" || !req.StartTimestamp.IsZero() {
		policy := subscribe.CreateElement("wsnt:SubscriptionPolicy")
		if req.MaximumNumber > 0 {
			policy.CreateElement("event2n:MaximumNumber").SetText(strconv.Itoa(req.MaximumNumber))
		}
		if req.StartRecordID != "" {
			policy.CreateElement("event2n:StartRecordId").SetText(req.StartRecordID)
		}
		if !req.StartTimestamp.IsZero() {
			policy.CreateElement("event2n:StartTimestamp").
				SetText(req.StartTimestamp.UTC().Format(events.TimestampLayout))
		}
	}

	return doc.WriteToBytes()
}

// BuildRenew renders a Renew envelope for an existing subscription.
func BuildRenew(subscriptionID string, terminationSeconds int) ([]byte, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}

	doc, header, body := newEnvelope()
	addSubscriptionID(header, subscriptionID)

	body.CreateElement("wsnt:Renew").
		CreateElement("wsnt:TerminationTime").
		SetText(FormatDuration(terminationSeconds))

	return doc.WriteToBytes()
}

// BuildUnsubscribe renders an Unsubscribe envelope for an existing subscription.
func BuildUnsubscribe(subscriptionID string) ([]byte, error) {
	if subscriptionID == "" {
		return nil, fmt.Errorf("subscription id is required")
	}

	doc, header, body := newEnvelope()
	addSubscriptionID(header, subscriptionID)
	body.CreateElement("wsnt:Unsubscribe")

	return doc.WriteToBytes()
}

func newEnvelope() (doc *etree.Document, header, body *etree.Element) {
	doc = etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	envelope := doc.CreateElement("s:Envelope")
	envelope.CreateAttr("xmlns:s", NamespaceSOAP)
	envelope.CreateAttr("xmlns:wsnt", NamespaceWSNT)
	envelope.CreateAttr("xmlns:a", NamespaceAddressing)
	envelope.CreateAttr("xmlns:event2n", NamespaceEvent)

	header = envelope.CreateElement("s:Header")
	body = envelope.CreateElement("s:Body")
	return doc, header, body
}

func addSubscriptionID(header *etree.Element, subscriptionID string) {
	id := header.CreateElement("event2n:SubscriptionId")
	id.CreateAttr("a:IsReferenceParameter", "true")
	id.SetText(subscriptionID)
}
