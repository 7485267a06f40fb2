package subscription

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/beevik/etree"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/soap"
)

const deviceResponse = `<?xml version="1.0" encoding="UTF-8"?>
<env:Envelope xmlns:env="http://www.w3.org/2003/05/soap-envelope"
  xmlns:wsnt="http://docs.oasis-open.org/wsn/b-2"
  xmlns:event2n="http://www.2n.cz/2013/event">
  <env:Body>
    <wsnt:%sResponse>
      %s
      <wsnt:CurrentTime>2023-01-01T00:00:00Z</wsnt:CurrentTime>
      <wsnt:TerminationTime>%s</wsnt:TerminationTime>
    </wsnt:%sResponse>
  </env:Body>
</env:Envelope>`

// fakeDevice answers Subscribe, Renew and Unsubscribe like the device does.
type fakeDevice struct {
	server *httptest.Server

	mu              sync.Mutex
	granted         int
	omitID          bool
	failSubscribe   bool
	failUnsubscribe bool
	failRenews      int
	requests        map[string]int
	consumerAddress string
	terminationTime string
	subscriptionIDs []string
}

func newFakeDevice(t *testing.T) *fakeDevice {
	t.Helper()
	d := &fakeDevice{
		granted:  600,
		requests: make(map[string]int),
	}
	d.server = httptest.NewServer(d)
	t.Cleanup(d.server.Close)
	return d
}

func (d *fakeDevice) service() Service {
	return Service{BaseURL: d.server.URL}
}

func (d *fakeDevice) count(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests[op]
}

func (d *fakeDevice) consumer() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.consumerAddress
}

func (d *fakeDevice) termination() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.terminationTime
}

func (d *fakeDevice) set(fn func(d *fakeDevice)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d)
}

func (d *fakeDevice) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	if r.URL.Path != DefaultEventPath || r.Header.Get("Content-Type") != soap.ContentType {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		http.Error(w, "bad xml", http.StatusBadRequest)
		return
	}
	find := func(space, tag string) *etree.Element {
		return events.FindElement(&doc.Element, space, tag)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	termination := fmt.Sprintf("2023-01-01T%02d:%02d:%02dZ", d.granted/3600, d.granted/60%60, d.granted%60)

	switch {
	case find(soap.NamespaceWSNT, "Subscribe") != nil:
		d.requests["subscribe"]++
		if d.failSubscribe {
			http.Error(w, "fault", http.StatusInternalServerError)
			return
		}
		d.consumerAddress = find(soap.NamespaceAddressing, "Address").Text()
		d.terminationTime = find(soap.NamespaceWSNT, "InitialTerminationTime").Text()

		id := fmt.Sprintf("%d", 1000+d.requests["subscribe"])
		d.subscriptionIDs = append(d.subscriptionIDs, id)
		idElement := "<event2n:SubscriptionId>" + id + "</event2n:SubscriptionId>"
		if d.omitID {
			idElement = ""
		}
		fmt.Fprintf(w, deviceResponse, "Subscribe", idElement, termination, "Subscribe")

	case find(soap.NamespaceWSNT, "Renew") != nil:
		d.requests["renew"]++
		if d.failRenews > 0 {
			d.failRenews--
			http.Error(w, "fault", http.StatusServiceUnavailable)
			return
		}
		d.terminationTime = find(soap.NamespaceWSNT, "TerminationTime").Text()
		fmt.Fprintf(w, deviceResponse, "Renew", "", termination, "Renew")

	case find(soap.NamespaceWSNT, "Unsubscribe") != nil:
		d.requests["unsubscribe"]++
		if d.failUnsubscribe {
			http.Error(w, "fault", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `<env:Envelope xmlns:env="http://www.w3.org/2003/05/soap-envelope"><env:Body/></env:Envelope>`)

	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
	}
}
