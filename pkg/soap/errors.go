package soap

import (
	"fmt"
)

// TransportError is returned when a SOAP request could not be delivered or the
// device answered with a non-2xx status.
type TransportError struct {
	// Op is the SOAP operation (subscribe, renew, unsubscribe)
	Op string

	// URL is the event endpoint the request was sent to
	URL string

	// StatusCode is the HTTP status, 0 when the request never got a response
	StatusCode int

	// Body is the (possibly truncated) response body for non-2xx answers
	Body string

	// Err is the underlying connection error, if any
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: request failed: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: device returned status %d", e.Op, e.URL, e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is returned when a SOAP response lacks an expected element or
// carries a value that cannot be interpreted.
type ProtocolError struct {
	// Op is the SOAP operation whose response was being parsed
	Op string

	// Element is a human readable name of the missing or invalid element
	Element string

	// Err is set when the element was present but invalid
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s in %s response: %v", e.Element, e.Op, e.Err)
	}
	return fmt.Sprintf("could not find %s in %s response", e.Element, e.Op)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
