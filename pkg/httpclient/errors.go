package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned for names missing from Commands
	ErrUnknownCommand = errors.New("unknown command")
	// ErrMissingParameter is returned when a required parameter is absent
	ErrMissingParameter = errors.New("missing mandatory parameter")
	// ErrInvalidCommand is returned when a command is used the wrong way,
	// e.g. uploading with a command that takes no file
	ErrInvalidCommand = errors.New("invalid command")
)

type vendorCode struct {
	summary     string
	description string
}

var vendorCodes = map[int]vendorCode{
	1:  {"function is not supported", "The requested function is unavailable in this model."},
	2:  {"invalid request path", "The absolute path specified in the HTTP request does not match any of the HTTP API functions."},
	3:  {"invalid request method", "The HTTP method used is invalid for the selected function."},
	4:  {"function is disabled", "The function (service) is disabled. Enable the function on the Services / HTTP API configuration interface page."},
	5:  {"function is licensed", "The function (service) is subject to licence and available with a licence key only."},
	7:  {"invalid connection type", "HTTPS connection is required."},
	8:  {"invalid authentication method", "The authentication method used is invalid for the selected service."},
	9:  {"authorisation required", "User authorisation is required for the service access."},
	10: {"insufficient user privileges", "The user to be authenticated has insufficient privileges for the function."},
	11: {"missing mandatory parameter", "The request lacks a mandatory parameter."},
	12: {"invalid parameter value", "A parameter value is invalid."},
	13: {"parameter data too big", "The parameter data exceed the acceptable limit."},
	14: {"unspecified processing error", "An unspecified error occurred during request processing."},
	15: {"no data available", "The required data are not available on the server."},
}

// DeviceError is an error reported by the device in its JSON envelope.
type DeviceError struct {
	Command string
	Code    int

	// Param names the offending parameter for codes 11 to 13
	Param string
}

// Summary returns the short vendor name for the code.
func (e *DeviceError) Summary() string {
	if c, ok := vendorCodes[e.Code]; ok {
		return c.summary
	}
	return "unknown error"
}

// Description returns the vendor's explanation of the code.
func (e *DeviceError) Description() string {
	if c, ok := vendorCodes[e.Code]; ok {
		return c.description
	}
	return "Unknown error occurred."
}

func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s: device error %d (%s)", e.Command, e.Code, e.Summary())
	if e.Param != "" {
		msg += ": param " + e.Param
	}
	return msg
}

// APIError is returned for HTTP failures that carry no device error envelope.
type APIError struct {
	Command    string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error (%d): %s", e.Command, e.StatusCode, e.Status)
}

// checkEnvelope inspects a JSON answer for the vendor error envelope.
// Non-JSON bodies (configuration XML, snapshots) are not envelopes and pass.
func checkEnvelope(command string, body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil
	}
	if env.Error != nil {
		return &env, &DeviceError{Command: command, Code: env.Error.Code, Param: env.Error.Param}
	}
	return &env, nil
}
