package httpclient

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuthType selects how requests authenticate against the device.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthBasic
	AuthDigest
)

func (a AuthType) String() string {
	switch a {
	case AuthNone:
		return "none"
	case AuthBasic:
		return "basic"
	case AuthDigest:
		return "digest"
	default:
		return fmt.Sprintf("auth(%d)", int(a))
	}
}

// ParseAuthType accepts the names returned by AuthType.String and the
// numeric codes 0, 1 and 2.
func ParseAuthType(s string) (AuthType, error) {
	switch s {
	case "", "none", "0":
		return AuthNone, nil
	case "basic", "1":
		return AuthBasic, nil
	case "digest", "2":
		return AuthDigest, nil
	default:
		return AuthNone, fmt.Errorf("unknown auth type %q", s)
	}
}

// Config holds client configuration
type Config struct {
	// Host is the device address, e.g. "192.168.1.50" or "intercom.lan:8443"
	Host string

	// SSL selects https
	SSL bool

	AuthType AuthType
	Username string
	Password string

	// Timeout for HTTP requests
	Timeout time.Duration

	// VerifyTLS enables certificate verification; devices ship self-signed certificates
	VerifyTLS bool
}

// SetDefaults sets reasonable default values for the config
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.AuthType < AuthNone || c.AuthType > AuthDigest {
		return fmt.Errorf("invalid auth type: %d", c.AuthType)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %v", c.Timeout)
	}
	return nil
}

// BaseURL returns the device root URL.
func (c *Config) BaseURL() string {
	scheme := "http"
	if c.SSL {
		scheme = "https"
	}
	return scheme + "://" + c.Host
}

// Args are command parameters. Nil values are dropped from the request.
type Args map[string]any

// envelope is the JSON wrapper every API answer uses.
type envelope struct {
	Success *bool           `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code  int    `json:"code"`
		Param string `json:"param"`
	} `json:"error"`
}

// SystemInfo is the result of system.info
type SystemInfo struct {
	Variant      string `json:"variant"`
	SerialNumber string `json:"serialNumber"`
	HWVersion    string `json:"hwVersion"`
	SWVersion    string `json:"swVersion"`
	BuildType    string `json:"buildType"`
	DeviceName   string `json:"deviceName"`
}

// SystemStatus is the result of system.status
type SystemStatus struct {
	// SystemTime is the device clock in unix seconds
	SystemTime *int64 `json:"systemTime"`

	// UpTime is seconds since the last restart
	UpTime int64 `json:"upTime"`
}

// Time returns the device clock as UTC, zero when the device did not report it.
func (s *SystemStatus) Time() time.Time {
	if s.SystemTime == nil {
		return time.Time{}
	}
	return time.Unix(*s.SystemTime, 0).UTC()
}

// CallSession is the result of call.dial
type CallSession struct {
	Session int64 `json:"session"`
}

// LogEvent is one entry returned by log.pull
type LogEvent struct {
	ID      int64          `json:"id"`
	UTCTime int64          `json:"utcTime"`
	UpTime  int64          `json:"upTime"`
	Event   string         `json:"event"`
	Params  map[string]any `json:"params"`
}

// Time returns when the event was raised.
func (e LogEvent) Time() time.Time {
	return time.Unix(e.UTCTime, 0).UTC()
}

type logSubscribeResult struct {
	ID int64 `json:"id"`
}

type logPullResult struct {
	Events []LogEvent `json:"events"`
}
