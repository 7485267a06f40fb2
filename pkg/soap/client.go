package soap

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds every SOAP round trip
	DefaultTimeout = 60 * time.Second

	maxErrorBody = 4 << 10
)

// Client posts SOAP envelopes to the device's event endpoint.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a SOAP client. A nil httpClient gets DefaultHTTPClient(DefaultTimeout).
func NewClient(httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = DefaultHTTPClient(DefaultTimeout)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// DefaultHTTPClient returns a client with a finite timeout that does not verify
// TLS certificates; devices ship with self-signed certificates.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Post sends envelope to url and returns the response body. Connection failures
// and non-2xx statuses are reported as *TransportError.
func (c *Client) Post(ctx context.Context, op, url string, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", ContentType)

	c.logger.Debug("sending soap request", "op", op, "url", url, "bytes", len(envelope))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &TransportError{Op: op, URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
