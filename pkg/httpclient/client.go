package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/icholy/digest"
)

const maxErrorBody = 4 << 10

// Client executes device API commands.
type Client struct {
	config     Config
	httpClient *http.Client
	baseURL    *url.URL
	logger     *slog.Logger
}

// Response is a completed command.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	env *envelope
}

// Result decodes the "result" member of the JSON envelope into v.
func (r *Response) Result(v any) error {
	if r.env == nil || r.env.Result == nil {
		return fmt.Errorf("response has no result")
	}
	if err := json.Unmarshal(r.env.Result, v); err != nil {
		return fmt.Errorf("failed to parse result: %w", err)
	}
	return nil
}

// NewClient creates a device client.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "httpclient", "host", config.Host)

	baseURL, err := url.Parse(config.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}

	return &Client{
		config:     config,
		httpClient: newHTTPClient(config, logger),
		baseURL:    baseURL,
		logger:     logger,
	}, nil
}

func newHTTPClient(config Config, logger *slog.Logger) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: !config.VerifyTLS} //nolint:gosec

	authType := config.AuthType
	if authType != AuthNone && (config.Username == "" || config.Password == "") {
		logger.Warn("authentication method set with empty user or password, falling back to no authentication",
			"auth", authType.String())
		authType = AuthNone
	}

	var rt http.RoundTripper = transport
	switch authType {
	case AuthBasic:
		rt = &basicAuthTransport{username: config.Username, password: config.Password, next: transport}
	case AuthDigest:
		rt = &digest.Transport{Username: config.Username, Password: config.Password, Transport: transport}
	}

	return &http.Client{
		Timeout:   config.Timeout,
		Transport: rt,
	}
}

type basicAuthTransport struct {
	username string
	password string
	next     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return t.next.RoundTrip(req)
}

// HTTPClient returns the authenticated client so other device endpoints
// (the SOAP notification service) share its transport.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// BaseURL returns the device root URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Execute runs a command. GET and DELETE send args in the query string, POST
// sends them as a form body.
func (c *Client) Execute(ctx context.Context, name string, args Args) (*Response, error) {
	cmd, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if cmd.UploadField != "" {
		return nil, fmt.Errorf("%w: %s takes a file, use Upload", ErrInvalidCommand, name)
	}
	if err := cmd.Validate(args); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, cmd, args)
	if err != nil {
		return nil, err
	}
	return c.do(cmd, req)
}

// Upload runs a PUT command with filename attached as a multipart file.
func (c *Client) Upload(ctx context.Context, name, filename string, args Args) (*Response, error) {
	cmd, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if cmd.UploadField == "" {
		return nil, fmt.Errorf("%w: %s does not take a file", ErrInvalidCommand, name)
	}
	if err := cmd.Validate(args); err != nil {
		return nil, err
	}

	path, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("invalid file name: %w", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload file: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(cmd.UploadField, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart body: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	u := c.resolve(cmd.Path, encodeArgs(args))
	req, err := http.NewRequestWithContext(ctx, cmd.Method, u, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(cmd, req)
}

// Stream runs a streaming command and returns the open body. The caller
// closes it.
func (c *Client) Stream(ctx context.Context, name string, args Args) (io.ReadCloser, error) {
	cmd, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if !cmd.Stream {
		return nil, fmt.Errorf("%w: %s is not a streaming command", ErrInvalidCommand, name)
	}
	if err := cmd.Validate(args); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, cmd, args)
	if err != nil {
		return nil, err
	}

	// the client timeout would cut long captures short
	streaming := *c.httpClient
	streaming.Timeout = 0

	resp, err := streaming.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", cmd.Name, err)
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if _, err := checkEnvelope(cmd.Name, body); err != nil {
			return nil, err
		}
		return nil, &APIError{Command: cmd.Name, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	return resp.Body, nil
}

func (c *Client) newRequest(ctx context.Context, cmd Command, args Args) (*http.Request, error) {
	values := encodeArgs(args)

	var (
		body        io.Reader
		contentType string
		target      string
	)
	switch cmd.Method {
	case http.MethodPost:
		target = c.resolve(cmd.Path, nil)
		if len(values) > 0 {
			body = strings.NewReader(values.Encode())
			contentType = "application/x-www-form-urlencoded"
		}
	default:
		target = c.resolve(cmd.Path, values)
	}

	req, err := http.NewRequestWithContext(ctx, cmd.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) do(cmd Command, req *http.Request) (*Response, error) {
	c.logger.Debug("executing command", "command", cmd.Name, "method", req.Method, "path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", cmd.Name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response body: %w", cmd.Name, err)
	}

	env, err := checkEnvelope(cmd.Name, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &APIError{Command: cmd.Name, StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		env:        env,
	}, nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := &url.URL{Path: path}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(u).String()
}

func encodeArgs(args Args) url.Values {
	values := url.Values{}
	for k, v := range args {
		if v == nil {
			continue
		}
		values.Set(k, formatArg(v))
	}
	return values
}

func formatArg(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, ",")
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
