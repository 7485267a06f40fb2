package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/listener"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/soap"
)

const (
	// DefaultTimeout is the subscription lifetime requested when none is given
	DefaultTimeout = 600 * time.Second

	// DefaultEventPath is the device's SOAP notification endpoint
	DefaultEventPath = "/notification"
)

// State is the lifecycle state of a Subscription.
type State int

const (
	StateNew State = iota
	StateSubscribed
	StateUnsubscribed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateSubscribed:
		return "subscribed"
	case StateUnsubscribed:
		return "unsubscribed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Service identifies the device endpoint subscriptions are made against.
type Service struct {
	// BaseURL is the device root, e.g. https://192.168.1.50
	BaseURL string

	// EventPath is appended to BaseURL (default /notification)
	EventPath string
}

// URL returns the full event endpoint.
func (s Service) URL() string {
	return strings.TrimSuffix(s.BaseURL, "/") + s.EventPath
}

// Config configures a Subscription.
type Config struct {
	Service Service

	// Queue receives the subscription's events; a new queue is created when nil
	Queue *events.Queue

	// HTTPClient sends the SOAP requests; nil uses soap.DefaultHTTPClient
	HTTPClient *http.Client

	// Lifecycle is the callback listener to attach to; nil uses listener.Default()
	Lifecycle *listener.Lifecycle

	// RenewInterval overrides the auto-renew period (0 = 85% of the granted timeout)
	RenewInterval time.Duration

	Logger *slog.Logger
}

// SetDefaults fills in zero values.
func (c *Config) SetDefaults() {
	if c.Service.EventPath == "" {
		c.Service.EventPath = DefaultEventPath
	}
	if c.Queue == nil {
		c.Queue = events.NewQueue()
	}
	if c.Lifecycle == nil {
		c.Lifecycle = listener.Default()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service base url is required")
	}
	if !strings.HasPrefix(c.Service.EventPath, "/") {
		return fmt.Errorf("event path must start with '/': %q", c.Service.EventPath)
	}
	if c.RenewInterval < 0 {
		return fmt.Errorf("renew interval cannot be negative: %v", c.RenewInterval)
	}
	return nil
}

// SubscribeOptions are the parameters of a Subscribe call.
type SubscribeOptions struct {
	// RequestedTimeout is the lifetime to ask for (default 600s); the device
	// may grant a different one, see Subscription.Timeout
	RequestedTimeout time.Duration

	// AutoRenew renews the subscription in the background before it lapses
	AutoRenew bool

	// ListenerIP is the address the device posts to (default: LAN address)
	ListenerIP string

	// ListenerPort is the callback port (default 19000)
	ListenerPort int

	// Topics restricts the delivered events by name; empty means all
	Topics []string

	// MaximumNumber caps events per notification (0 = device default)
	MaximumNumber int

	// StartRecordID replays from a log record (empty = omit)
	StartRecordID string

	// StartTimestamp replays events raised after it (zero = omit)
	StartTimestamp time.Time
}

// Subscription is one event subscription on a device.
// All methods are safe for concurrent use.
type Subscription struct {
	service       Service
	client        *soap.Client
	queue         *events.Queue
	lifecycle     *listener.Lifecycle
	renewInterval time.Duration
	routeKey      string
	logger        *slog.Logger
	now           func() time.Time

	// serializes Subscribe and Unsubscribe
	lifecycleMu sync.Mutex

	mu        sync.Mutex
	state     State
	id        string
	timeout   time.Duration
	requested time.Duration
	timestamp time.Time
	address   listener.Address
	renewer   *autoRenewer
}

// New creates a Subscription in StateNew.
func New(config Config) (*Subscription, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid subscription config: %w", err)
	}

	routeKey := uuid.NewString()
	logger := config.Logger.With("component", "subscription", "route", routeKey)

	return &Subscription{
		service:       config.Service,
		client:        soap.NewClient(config.HTTPClient, logger),
		queue:         config.Queue,
		lifecycle:     config.Lifecycle,
		renewInterval: config.RenewInterval,
		routeKey:      routeKey,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Events returns the queue this subscription's events are delivered to.
func (s *Subscription) Events() *events.Queue {
	return s.queue
}

// RouteKey returns the routing key embedded in the callback URL.
func (s *Subscription) RouteKey() string {
	return s.routeKey
}

// ID returns the device-assigned subscription id, empty before Subscribe.
func (s *Subscription) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// State returns the current state.
func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsSubscribed reports whether the subscription is currently subscribed.
func (s *Subscription) IsSubscribed() bool {
	return s.State() == StateSubscribed
}

// Timeout returns the lifetime granted by the device on the last subscribe or renew.
func (s *Subscription) Timeout() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeout
}

// ListenerAddress returns the callback listener address resolved at subscribe.
func (s *Subscription) ListenerAddress() listener.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// TimeLeft returns how long until the subscription lapses, 0 when not subscribed.
func (s *Subscription) TimeLeft() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLeftLocked()
}

func (s *Subscription) timeLeftLocked() time.Duration {
	if s.state != StateSubscribed || s.timestamp.IsZero() {
		return 0
	}
	left := s.timeout - s.now().Sub(s.timestamp)
	if left < 0 {
		return 0
	}
	return left
}

// Subscribe starts the callback listener if needed and subscribes on the device.
// On failure the subscription stays in StateNew and may be retried.
func (s *Subscription) Subscribe(ctx context.Context, opts SubscribeOptions) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	switch s.State() {
	case StateUnsubscribed:
		return ErrAlreadyTerminated
	case StateSubscribed:
		return ErrAlreadySubscribed
	}

	requested := opts.RequestedTimeout
	if requested <= 0 {
		requested = DefaultTimeout
	}

	ip := ResolveIP(opts.ListenerIP, s.logger)
	port := ResolvePort(opts.ListenerPort, s.logger)

	address, err := s.lifecycle.Attach(ctx, ip, port, s.routeKey, s.queue)
	if err != nil {
		return err
	}

	resp, err := s.sendSubscribe(ctx, address, requested, opts)
	if err != nil {
		s.release(ctx)
		return err
	}

	granted := time.Duration(resp.GrantedSeconds()) * time.Second

	s.mu.Lock()
	s.id = resp.SubscriptionID
	s.timeout = granted
	s.requested = requested
	s.timestamp = s.now()
	s.address = address
	s.state = StateSubscribed
	s.mu.Unlock()

	registerExitHook(s)

	s.logger.Info("subscribed",
		"url", s.service.URL(),
		"subscription_id", resp.SubscriptionID,
		"callback", address.CallbackURL(s.routeKey),
		"timeout", granted)

	if opts.AutoRenew {
		interval := s.renewInterval
		if interval == 0 {
			interval = RenewInterval(granted)
		}
		renewer := startAutoRenewer(interval, s.renewFromTimer,
			s.logger.With("subscription_id", resp.SubscriptionID))

		s.mu.Lock()
		s.renewer = renewer
		s.mu.Unlock()
	}

	return nil
}

func (s *Subscription) sendSubscribe(ctx context.Context, address listener.Address, requested time.Duration, opts SubscribeOptions) (*soap.SubscriptionResponse, error) {
	envelope, err := soap.BuildSubscribe(soap.SubscribeRequest{
		ConsumerAddress:    address.CallbackURL(s.routeKey),
		Topics:             opts.Topics,
		TerminationSeconds: seconds(requested),
		MaximumNumber:      opts.MaximumNumber,
		StartRecordID:      opts.StartRecordID,
		StartTimestamp:     opts.StartTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build subscribe request: %w", err)
	}

	body, err := s.client.Post(ctx, "subscribe", s.service.URL(), envelope)
	if err != nil {
		return nil, err
	}

	return soap.ParseSubscribeResponse(body)
}

// Renew extends the subscription. A zero requestedTimeout asks for the
// lifetime requested at Subscribe. Renew may run concurrently with the
// auto-renew goroutine.
func (s *Subscription) Renew(ctx context.Context, requestedTimeout time.Duration) error {
	s.mu.Lock()
	switch {
	case s.state == StateUnsubscribed:
		s.mu.Unlock()
		return ErrAlreadyTerminated
	case s.state == StateNew:
		s.mu.Unlock()
		return ErrNotSubscribed
	case s.timeLeftLocked() == 0:
		s.mu.Unlock()
		return ErrExpired
	}
	id := s.id
	if requestedTimeout <= 0 {
		requestedTimeout = s.requested
	}
	s.mu.Unlock()

	envelope, err := soap.BuildRenew(id, seconds(requestedTimeout))
	if err != nil {
		return fmt.Errorf("failed to build renew request: %w", err)
	}

	body, err := s.client.Post(ctx, "renew", s.service.URL(), envelope)
	if err != nil {
		return err
	}

	resp, err := soap.ParseRenewResponse(body)
	if err != nil {
		return err
	}

	granted := time.Duration(resp.GrantedSeconds()) * time.Second

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubscribed {
		return ErrAlreadyTerminated
	}
	s.timeout = granted
	s.timestamp = s.now()

	s.logger.Info("renewed subscription", "subscription_id", id, "timeout", granted)
	return nil
}

func (s *Subscription) renewFromTimer(ctx context.Context) error {
	return s.Renew(ctx, 0)
}

// Unsubscribe ends the subscription. It is a no-op when never subscribed or
// already unsubscribed. When the device request fails the subscription stays
// subscribed (without auto-renew) so the call can be retried.
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	s.mu.Lock()
	if s.state != StateSubscribed {
		s.mu.Unlock()
		return nil
	}
	id := s.id
	renewer := s.renewer
	s.renewer = nil
	s.mu.Unlock()

	if renewer != nil {
		renewer.stop()
	}

	envelope, err := soap.BuildUnsubscribe(id)
	if err != nil {
		return fmt.Errorf("failed to build unsubscribe request: %w", err)
	}
	if _, err := s.client.Post(ctx, "unsubscribe", s.service.URL(), envelope); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = StateUnsubscribed
	s.timestamp = time.Time{}
	s.mu.Unlock()

	unregisterExitHook(s)
	s.release(ctx)

	s.logger.Info("unsubscribed", "url", s.service.URL(), "subscription_id", id)
	return nil
}

func (s *Subscription) release(ctx context.Context) {
	if err := s.lifecycle.Release(ctx, s.routeKey); err != nil {
		s.logger.Warn("failed to release listener route", "error", err)
	}
}

func seconds(d time.Duration) int {
	secs := int(d / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
