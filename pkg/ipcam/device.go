package ipcam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/listener"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/httpclient"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/subscription"
)

// ErrNoDeviceTime is returned by New when system.status carries no systemTime.
var ErrNoDeviceTime = errors.New("device did not report its system time")

// Config configures a Device.
type Config struct {
	Client httpclient.Config

	// EventPath is the SOAP notification endpoint (default /notification)
	EventPath string

	// Lifecycle is the callback listener subscriptions attach to; nil uses listener.Default()
	Lifecycle *listener.Lifecycle

	Logger *slog.Logger
}

// SetDefaults sets reasonable default values for the config
func (c *Config) SetDefaults() {
	c.Client.SetDefaults()
	if c.EventPath == "" {
		c.EventPath = subscription.DefaultEventPath
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Client.Validate(); err != nil {
		return err
	}
	if c.EventPath == "" || c.EventPath[0] != '/' {
		return fmt.Errorf("event path must start with '/': %q", c.EventPath)
	}
	return nil
}

// Device is a connected intercom or camera.
type Device struct {
	client *httpclient.Client
	events *EventService
	logger *slog.Logger

	startTime time.Time
	upTime    time.Duration
}

// New builds the command client and bootstraps by reading system.status.
// It fails when the device cannot be reached, reports an error, or omits its
// clock.
func New(ctx context.Context, config Config) (*Device, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid device config: %w", err)
	}

	logger := config.Logger.With("device", config.Client.Host)

	client, err := httpclient.NewClient(config.Client, config.Logger)
	if err != nil {
		return nil, err
	}

	status, err := client.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap device: %w", err)
	}
	if status.SystemTime == nil {
		return nil, ErrNoDeviceTime
	}

	d := &Device{
		client:    client,
		logger:    logger,
		startTime: status.Time(),
		upTime:    time.Duration(status.UpTime) * time.Second,
	}
	d.events = &EventService{
		device:    d,
		eventPath: config.EventPath,
		lifecycle: config.Lifecycle,
	}

	logger.Info("device connected", "device_time", d.startTime, "uptime", d.upTime)
	return d, nil
}

// Commands returns the JSON command API client.
func (d *Device) Commands() *httpclient.Client {
	return d.client
}

// Events returns the SOAP event subscription service.
func (d *Device) Events() *EventService {
	return d.events
}

// StartTime returns the device clock read when the Device was created.
func (d *Device) StartTime() time.Time {
	return d.startTime
}

// UpTime returns the device uptime read when the Device was created.
func (d *Device) UpTime() time.Duration {
	return d.upTime
}

// Close unsubscribes every subscription created through Events.
func (d *Device) Close(ctx context.Context) error {
	return d.events.unsubscribeAll(ctx)
}

// EventService creates subscriptions against the device notification endpoint.
type EventService struct {
	device    *Device
	eventPath string
	lifecycle *listener.Lifecycle

	mu            sync.Mutex
	subscriptions []*subscription.Subscription
}

// NewSubscription returns an unsubscribed Subscription bound to the device.
func (e *EventService) NewSubscription() (*subscription.Subscription, error) {
	return subscription.New(subscription.Config{
		Service: subscription.Service{
			BaseURL:   e.device.client.BaseURL(),
			EventPath: e.eventPath,
		},
		HTTPClient: e.device.client.HTTPClient(),
		Lifecycle:  e.lifecycle,
		Logger:     e.device.logger,
	})
}

// Subscribe creates a subscription and subscribes it. When opts carries no
// StartTimestamp, only events raised after the Device was created are
// replayed.
func (e *EventService) Subscribe(ctx context.Context, opts subscription.SubscribeOptions) (*subscription.Subscription, error) {
	sub, err := e.NewSubscription()
	if err != nil {
		return nil, err
	}

	if opts.StartTimestamp.IsZero() && opts.StartRecordID == "" {
		opts.StartTimestamp = e.device.startTime
	}

	if err := sub.Subscribe(ctx, opts); err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.subscriptions = append(e.subscriptions, sub)
	e.mu.Unlock()

	return sub, nil
}

func (e *EventService) unsubscribeAll(ctx context.Context) error {
	e.mu.Lock()
	subs := e.subscriptions
	e.subscriptions = nil
	e.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Unsubscribe(ctx); err != nil {
			errs = append(errs, fmt.Errorf("subscription %s: %w", sub.ID(), err))
		}
	}
	return errors.Join(errs...)
}
