package httpclient

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LogStream long-polls a device log channel and publishes its events.
type LogStream struct {
	client *Client
	id     int64
	events chan LogEvent
	errors chan error
	done   chan struct{}
	cancel context.CancelFunc

	unsubscribeTimeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// PullConfig configures a log stream
type PullConfig struct {
	LogSubscribeOptions

	// PollTimeout is how long each log.pull waits for an event on the device
	PollTimeout time.Duration

	// BufferSize for the event channel
	BufferSize int

	// RetryDelay after a failed pull
	RetryDelay time.Duration

	// UnsubscribeTimeout bounds the log.unsubscribe sent by Close
	UnsubscribeTimeout time.Duration
}

// SetDefaults sets reasonable default values for PullConfig
func (pc *PullConfig) SetDefaults() {
	if pc.PollTimeout == 0 {
		pc.PollTimeout = 30 * time.Second
	}
	if pc.BufferSize == 0 {
		pc.BufferSize = 100
	}
	if pc.RetryDelay == 0 {
		pc.RetryDelay = 2 * time.Second
	}
	if pc.UnsubscribeTimeout == 0 {
		pc.UnsubscribeTimeout = 5 * time.Second
	}
}

// PullLog opens a log channel and starts pulling it in the background.
// Close the stream to stop pulling and close the channel on the device.
func (c *Client) PullLog(ctx context.Context, config PullConfig) (*LogStream, error) {
	config.SetDefaults()

	// keep each pull well inside the client timeout
	if limit := c.config.Timeout - 5*time.Second; limit > 0 && config.PollTimeout > limit {
		config.PollTimeout = limit
	}

	id, err := c.LogSubscribe(ctx, config.LogSubscribeOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open log channel: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)

	stream := &LogStream{
		client: c,
		id:     id,
		events: make(chan LogEvent, config.BufferSize),
		errors: make(chan error, 10),
		done:   make(chan struct{}),
		cancel: cancel,

		unsubscribeTimeout: config.UnsubscribeTimeout,
	}

	go stream.run(streamCtx, config)

	c.logger.Info("log channel opened", "channel", id)
	return stream, nil
}

// ID returns the device log channel id.
func (s *LogStream) ID() int64 {
	return s.id
}

// Events returns the channel for receiving events
func (s *LogStream) Events() <-chan LogEvent {
	return s.events
}

// Errors returns the channel for receiving pull errors
func (s *LogStream) Errors() <-chan error {
	return s.errors
}

// Done returns a channel that's closed when pulling ends
func (s *LogStream) Done() <-chan struct{} {
	return s.done
}

// Close stops pulling, waits for the pull goroutine and closes the device
// log channel. Only the first call reaches the device; later calls return
// its result.
func (s *LogStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done

		ctx, cancel := context.WithTimeout(context.Background(), s.unsubscribeTimeout)
		defer cancel()

		if err := s.client.LogUnsubscribe(ctx, s.id); err != nil {
			s.closeErr = fmt.Errorf("failed to close log channel %d: %w", s.id, err)
			return
		}
		s.client.logger.Info("log channel closed", "channel", s.id)
	})
	return s.closeErr
}

func (s *LogStream) run(ctx context.Context, config PullConfig) {
	defer close(s.done)
	defer close(s.events)
	defer close(s.errors)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		events, err := s.client.LogPull(ctx, s.id, config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			select {
			case s.errors <- fmt.Errorf("log pull error: %w", err):
			default:
			}

			select {
			case <-time.After(config.RetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		for _, event := range events {
			select {
			case s.events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
