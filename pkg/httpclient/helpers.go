package httpclient

import (
	"context"
	"fmt"
	"time"
)

// Info returns basic device information.
func (c *Client) Info(ctx context.Context) (*SystemInfo, error) {
	resp, err := c.Execute(ctx, "system.info", nil)
	if err != nil {
		return nil, err
	}

	var info SystemInfo
	if err := resp.Result(&info); err != nil {
		return nil, fmt.Errorf("system.info: %w", err)
	}
	return &info, nil
}

// Status returns the device clock and uptime.
func (c *Client) Status(ctx context.Context) (*SystemStatus, error) {
	resp, err := c.Execute(ctx, "system.status", nil)
	if err != nil {
		return nil, err
	}

	var status SystemStatus
	if err := resp.Result(&status); err != nil {
		return nil, fmt.Errorf("system.status: %w", err)
	}
	return &status, nil
}

// Dial starts an outgoing call.
func (c *Client) Dial(ctx context.Context, number string) (*CallSession, error) {
	resp, err := c.Execute(ctx, "call.dial", Args{"number": number})
	if err != nil {
		return nil, err
	}

	var session CallSession
	if err := resp.Result(&session); err != nil {
		return nil, fmt.Errorf("call.dial: %w", err)
	}
	return &session, nil
}

// Hangup ends a call. reason may be empty.
func (c *Client) Hangup(ctx context.Context, session int64, reason string) error {
	args := Args{"session": session}
	if reason != "" {
		args["reason"] = reason
	}
	_, err := c.Execute(ctx, "call.hangup", args)
	return err
}

// LogSubscribeOptions are the parameters of log.subscribe.
type LogSubscribeOptions struct {
	// Include is "new", "all" or "-<seconds>" (default: new)
	Include string

	// Filter restricts the channel to these event types
	Filter []string

	// Duration closes the channel when it is not pulled for this long (device default 90s)
	Duration time.Duration
}

// LogSubscribe opens a log channel and returns its id.
func (c *Client) LogSubscribe(ctx context.Context, opts LogSubscribeOptions) (int64, error) {
	args := Args{}
	if opts.Include != "" {
		args["include"] = opts.Include
	}
	if len(opts.Filter) > 0 {
		args["filter"] = opts.Filter
	}
	if opts.Duration > 0 {
		args["duration"] = int64(opts.Duration / time.Second)
	}

	resp, err := c.Execute(ctx, "log.subscribe", args)
	if err != nil {
		return 0, err
	}

	var result logSubscribeResult
	if err := resp.Result(&result); err != nil {
		return 0, fmt.Errorf("log.subscribe: %w", err)
	}
	return result.ID, nil
}

// LogPull reads pending events from a log channel, waiting up to timeout
// for one to arrive.
func (c *Client) LogPull(ctx context.Context, id int64, timeout time.Duration) ([]LogEvent, error) {
	args := Args{"id": id}
	if timeout > 0 {
		args["timeout"] = int64(timeout / time.Second)
	}

	resp, err := c.Execute(ctx, "log.pull", args)
	if err != nil {
		return nil, err
	}

	var result logPullResult
	if err := resp.Result(&result); err != nil {
		return nil, fmt.Errorf("log.pull: %w", err)
	}
	return result.Events, nil
}

// LogUnsubscribe closes a log channel.
func (c *Client) LogUnsubscribe(ctx context.Context, id int64) error {
	_, err := c.Execute(ctx, "log.unsubscribe", Args{"id": id})
	return err
}
