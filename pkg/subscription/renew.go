package subscription

import (
	"context"
	"log/slog"
	"time"
)

const (
	renewPercent     = 85
	minRenewInterval = time.Second
)

// RenewInterval returns how often an auto-renewing subscription with the
// given granted timeout is renewed: 85% of the timeout, at least one second.
func RenewInterval(timeout time.Duration) time.Duration {
	interval := timeout * renewPercent / 100
	if interval < minRenewInterval {
		return minRenewInterval
	}
	return interval
}

// autoRenewer calls renew on a fixed interval until stopped. A failed renew
// is logged and the next tick still fires.
type autoRenewer struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startAutoRenewer(interval time.Duration, renew func(context.Context) error, logger *slog.Logger) *autoRenewer {
	ctx, cancel := context.WithCancel(context.Background())
	r := &autoRenewer{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(r.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("auto-renewing subscription")
				if err := renew(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					logger.Warn("auto-renew failed, will retry on next tick", "error", err, "interval", interval)
				}
			}
		}
	}()

	return r
}

// stop cancels any in-flight renew and waits for the goroutine to exit.
// No renew starts after stop returns.
func (r *autoRenewer) stop() {
	r.cancel()
	<-r.done
}
