package subscription

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

var exitHooks = struct {
	sync.Mutex
	subs map[*Subscription]struct{}
}{subs: make(map[*Subscription]struct{})}

func registerExitHook(s *Subscription) {
	exitHooks.Lock()
	defer exitHooks.Unlock()
	exitHooks.subs[s] = struct{}{}
}

func unregisterExitHook(s *Subscription) {
	exitHooks.Lock()
	defer exitHooks.Unlock()
	delete(exitHooks.subs, s)
}

// Active returns the number of subscriptions UnsubscribeAll would close.
func Active() int {
	exitHooks.Lock()
	defer exitHooks.Unlock()
	return len(exitHooks.subs)
}

// UnsubscribeAll is the process-exit hook: it unsubscribes every live
// subscription concurrently. It is best effort; failures are logged by each
// subscription and not returned. Programs call it from their shutdown path,
// it does not run on its own when the process is killed.
func UnsubscribeAll(ctx context.Context) {
	exitHooks.Lock()
	subs := make([]*Subscription, 0, len(exitHooks.subs))
	for s := range exitHooks.subs {
		subs = append(subs, s)
	}
	exitHooks.Unlock()

	var g errgroup.Group
	for _, s := range subs {
		g.Go(func() error {
			if err := s.Unsubscribe(ctx); err != nil {
				s.logger.Warn("unsubscribe at exit failed", "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
