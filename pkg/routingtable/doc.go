// Package routingtable provides interfaces for routing callback notifications to
// the subscription that asked for them.
//
// The callback listener is process-wide, so several subscriptions can share it.
// Each subscription registers a Route whose key is embedded in the callback URL
// it hands to the device (http://ip:port/{key}/). Inbound notifications are
// delivered to the Sink registered under the first path segment.
//
// Example usage:
//
//	queue := events.NewQueue()
//	if err := table.Add(ctx, key, queue); err != nil {
//		return err
//	}
//
//	// on the listener side
//	if sink, ok := table.Lookup(key); ok {
//		sink.Deliver(event)
//	}
//
//	// on unsubscribe
//	remaining, err := table.Remove(ctx, key)
package routingtable
