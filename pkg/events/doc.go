// Package events provides the device event record, the notification parser and
// the queue that hands parsed events to consumers.
//
// This package defines the consumer-facing pieces of the event subsystem:
//   - Event: an immutable record parsed from one device notification
//   - Parse / ParseEvent: raw notification XML to Event
//   - Queue: a thread-safe, unbounded FIFO shared by the callback listener and readers
//
// Example usage:
//
//	queue := events.NewQueue()
//	// hand queue to a subscription, then drain it
//	for {
//		ev, err := queue.Get(ctx)
//		if err != nil {
//			return err // context cancelled or queue closed
//		}
//		fmt.Println(ev.Name, ev.Data["state"])
//	}
//
// The queue applies no backpressure: a slow consumer causes the queue to grow.
package events
