// Package subscription manages event subscriptions on a device.
//
// A Subscription moves through three states: new, subscribed and
// unsubscribed. Unsubscribed is terminal; a Subscription is not reused.
// Subscribing starts the shared callback listener (see pkg/listener) and
// registers a routing key for this subscription's queue, so several
// subscriptions in one process share a single listener.
//
//	sub, err := subscription.New(subscription.Config{
//		Service: subscription.Service{BaseURL: "https://192.168.1.50"},
//	})
//	if err != nil {
//		return err
//	}
//	if err := sub.Subscribe(ctx, subscription.SubscribeOptions{AutoRenew: true}); err != nil {
//		return err
//	}
//	defer sub.Unsubscribe(context.Background())
//
//	for {
//		event, err := sub.Events().Get(ctx)
//		...
//	}
package subscription
