package routingtable

import (
	"context"
	"io"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
)

// Sink receives events routed to it. events.Queue is the standard implementation.
type Sink interface {
	// Deliver hands one event to the sink and reports whether it was accepted
	Deliver(event *events.Event) bool
}

// Route binds a routing key (embedded in a callback URL) to the sink that
// receives the notifications posted to that URL.
type Route struct {
	// Key is the routing key, the first path segment of the callback URL
	Key string

	// Sink is where events for this route are delivered
	Sink Sink
}

// RoutingTable manages routing-key-to-sink mappings for the callback listener.
// One listener serves many subscriptions; each subscription owns one route.
type RoutingTable interface {
	io.Closer

	// Add registers a sink under the given key. Keys must be unique.
	Add(ctx context.Context, key string, sink Sink) error

	// Remove deletes the route for key and returns the number of routes left.
	Remove(ctx context.Context, key string) (int, error)

	// Lookup returns the sink registered under key.
	Lookup(key string) (Sink, bool)

	// GetAllRoutes returns a snapshot of all current routes.
	GetAllRoutes(ctx context.Context) ([]Route, error)

	// GetRouteCount returns the number of registered routes.
	GetRouteCount(ctx context.Context) (int, error)
}
