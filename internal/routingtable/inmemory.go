package routingtable

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/routingtable"
)

var (
	// ErrEmptyKey is returned when a route key is empty
	ErrEmptyKey = errors.New("route key cannot be empty")
	// ErrNilSink is returned when a nil sink is provided
	ErrNilSink = errors.New("sink cannot be nil")
	// ErrDuplicateKey is returned when a key is already registered
	ErrDuplicateKey = errors.New("route key already registered")
	// ErrRouteNotFound is returned when removing an unknown key
	ErrRouteNotFound = errors.New("route not found")
	// ErrClosed is returned when the routing table has been closed
	ErrClosed = errors.New("routing table is closed")
)

// InMemoryRoutingTable implements routingtable.RoutingTable with a map guarded
// by a RWMutex.
type InMemoryRoutingTable struct {
	mu     sync.RWMutex
	routes map[string]routingtable.Sink
	closed bool
}

// NewInMemoryRoutingTable creates an empty routing table.
func NewInMemoryRoutingTable() *InMemoryRoutingTable {
	return &InMemoryRoutingTable{
		routes: make(map[string]routingtable.Sink),
	}
}

// Add registers sink under key.
func (rt *InMemoryRoutingTable) Add(ctx context.Context, key string, sink routingtable.Sink) error {
	if key == "" {
		return ErrEmptyKey
	}
	if sink == nil {
		return ErrNilSink
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return ErrClosed
	}
	if _, exists := rt.routes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	rt.routes[key] = sink
	return nil
}

// Remove deletes the route for key and returns how many routes remain.
func (rt *InMemoryRoutingTable) Remove(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, ErrEmptyKey
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if _, exists := rt.routes[key]; !exists {
		return len(rt.routes), fmt.Errorf("%w: %s", ErrRouteNotFound, key)
	}

	delete(rt.routes, key)
	return len(rt.routes), nil
}

// Lookup returns the sink registered under key.
func (rt *InMemoryRoutingTable) Lookup(key string) (routingtable.Sink, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if rt.closed {
		return nil, false
	}
	sink, ok := rt.routes[key]
	return sink, ok
}

// GetAllRoutes returns a snapshot of the registered routes.
func (rt *InMemoryRoutingTable) GetAllRoutes(ctx context.Context) ([]routingtable.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt.mu.RLock()
	defer rt.mu.RUnlock()

	routes := make([]routingtable.Route, 0, len(rt.routes))
	for key, sink := range rt.routes {
		routes = append(routes, routingtable.Route{Key: key, Sink: sink})
	}
	return routes, nil
}

// GetRouteCount returns the number of registered routes.
func (rt *InMemoryRoutingTable) GetRouteCount(ctx context.Context) (int, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return len(rt.routes), nil
}

// Close drops every route. Further Adds fail with ErrClosed.
func (rt *InMemoryRoutingTable) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.closed = true
	rt.routes = make(map[string]routingtable.Sink)
	return nil
}
