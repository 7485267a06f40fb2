package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/rmacdonaldsmith/ipcam-go/internal/routingtable"
	pkgroutingtable "github.com/rmacdonaldsmith/ipcam-go/pkg/routingtable"
)

// Address is the ip and port the listener is bound to.
type Address struct {
	IP   string
	Port int
}

func (a Address) String() string {
	return net.JoinHostPort(a.IP, strconv.Itoa(a.Port))
}

// CallbackURL returns the consumer address the device should post to for key.
func (a Address) CallbackURL(key string) string {
	return "http://" + a.String() + "/" + key + "/"
}

// Lifecycle owns the process's single callback listener and its routing table.
// All methods are safe for concurrent use.
type Lifecycle struct {
	config ServerConfig
	routes *routingtable.InMemoryRoutingTable
	logger *slog.Logger

	// serverLogger is handed to NewServer, which adds its own component attribute
	serverLogger *slog.Logger

	mu      sync.Mutex
	server  *Server
	address Address
}

var (
	defaultLifecycle     *Lifecycle
	defaultLifecycleOnce sync.Once
)

// Default returns the process-wide lifecycle.
func Default() *Lifecycle {
	defaultLifecycleOnce.Do(func() {
		defaultLifecycle = NewLifecycle(ServerConfig{}, nil)
	})
	return defaultLifecycle
}

// NewLifecycle creates a stopped lifecycle. Most callers want Default().
func NewLifecycle(config ServerConfig, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.Default()
	}

	return &Lifecycle{
		config:       config,
		routes:       routingtable.NewInMemoryRoutingTable(),
		logger:       logger.With("component", "listener"),
		serverLogger: logger,
	}
}

// Start ensures the listener is running. When it already is, Start is a
// no-op that returns the current address; asking for a different address
// is logged and ignored. Port 0 binds an ephemeral port.
func (l *Lifecycle) Start(ip string, port int) (Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.startLocked(ip, port)
}

func (l *Lifecycle) startLocked(ip string, port int) (Address, error) {
	if l.server != nil {
		if ip != l.address.IP || (port != 0 && port != l.address.Port) {
			l.logger.Warn("listener already running, ignoring requested address",
				"running", l.address.String(),
				"requested", Address{IP: ip, Port: port}.String())
		}
		return l.address, nil
	}

	server, err := NewServer(l.config, l.routes, l.serverLogger)
	if err != nil {
		return Address{}, err
	}
	if err := server.Start(Address{IP: ip, Port: port}.String()); err != nil {
		return Address{}, err
	}

	bound := port
	if tcp, ok := server.Addr().(*net.TCPAddr); ok {
		bound = tcp.Port
	}

	l.server = server
	l.address = Address{IP: ip, Port: bound}
	return l.address, nil
}

// Stop shuts the listener down. It is a no-op when not running.
func (l *Lifecycle) Stop(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.stopLocked(ctx)
}

func (l *Lifecycle) stopLocked(ctx context.Context) error {
	if l.server == nil {
		return nil
	}

	err := l.server.Stop(ctx)
	l.server = nil
	l.address = Address{}

	if err != nil && !errors.Is(err, ErrServerNotRunning) {
		return err
	}
	return nil
}

// IsRunning reports whether the listener is serving.
func (l *Lifecycle) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.server != nil
}

// Address returns the bound address and whether the listener is running.
func (l *Lifecycle) Address() (Address, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.address, l.server != nil
}

// Attach starts the listener at ip:port unless it is already running and
// registers sink under key, returning the address the device should post to.
// Both happen under one lock, so the listener is running whenever a route
// exists.
func (l *Lifecycle) Attach(ctx context.Context, ip string, port int, key string, sink pkgroutingtable.Sink) (Address, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	address, err := l.startLocked(ip, port)
	if err != nil {
		return Address{}, fmt.Errorf("failed to start listener: %w", err)
	}

	if err := l.routes.Add(ctx, key, sink); err != nil {
		if count, _ := l.routes.GetRouteCount(ctx); count == 0 {
			_ = l.stopLocked(ctx)
		}
		return Address{}, fmt.Errorf("failed to attach route: %w", err)
	}
	return address, nil
}

// Release removes key's route. When no routes remain the listener is stopped.
// Releasing an unknown key is not an error.
func (l *Lifecycle) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	remaining, err := l.routes.Remove(ctx, key)
	if err != nil && !errors.Is(err, routingtable.ErrRouteNotFound) {
		return fmt.Errorf("failed to release route: %w", err)
	}

	if remaining > 0 {
		return nil
	}

	l.logger.Debug("last route released, stopping listener")
	return l.stopLocked(ctx)
}

// Routes returns the number of attached routes.
func (l *Lifecycle) Routes() int {
	count, _ := l.routes.GetRouteCount(context.Background())
	return count
}
