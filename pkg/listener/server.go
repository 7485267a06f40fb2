package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rmacdonaldsmith/ipcam-go/pkg/events"
	"github.com/rmacdonaldsmith/ipcam-go/pkg/routingtable"
)

var (
	// ErrServerRunning is returned when Start is called twice
	ErrServerRunning = errors.New("listener server already running")
	// ErrServerNotRunning is returned when Stop is called before Start
	ErrServerNotRunning = errors.New("listener server not running")
)

// Server is the callback HTTP server. Every request is answered 200 OK with
// an empty body; accepted notifications are delivered to the sink registered
// for the request's routing key before the reply is written.
type Server struct {
	config     ServerConfig
	routes     routingtable.RoutingTable
	middleware *Middleware
	dedupe     *lru.Cache[string, struct{}]
	logger     *slog.Logger
	handler    http.Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer creates a callback server that resolves routing keys through routes.
func NewServer(config ServerConfig, routes routingtable.RoutingTable, logger *slog.Logger) (*Server, error) {
	config.SetDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid listener config: %w", err)
	}
	if routes == nil {
		return nil, fmt.Errorf("routing table is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "listener")

	s := &Server{
		config:     config,
		routes:     routes,
		middleware: NewMiddleware(logger),
		logger:     logger,
	}

	if config.DedupeSize > 0 {
		cache, err := lru.New[string, struct{}](config.DedupeSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create dedupe cache: %w", err)
		}
		s.dedupe = cache
	}

	s.handler = s.setupRoutes()
	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds addr and serves on a background goroutine.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return ErrServerRunning
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	httpServer := &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listener stopped unexpectedly", "error", err)
		}
	}()

	s.server = httpServer
	s.listener = ln
	s.done = done

	s.logger.Info("listener started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil when not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listening socket, waits for in-flight notifications and
// for the serve goroutine to exit. When ctx expires first, open connections
// are closed forcibly.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return ErrServerNotRunning
	}

	err := s.server.Shutdown(ctx)
	if err != nil {
		_ = s.server.Close()
	}
	<-s.done

	s.logger.Info("listener stopped", "addr", s.listener.Addr().String())

	s.server = nil
	s.listener = nil
	s.done = nil

	if err != nil {
		return fmt.Errorf("listener shutdown: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.middleware.Recovery)
	r.Use(s.middleware.Logging)

	// the device posts to whatever path the consumer address carried
	r.HandleFunc("/*", s.handleNotification)
	r.NotFound(s.handleNotification)
	r.MethodNotAllowed(s.handleNotification)

	return r
}

func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	defer w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodPost {
		s.logger.Debug("ignoring non-POST request", "method", r.Method, "path", r.URL.Path)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes))
	if err != nil {
		s.logger.Warn("failed to read notification body", "error", err, "remote", r.RemoteAddr)
		return
	}

	key := RouteKey(r.URL.Path)
	sink, ok := s.routes.Lookup(key)
	if !ok {
		s.logger.Warn("dropping notification for unknown route", "route", key, "remote", r.RemoteAddr)
		return
	}

	event := events.ParseEvent(body, s.logger)
	if event == nil {
		return
	}

	if s.isDuplicate(key, event) {
		s.logger.Debug("dropping duplicate notification", "route", key, "event_id", event.ID)
		return
	}

	if !sink.Deliver(event) {
		s.logger.Warn("sink rejected event", "route", key, "event", event.Name)
		return
	}

	s.logger.Debug("event delivered", "route", key, "event", event.Name, "event_id", event.ID)
}

func (s *Server) isDuplicate(key string, event *events.Event) bool {
	if s.dedupe == nil || event.ID == "" {
		return false
	}
	seen, _ := s.dedupe.ContainsOrAdd(key+"/"+event.ID, struct{}{})
	return seen
}

// RouteKey extracts the routing key (first path segment) from a request path.
func RouteKey(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
