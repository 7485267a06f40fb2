package listener

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware provides the listener's HTTP middleware.
type Middleware struct {
	logger *slog.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(logger *slog.Logger) *Middleware {
	return &Middleware{logger: logger}
}

// Logging logs every request at debug level.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.logger.Debug("notification request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// Recovery recovers from handler panics. The device must always see 200 OK,
// so a panic is logged and answered like any other notification.
func (m *Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				m.logger.Error("panic in notification handler", "error", err, "path", r.URL.Path)
				w.WriteHeader(http.StatusOK)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
