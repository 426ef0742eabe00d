package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"Vidshelf/metrics"
)

// Logging logs every request with its status and duration and records it in
// the HTTP metrics under the matched route pattern.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		route := routePattern(r)

		metrics.RecordHTTPRequest(r.Method, route, status, duration)

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case isAssetRoute(route):
			level = slog.LevelDebug
		}
		slog.Log(r.Context(), level, "HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration.Round(time.Microsecond),
			"remote_addr", r.RemoteAddr)
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Static files and video bytes are too chatty for info level.
func isAssetRoute(route string) bool {
	return strings.HasPrefix(route, "/static/") || strings.HasPrefix(route, "/media/") || route == "/metrics"
}
