package server

import (
	"net"
	"net/http"
	"time"

	"golang.org/x/net/netutil"
)

// Config holds HTTP server configuration
type Config struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxConnections int
}

// DefaultConfig returns a server config with sensible defaults. Writes get no
// deadline so long video responses are not cut off.
func DefaultConfig(addr string) *Config {
	return &Config{
		Addr:           addr,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   0,
		IdleTimeout:    60 * time.Second,
		MaxConnections: 64,
	}
}

// CreateServer creates an HTTP server with the given configuration
func CreateServer(cfg *Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Listen opens the server's TCP listener, capped at cfg.MaxConnections
// concurrent connections when that is positive.
func Listen(cfg *Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConnections)
	}
	return ln, nil
}
