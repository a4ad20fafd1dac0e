package easyremote

import (
	"errors"
	"log/slog"
	"net"
	"time"
)

// Option configures a Session.
type Option func(*sessionConfig) error

// sessionConfig holds the configuration for a Session.
type sessionConfig struct {
	port        int
	readTimeout time.Duration
	localAddr   *net.UDPAddr
	logger      *slog.Logger
}

// defaultConfig returns the default session configuration.
func defaultConfig() *sessionConfig {
	return &sessionConfig{
		port:        DefaultPort,
		readTimeout: 5 * time.Second,
		localAddr:   nil,
		logger:      nil,
	}
}

// WithPort sets the UDP port of the console.
// Default is 4003.
func WithPort(port int) Option {
	return func(c *sessionConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		c.port = port
		return nil
	}
}

// WithReadTimeout sets how long discovery waits for each datagram.
// Default is 5 seconds.
func WithReadTimeout(d time.Duration) Option {
	return func(c *sessionConfig) error {
		if d <= 0 {
			return errors.New("read timeout must be positive")
		}
		c.readTimeout = d
		return nil
	}
}

// WithLocalAddr binds the session socket to the given local address,
// e.g. "0.0.0.0:5000". By default an ephemeral port on all interfaces is used.
func WithLocalAddr(addr string) Option {
	return func(c *sessionConfig) error {
		udpAddr, err := net.ResolveUDPAddr("udp", addr)
		if err != nil {
			return err
		}
		c.localAddr = udpAddr
		return nil
	}
}

// WithLogger sets a structured logger for debug and error logging.
// By default, no logging is performed.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) error {
		c.logger = logger
		return nil
	}
}
