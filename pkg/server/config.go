package server

import (
	"net/http"
	"net/url"
	"time"
)

// Config holds configuration for the polling server and its sessions.
type Config struct {
	// Heartbeat

	// PingInterval is the time between server pings on v4 sessions.
	// Sent to the client in the handshake.
	// Default: 25 seconds.
	PingInterval time.Duration

	// PingTimeout is how long the client waits for a ping before it
	// considers the connection dead. Sent to the client in the handshake.
	// Default: 20 seconds.
	PingTimeout time.Duration

	// Polling

	// PollTimeout is the longest a poll request is held open while the
	// session has nothing to send. When it elapses the poll is answered
	// with a noop packet.
	// Default: 30 seconds.
	PollTimeout time.Duration

	// MaxPayload is the maximum payload size advertised to the client.
	// Default: 1,000,000 bytes.
	MaxPayload int64

	// Upgrades lists the transports a polling client may upgrade to.
	// Default: ["websocket"].
	Upgrades []string

	// Limits

	// MaxSessions is the maximum number of concurrent sessions.
	// 0 means no limit.
	// Default: 0.
	MaxSessions int

	// WebSocket

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// WriteTimeout is the maximum time to wait when writing a WebSocket message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// CheckOrigin is called to validate the WebSocket request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		PingInterval:    25 * time.Second,
		PingTimeout:     20 * time.Second,
		PollTimeout:     30 * time.Second,
		MaxPayload:      1_000_000,
		Upgrades:        []string{"websocket"},
		MaxSessions:     0, // No limit
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		WriteTimeout:    10 * time.Second,
		CheckOrigin:     SameOriginCheck,
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	if c.Upgrades != nil {
		clone.Upgrades = append([]string(nil), c.Upgrades...)
	}
	return &clone
}

// WithPollTimeout sets the poll timeout and returns the config for chaining.
func (c *Config) WithPollTimeout(d time.Duration) *Config {
	c.PollTimeout = d
	return c
}

// WithPingInterval sets the ping interval and returns the config for chaining.
func (c *Config) WithPingInterval(d time.Duration) *Config {
	c.PingInterval = d
	return c
}

// WithMaxSessions sets the maximum sessions and returns the config for chaining.
func (c *Config) WithMaxSessions(max int) *Config {
	c.MaxSessions = max
	return c
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := r.Host
	if host == "" {
		return false
	}
	return originURL.Host == host
}
