package chatsync

import "time"

// Config controls how the client connects.
type Config struct {
	URL   string // websocket endpoint, e.g. "wss://host/ws/chat/"
	Token string // bearer token, carried as a connection parameter

	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration // 0 means no read deadline; chat sockets idle
	WriteTimeout     time.Duration

	// Reconnect behavior after an unexpected close. Deliberate Close always
	// suppresses reconnection.
	AutoReconnect     bool
	ReconnectInterval time.Duration // initial backoff delay, doubled per attempt
	MaxReconnectDelay time.Duration // backoff cap
	MaxReconnectTries int           // 0 means unbounded
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:  10 * time.Second,
		WriteTimeout:      10 * time.Second,
		AutoReconnect:     true,
		ReconnectInterval: time.Second,
		MaxReconnectDelay: 30 * time.Second,
		MaxReconnectTries: 10,
	}
}
