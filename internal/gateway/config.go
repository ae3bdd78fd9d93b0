package gateway

import (
	"net/http"
	"time"
)

// Config collects the transport tunables for WebSocket connections.
type Config struct {
	// SendBuffer is the per-connection outbound queue length. A full queue
	// fails the enqueue rather than blocking the sender.
	SendBuffer int
	// MaxMessageBytes caps a single inbound frame.
	MaxMessageBytes int64
	// WriteTimeout bounds a single socket write, control frames included.
	WriteTimeout time.Duration
	// HeartbeatInterval is the sweep cadence: each sweep pings idle
	// connections and terminates those that never answered the previous ping.
	HeartbeatInterval time.Duration
	// RateCapacity and RateRefillPerSec shape each connection's token bucket.
	RateCapacity     float64
	RateRefillPerSec float64

	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(*http.Request) bool
}

// DefaultConfig returns the production defaults. Browsers connect from
// arbitrary origins, so origin checking is open by default.
func DefaultConfig() Config {
	return Config{
		SendBuffer:        256,
		MaxMessageBytes:   4096,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		RateCapacity:      10,
		RateRefillPerSec:  5,
		ReadBufferSize:    1024,
		WriteBufferSize:   1024,
		CheckOrigin:       func(*http.Request) bool { return true },
	}
}
