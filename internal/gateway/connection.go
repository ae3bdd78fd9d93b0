package gateway

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/MondherWebDev/bw-server/internal/game"
)

var (
	errSendBufferFull   = errors.New("send buffer full")
	errConnectionClosed = errors.New("connection closed")
)

// Connection wraps one WebSocket with a buffered outbound queue and a pair of
// pump goroutines. The read pump is the only goroutine that touches room, so
// join state needs no lock of its own.
type Connection struct {
	id      string
	sock    *websocket.Conn
	limiter *TokenBucket

	send chan []byte
	done chan struct{}

	closeOnce   sync.Once
	closeCode   int
	closeReason string

	// awaitingPong is set by the heartbeat sweep when it pings and cleared by
	// the pong handler; a connection still flagged on the next sweep is dead.
	awaitingPong atomic.Bool

	writeTimeout    time.Duration
	maxMessageBytes int64

	// room is owned by the read pump goroutine.
	room *game.Room
}

func newConnection(sock *websocket.Conn, limiter *TokenBucket, cfg Config) *Connection {
	return &Connection{
		id:              uuid.New().String(),
		sock:            sock,
		limiter:         limiter,
		send:            make(chan []byte, cfg.SendBuffer),
		done:            make(chan struct{}),
		closeCode:       websocket.CloseGoingAway,
		writeTimeout:    cfg.WriteTimeout,
		maxMessageBytes: cfg.MaxMessageBytes,
	}
}

// ID returns the connection's server-assigned identifier.
func (c *Connection) ID() string {
	return c.id
}

// Enqueue hands data to the write pump without blocking. It fails when the
// connection is closing or the outbound queue is full; the caller decides
// what a failed delivery means.
func (c *Connection) Enqueue(data []byte) error {
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errConnectionClosed
	default:
		return errSendBufferFull
	}
}

// CloseNormal shuts the connection down with a normal-closure frame, flushing
// anything already queued first.
func (c *Connection) CloseNormal(reason string) {
	c.shutdown(websocket.CloseNormalClosure, reason)
}

// Terminate shuts the connection down with a going-away frame. Used by the
// heartbeat sweep and server shutdown.
func (c *Connection) Terminate(reason string) {
	c.shutdown(websocket.CloseGoingAway, reason)
}

func (c *Connection) shutdown(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

// ping sends a control frame directly; gorilla allows concurrent WriteControl
// alongside the write pump.
func (c *Connection) ping() error {
	return c.sock.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

// writePump owns all data writes on the socket. On shutdown it drains
// whatever was queued before the close was requested, sends the close frame
// and drops the socket, which also unblocks the read pump.
func (c *Connection) writePump() {
	defer c.sock.Close()

	for {
		select {
		case data := <-c.send:
			c.sock.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().
					Str("conn", c.id).
					Err(err).
					Msg("write failed")
				return
			}
		case <-c.done:
			for {
				select {
				case data := <-c.send:
					c.sock.SetWriteDeadline(time.Now().Add(c.writeTimeout))
					if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					c.sock.SetWriteDeadline(time.Now().Add(c.writeTimeout))
					c.sock.WriteMessage(
						websocket.CloseMessage,
						websocket.FormatCloseMessage(c.closeCode, c.closeReason),
					)
					return
				}
			}
		}
	}
}

// readPump reads frames until the socket dies, feeding each surviving message
// through the rate limiter into the dispatcher. Cleanup runs exactly once
// from here no matter which side closed first. A panicking handler costs the
// connection, never the process.
func (c *Connection) readPump(svc *Service) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("conn", c.id).
				Interface("panic", r).
				Msg("connection handler panicked")
		}
		svc.dropConnection(c)
	}()

	c.sock.SetReadLimit(c.maxMessageBytes)
	c.sock.SetPongHandler(func(string) error {
		c.awaitingPong.Store(false)
		return nil
	})

	for {
		_, data, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Debug().
					Str("conn", c.id).
					Err(err).
					Msg("read loop ended")
			}
			return
		}
		if !c.limiter.Allow() {
			log.Debug().
				Str("conn", c.id).
				Msg("rate limit exceeded, message dropped")
			continue
		}
		svc.dispatch(c, data)
	}
}
