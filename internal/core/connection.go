package core

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the outbound half of a client connection. Send must never block
// the caller: a consumer that cannot keep up loses messages instead of
// stalling the room (periodic full snapshots let it resynchronize).
type Conn interface {
	Send(data []byte) error
	Close() error
}

// ErrSendDropped is returned when a message was discarded because the
// connection's send queue was full.
var ErrSendDropped = errors.New("send queue full, message dropped")

const (
	wsWriteDeadline = 10 * time.Second
	wsPingPeriod    = 30 * time.Second
)

// WebSocketConn serializes writes through a single pump goroutine;
// websocket.Conn writes are not safe for concurrent use. The pump also
// owns the keepalive pings, so nothing else ever writes to the conn.
type WebSocketConn struct {
	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func NewWebSocketConn(ws *websocket.Conn, queueSize int) *WebSocketConn {
	return newWebSocketConn(ws, queueSize, wsPingPeriod)
}

func newWebSocketConn(ws *websocket.Conn, queueSize int, pingPeriod time.Duration) *WebSocketConn {
	c := &WebSocketConn{
		ws:   ws,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
	go c.writePump(pingPeriod)
	return c
}

func (c *WebSocketConn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	default:
		return ErrSendDropped
	}
}

func (c *WebSocketConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.ws.Close()
}

func (c *WebSocketConn) writePump(pingPeriod time.Duration) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	for {
		select {
		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			c.ws.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
