package hub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds every socket write, pings included.
	writeWait = 10 * time.Second

	// pongWait is how long a connection may stay silent before it is
	// considered dead; pings go out well inside that window.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection inside a session's channel.
type Client struct {
	conn *websocket.Conn
	send chan []byte

	// done is closed by the registry on unsubscribe or evict. The send
	// channel itself is never closed, so a concurrent sendEvent cannot
	// race a teardown.
	done chan struct{}
	code string
}

func newClient(conn *websocket.Conn, code string) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 16),
		done: make(chan struct{}),
		code: code,
	}
}

// sendEvent delivers an event to this client only, used for scoped errors.
func (c *Client) sendEvent(event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case c.send <- messageBytes:
	default:
	}
}

// writePump drains the send channel onto the socket, pinging idle
// connections so half-dead peers get detected instead of lingering. It
// exits when the registry closes done or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// Flush anything already queued, so a final session-ended
			// event still reaches the peer before teardown.
			for {
				select {
				case msg := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}
