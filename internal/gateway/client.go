package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codepair/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
	sendBuffer     = 256
)

// client is one websocket connection. readPump owns all reads and runs
// the disconnect sequence when the connection drops; writePump owns all
// writes including pings.
type client struct {
	id      string
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte

	mu   sync.Mutex
	room string
}

func newClient(g *Gateway, id string, conn *websocket.Conn) *client {
	return &client{
		id:      id,
		gateway: g,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}
}

// setRoom swaps the current room and returns the previous one.
func (c *client) setRoom(next string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	previous := c.room
	c.room = next
	return previous
}

// enqueue hands a frame to the write pump without blocking. Frames to a
// full buffer are dropped and counted.
func (c *client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		metrics.DroppedFrames.Inc()
	}
}

func (c *client) readPump() {
	defer func() {
		c.gateway.dropClient(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) {
				c.gateway.log.Debug("read failed",
					zap.String("connection_id", c.id), zap.Error(err))
			}
			return
		}
		c.gateway.dispatch(c, msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
