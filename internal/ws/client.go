package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait    = 10 * time.Second
	sendBacklog  = 8
	pingDeadline = 5 * time.Second
)

// Client owns one websocket connection and implements game.Conn. Outbound
// frames go through a buffered channel drained by writeLoop, so sends from
// session code never block on the peer.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{conn: conn, send: make(chan []byte, sendBacklog)}
}

// Send marshals and enqueues a frame. A full backlog drops the frame: the
// peer is not reading, and the next liveness probe will take the
// connection down anyway.
func (c *Client) Send(v any) error {
	msg, err := json.Marshal(v)
	if err != nil {
		return err
	}
	safeSend(c.send, msg)
	return nil
}

func (c *Client) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(pingDeadline))
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

// safeSend tolerates a concurrently closed channel and a full buffer.
func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}
