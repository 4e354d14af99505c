package web

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guzus/relay/internal/command"
)

const writeWait = 10 * time.Second

const (
	typeCommand = "command"
	typeFrame   = "frame"
	typeReply   = "reply"
	typeError   = "error"
)

var errConnClosed = errors.New("connection closed")

// clientMessage is what a browser sends: {"type":"command","data":".ping"}.
type clientMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// serverMessage carries a frame, reply or error for the command named ID.
type serverMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Data string `json:"data"`
}

// conn serializes writes; gorilla connections allow one writer at a time.
type conn struct {
	mu     sync.Mutex
	ws     *websocket.Conn
	closed bool
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws}
}

func (c *conn) send(ctx context.Context, m serverMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}

	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.ws.SetWriteDeadline(deadline)
	return c.ws.WriteJSON(m)
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.ws.Close()
}

// message is one command line received on a connection. Edits become frame
// messages so the browser can redraw the same block in place.
type message struct {
	conn *conn
	id   string
	text string
}

var _ command.Message = (*message)(nil)

func (m *message) Content() string { return m.text }

func (m *message) Edit(ctx context.Context, content string) error {
	return m.conn.send(ctx, serverMessage{Type: typeFrame, ID: m.id, Data: content})
}

func (m *message) Reply(ctx context.Context, content string) error {
	return m.conn.send(ctx, serverMessage{Type: typeReply, ID: m.id, Data: content})
}
