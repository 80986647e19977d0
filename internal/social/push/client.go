package push

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/pkg/idx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
)

// Client is one authenticated socket.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	id    string
	ident domain.Identity

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn, ident domain.Identity) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		id:    idx.New().String(),
		ident: ident,
		send:  make(chan []byte, sendBufSize),
		done:  make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue never blocks. It reports false when the event was dropped.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) readPump(ctx context.Context) {
	logger := slogx.FromContext(ctx)
	defer func() {
		if err := submit(context.Background(), c.hub, c.hub.unregister, c); err != nil {
			c.close()
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		var ev Event
		if err := wsjson.Read(ctx, c.conn, &ev); err != nil {
			if websocket.CloseStatus(err) != -1 {
				logger.Debug("push client closed", "conn_id", c.id)
			} else {
				logger.Debug("push read failed", "conn_id", c.id, "error", err)
			}
			return
		}
		c.handle(ctx, ev)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusGoingAway, "")
	}()

	for {
		select {
		case msg := <-c.send:
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}

		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) handle(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventLogin:
		var p LoginPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid login payload")
			return
		}
		if p.UserID != c.ident.UserID {
			c.sendError("FORBIDDEN", "login user does not match the session")
			return
		}
		_ = submit(ctx, c.hub, c.hub.login, c)

	case EventMessageS:
		var p MessageSPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.To <= 0 {
			c.sendError("INVALID_PAYLOAD", "invalid messageS payload")
			return
		}
		_ = submit(ctx, c.hub, c.hub.relay, relay{from: c, to: p.To, message: p.Message})

	case EventPing:
		if data, err := encode(EventPong, nil); err == nil {
			c.enqueue(data)
		}

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+ev.Type)
	}
}

func (c *Client) sendError(code, message string) {
	data, err := encode(EventError, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.enqueue(data)
}
