package push

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/circle/internal/social/domain"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
)

// ErrClosed is returned once the hub has stopped running.
var ErrClosed = errors.New("push: hub closed")

const (
	statusOnline  = "online"
	statusOffline = "offline"

	offlineText = "user is not connected"
)

// Hub owns every open connection and the user → connection bindings. Only
// the Run goroutine touches the maps; everything else messages it.
type Hub struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector

	conns map[string]*Client
	users map[int64]string

	register   chan *Client
	unregister chan *Client
	login      chan *Client
	deliver    chan delivery
	broadcast  chan broadcast
	relay      chan relay
	query      chan func()
	done       chan struct{}
}

type delivery struct {
	userID int64
	data   []byte
}

type broadcast struct {
	exclude int64
	data    []byte
}

type relay struct {
	from    *Client
	to      int64
	message string
}

func NewHub(logger *slog.Logger, m *metrics.Collector) *Hub {
	return &Hub{
		Logger:     logger,
		Metrics:    m,
		conns:      make(map[string]*Client),
		users:      make(map[int64]string),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		login:      make(chan *Client),
		deliver:    make(chan delivery, 256),
		broadcast:  make(chan broadcast, 256),
		relay:      make(chan relay, 256),
		query:      make(chan func()),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx ends, closing every
// client. Call it once, in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, c := range h.conns {
				c.close()
				delete(h.conns, id)
				h.Metrics.PushDisconnected()
			}
			clear(h.users)
			h.Logger.Info("push hub stopped")
			return

		case c := <-h.register:
			h.conns[c.id] = c
			h.Metrics.PushConnected()
			h.Logger.Debug("push client registered", "conn_id", c.id, "user_id", c.ident.UserID, "total", len(h.conns))

		case c := <-h.unregister:
			if _, ok := h.conns[c.id]; !ok {
				continue
			}
			delete(h.conns, c.id)
			for uid, cid := range h.users {
				if cid == c.id {
					delete(h.users, uid)
				}
			}
			c.close()
			h.Metrics.PushDisconnected()
			h.Logger.Debug("push client unregistered", "conn_id", c.id, "total", len(h.conns))

		case c := <-h.login:
			if _, ok := h.conns[c.id]; !ok {
				continue
			}
			h.users[c.ident.UserID] = c.id
			if data, err := encode(EventLogin, LoginPayload{UserID: c.ident.UserID}); err == nil {
				h.sendTo(c, data)
			}

		case d := <-h.deliver:
			if c, ok := h.bound(d.userID); ok {
				h.sendTo(c, d.data)
			}

		case b := <-h.broadcast:
			for _, c := range h.conns {
				if c.ident.UserID == b.exclude {
					continue
				}
				h.sendTo(c, b.data)
			}

		case r := <-h.relay:
			h.handleRelay(r)

		case fn := <-h.query:
			fn()
		}
	}
}

func (h *Hub) bound(userID int64) (*Client, bool) {
	cid, ok := h.users[userID]
	if !ok {
		return nil, false
	}
	c, ok := h.conns[cid]
	return c, ok
}

func (h *Hub) handleRelay(r relay) {
	target, ok := h.bound(r.to)
	if !ok {
		if data, err := encode(EventMessageC, MessageCPayload{From: 0, Message: offlineText}); err == nil {
			h.sendTo(r.from, data)
		}
		return
	}

	data, err := encode(EventMessageC, MessageCPayload{From: r.from.ident.UserID, Message: r.message})
	if err != nil {
		return
	}
	h.sendTo(target, data)
}

func (h *Hub) sendTo(c *Client, data []byte) {
	if !c.enqueue(data) {
		h.Metrics.RecordPushDropped()
		h.Logger.Warn("push event dropped", "conn_id", c.id, "user_id", c.ident.UserID)
	}
}

// Notify pushes a freshly written notification to the recipient's bound
// connection. A recipient without one is not an error.
func (h *Hub) Notify(ctx context.Context, userID int64, n domain.Notification) error {
	data, err := encode(EventNotification, n)
	if err != nil {
		return err
	}
	return submit(ctx, h, h.deliver, delivery{userID: userID, data: data})
}

// SetPresence tells every other connection that userID came online or
// went offline.
func (h *Hub) SetPresence(ctx context.Context, userID int64, online bool) {
	status := statusOffline
	if online {
		status = statusOnline
	}
	data, err := encode(EventPresence, PresencePayload{UserID: userID, Status: status})
	if err != nil {
		return
	}
	if err := submit(ctx, h, h.broadcast, broadcast{exclude: userID, data: data}); err != nil {
		h.Logger.Warn("presence broadcast failed", "user_id", userID, "error", err)
	}
}

// Connections returns the number of open connections.
func (h *Hub) Connections(ctx context.Context) (int, error) {
	var n int
	err := h.do(ctx, func() { n = len(h.conns) })
	return n, err
}

// Bound reports whether userID has a connection bound through a login event.
func (h *Hub) Bound(ctx context.Context, userID int64) (bool, error) {
	var ok bool
	err := h.do(ctx, func() { _, ok = h.bound(userID) })
	return ok, err
}

func (h *Hub) do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	if err := submit(ctx, h, h.query, func() { fn(); close(ran) }); err != nil {
		return err
	}
	select {
	case <-ran:
		return nil
	case <-h.done:
		return ErrClosed
	}
}

func submit[T any](ctx context.Context, h *Hub, ch chan<- T, v T) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}
	select {
	case ch <- v:
		return nil
	case <-h.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
