package push

import (
	"net/http"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
	"nhooyr.io/websocket"
)

// Handler upgrades authenticated requests to the push socket. It must sit
// behind the access gate.
type Handler struct {
	Hub *Hub

	// OriginPatterns are extra origins allowed to open the socket. The
	// request's own host is always allowed.
	OriginPatterns []string
}

// ServeHTTP opens the push channel.
//
// @Summary      Open push channel
// @Description  Upgrades to a WebSocket carrying notifications, presence and direct messages
// @Tags         push
// @Success      101
// @Failure      401  {object}  httpx.Envelope
// @Router       /ws [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ident, ok := authn.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, authn.Message(authn.ErrNoToken))
		return
	}

	ctx := r.Context()
	logger := slogx.FromContext(ctx)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.OriginPatterns,
	})
	if err != nil {
		logger.Warn("push upgrade failed", "error", err)
		return
	}

	c := newClient(h.Hub, conn, ident)
	if err := submit(ctx, h.Hub, h.Hub.register, c); err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	logger.Info("push client connected", "conn_id", c.id)

	go c.writePump(ctx)
	c.readPump(ctx)

	logger.Info("push client disconnected", "conn_id", c.id)
}
