package http

import (
	"net/http"

	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/socialsdk"
)

// NotificationHandler serves the caller's ledger under /notification.
type NotificationHandler struct {
	Notifications *service.NotificationService
}

// HandleList godoc
//
//	@Summary		List notifications
//	@Description	Newest first.
//	@Tags			Notifications
//	@Produce		json
//	@Param			size	query		int	false	"Page size (1-100)"	default(10)
//	@Param			cursor	query		int	false	"Offset of the page"	default(0)
//	@Success		200		{object}	socialsdk.Envelope[socialsdk.NotificationPage]
//	@Failure		400		{object}	httpx.Envelope
//	@Router			/notification [get]
func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	size, ok := queryInt(w, r, "size", service.DefaultPageSize)
	if !ok {
		return
	}
	cursor, ok := queryInt(w, r, "cursor", 0)
	if !ok {
		return
	}

	page, err := h.Notifications.List(r.Context(), ident.UserID, size, cursor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, toNotificationPage(page))
}

// HandleUnreadCount godoc
//
//	@Summary		Unread count
//	@Tags			Notifications
//	@Produce		json
//	@Success		200	{object}	socialsdk.Envelope[socialsdk.CountResponse]
//	@Router			/notification/unread-count [get]
func (h *NotificationHandler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	n, err := h.Notifications.UnreadCount(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, socialsdk.CountResponse{Count: int64(n)})
}

// HandleMarkRead godoc
//
//	@Summary		Mark a notification read
//	@Tags			Notifications
//	@Produce		json
//	@Param			id	path		int	true	"Notification ID"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Router			/notification/{id}/read [patch]
func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Notifications.MarkRead(r.Context(), ident.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "notification marked read")
}

// HandleDelete godoc
//
//	@Summary		Delete a notification
//	@Tags			Notifications
//	@Produce		json
//	@Param			id	path		int	true	"Notification ID"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.Envelope
//	@Router			/notification/{id} [delete]
func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Notifications.Delete(r.Context(), ident.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteMessage(w, http.StatusOK, "notification deleted")
}

// HandleDeleteAll godoc
//
//	@Summary		Clear notifications
//	@Description	Deletes every notification of the caller. An empty ledger is not an error.
//	@Tags			Notifications
//	@Produce		json
//	@Success		200	{object}	socialsdk.Envelope[socialsdk.CountResponse]
//	@Router			/notification [delete]
func (h *NotificationHandler) HandleDeleteAll(w http.ResponseWriter, r *http.Request) {
	ident, _ := authn.IdentityFrom(r.Context())

	n, err := h.Notifications.DeleteAll(r.Context(), ident.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteData(w, http.StatusOK, socialsdk.CountResponse{Count: n})
}
